package modbus

import (
	"encoding/binary"
	"net"
	"time"

	"github.com/GoAethereal/cancel"
)

var _ Transport = (*tcpTransport)(nil)

// tcpTransport frames Modbus TCP over a plain net.Conn, reading the MBAP
// header first to learn the following payload length (spec §4.6 "TCP"),
// adapted from the teacher's network.read/write pair without its
// multi-listener broadcast machinery, which a single in-flight request
// never needs.
type tcpTransport struct {
	conn    net.Conn
	timeout time.Duration
}

// dialTCP opens a TCP connection to endpoint, grounded on the teacher's
// Config.connection dial step, including the cancel.Promote bridge to
// net.Dialer.DialContext. timeout is reused as both the dial timeout and
// the per-call Send/Recv deadline (spec §6 "timeout_ms"; spec §5 "the
// master does not implement its own timer; it trusts the transport").
func dialTCP(ctx cancel.Context, endpoint string, timeout time.Duration) (*tcpTransport, error) {
	dialCtx, dialCancel := cancel.Promote(ctx)
	defer dialCancel()

	conn, err := (&net.Dialer{Timeout: timeout}).DialContext(dialCtx, "tcp", endpoint)
	if err != nil {
		return nil, newError(KindTransport, "tcp dial %s: %v", endpoint, err)
	}
	return &tcpTransport{conn: conn, timeout: timeout}, nil
}

func (t *tcpTransport) Send(ctx cancel.Context, frame []byte) error {
	t.conn.SetWriteDeadline(t.deadline(ctx))
	_, err := t.conn.Write(frame)
	if err != nil {
		return newError(KindTransport, "tcp write: %v", err)
	}
	return nil
}

func (t *tcpTransport) Recv(ctx cancel.Context, buf []byte) (int, error) {
	t.conn.SetReadDeadline(t.deadline(ctx))

	if len(buf) < 8 {
		return 0, newError(KindBufferTooSmall, "tcp recv buffer shorter than mbap header")
	}
	if _, err := readFull(t.conn, buf[:6]); err != nil {
		return 0, tcpRecvErr(err)
	}
	length := int(binary.BigEndian.Uint16(buf[4:6]))
	if length < 2 || 6+length > len(buf) {
		return 0, newError(KindInvalidFrame, "tcp mbap length %d out of range", length)
	}
	if _, err := readFull(t.conn, buf[6:6+length]); err != nil {
		return 0, tcpRecvErr(err)
	}
	return 6 + length, nil
}

// DelayChars is a no-op over TCP: there is no shared serial line to wait
// silent on between frames.
func (t *tcpTransport) DelayChars(ctx cancel.Context, chars int) {}

func (t *tcpTransport) Close() error {
	return t.conn.Close()
}

func tcpRecvErr(err error) error {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return newError(KindTimeout, "tcp recv: %v", err)
	}
	return newError(KindTransport, "tcp recv: %v", err)
}

// readFull reads exactly len(buf) bytes, the way net.Conn's short reads
// are normally assembled.
func readFull(r interface{ Read([]byte) (int, error) }, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// deadlineOf derives a net.Conn deadline from a cancel.Context by
// promoting it to a stdlib context.Context, the same bridge the teacher
// uses around DialContext. A zero Time means ctx carries no deadline.
func deadlineOf(ctx cancel.Context) time.Time {
	std, cancelFn := cancel.Promote(ctx)
	defer cancelFn()
	if deadline, ok := std.Deadline(); ok {
		return deadline
	}
	return time.Time{}
}

// deadline combines ctx's own deadline (if any) with t.timeout, taking
// whichever is stricter, so Recv honors Config.Timeout even when the
// caller's ctx carries no deadline of its own (spec §5: "the master does
// not implement its own timer; it trusts the transport").
func (t *tcpTransport) deadline(ctx cancel.Context) time.Time {
	own := time.Now().Add(t.timeout)
	if ctxDeadline := deadlineOf(ctx); !ctxDeadline.IsZero() && ctxDeadline.Before(own) {
		return ctxDeadline
	}
	return own
}
