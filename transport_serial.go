package modbus

import (
	"time"

	"github.com/GoAethereal/cancel"
	"go.bug.st/serial"
)

var _ Transport = (*serialTransport)(nil)

// serialTransport carries RTU or ASCII frames over a serial port opened
// with go.bug.st/serial. Frame boundaries are not self-describing the way
// TCP's MBAP length is, so RTU Recv uses the inter-character/inter-frame
// silence timing of spec §4.6 ("3.5 character times"), the same timing
// rinzlerlabs-gomodbus' and grid-x-modbus' serial transports derive from
// baud rate; ASCII Recv instead reads to the trailing CRLF.
type serialTransport struct {
	port serial.Port
	mode Mode

	charDuration time.Duration
	frameSilence time.Duration
	timeout      time.Duration
}

// openSerial opens the configured serial device.
func openSerial(cfg Config) (*serialTransport, error) {
	port, err := serial.Open(cfg.Endpoint, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: dataBitsOr(cfg.DataBits, 8),
		Parity:   cfg.Parity,
		StopBits: stopBitsOr(cfg.StopBits),
	})
	if err != nil {
		return nil, newError(KindTransport, "serial open %s: %v", cfg.Endpoint, err)
	}

	// One character is start bit + data bits + parity bit (if any) + stop
	// bits, at cfg.BaudRate bits per second (spec §4.2 "character time").
	bitsPerChar := 1 + dataBitsOr(cfg.DataBits, 8) + 1
	if cfg.Parity != serial.NoParity {
		bitsPerChar++
	}
	if cfg.StopBits == serial.TwoStopBits {
		bitsPerChar++
	}
	charDuration := time.Second * time.Duration(bitsPerChar) / time.Duration(cfg.BaudRate)

	frameSilence := charDuration * 35 / 10 // 3.5 character times
	if cfg.BaudRate > 19200 {
		// Above 19200 baud the standard fixes the gap at a flat 1.75ms
		// rather than scaling it further with baud rate.
		frameSilence = 1750 * time.Microsecond
	}

	return &serialTransport{
		port:         port,
		mode:         cfg.Mode,
		charDuration: charDuration,
		frameSilence: frameSilence,
		timeout:      cfg.timeout(),
	}, nil
}

func dataBitsOr(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func stopBitsOr(v serial.StopBits) serial.StopBits {
	if v == 0 {
		return serial.OneStopBit
	}
	return v
}

func (t *serialTransport) Send(ctx cancel.Context, frame []byte) error {
	_, err := t.port.Write(frame)
	if err != nil {
		return newError(KindTransport, "serial write: %v", err)
	}
	return nil
}

func (t *serialTransport) Recv(ctx cancel.Context, buf []byte) (int, error) {
	if t.mode == ModeASCII {
		return t.recvASCII(buf)
	}
	return t.recvRTU(buf)
}

// recvRTU reads bytes until frameSilence elapses without a new byte
// arriving, the RTU framing rule of spec §4.6: there is no length field,
// only inter-frame silence marks where one frame ends.
func (t *serialTransport) recvRTU(buf []byte) (int, error) {
	t.port.SetReadTimeout(t.frameSilence)
	total := 0
	for {
		n, err := t.port.Read(buf[total:])
		if n > 0 {
			total += n
			if total >= len(buf) {
				return total, nil
			}
			continue
		}
		if err != nil {
			return total, newError(KindTransport, "serial recv: %v", err)
		}
		// Read returned 0, nil: the configured read timeout elapsed with
		// no new bytes, meaning the frame has ended.
		if total == 0 {
			return 0, newError(KindTimeout, "serial recv: no response within frame silence window")
		}
		return total, nil
	}
}

// recvASCII reads up to the trailing CRLF, ASCII framing's explicit
// terminator (spec §4.6), bounded overall by t.timeout (spec §5: "the
// master does not implement its own timer; it trusts the transport") so a
// peer that never sends a CRLF cannot block Recv forever.
func (t *serialTransport) recvASCII(buf []byte) (int, error) {
	deadline := time.Now().Add(t.timeout)
	total := 0
	for total < len(buf) {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return total, newError(KindTimeout, "serial recv: timed out before crlf")
		}
		t.port.SetReadTimeout(remaining)

		n, err := t.port.Read(buf[total : total+1])
		if n == 1 {
			total++
			if total >= 2 && buf[total-2] == '\r' && buf[total-1] == '\n' {
				return total, nil
			}
		}
		if err != nil {
			return total, newError(KindTransport, "serial recv: %v", err)
		}
		if n == 0 {
			return total, newError(KindTimeout, "serial recv: timed out before crlf")
		}
	}
	return total, newError(KindBufferTooSmall, "serial recv buffer filled before crlf")
}

// DelayChars blocks for the wire time of chars character-times, the
// inter-frame silence a Master must observe before issuing the next RTU
// or ASCII request on a shared serial line (spec §4.6).
func (t *serialTransport) DelayChars(ctx cancel.Context, chars int) {
	d := t.charDuration * time.Duration(chars)
	if d < t.frameSilence {
		d = t.frameSilence
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}
