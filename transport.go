package modbus

import "github.com/GoAethereal/cancel"

// Transport is the narrow byte-pipe a Master drives one request/response
// round-trip at a time over (spec §7 "External interfaces"). Unlike the
// teacher's listener-broadcast connection, a Master never has more than
// one request in flight, so Transport needs no subscriber list: send,
// then recv. Implementations promote the given cancel.Context to a
// stdlib context.Context at the point they need one (net.Conn deadlines,
// DialContext), the same bridge the teacher's Config.connection uses
// around net.Dialer.DialContext.
type Transport interface {
	// Send writes frame to the endpoint.
	Send(ctx cancel.Context, frame []byte) error
	// Recv reads one complete frame into buf, returning the number of
	// bytes read. Framing (where one frame ends) is mode-specific: TCP
	// uses the MBAP length field, RTU the inter-frame silence, ASCII the
	// trailing CRLF; each transport's Recv knows its own mode.
	Recv(ctx cancel.Context, buf []byte) (int, error)
	// DelayChars blocks for the wire time of chars character-times. RTU
	// and ASCII transports use it to enforce inter-frame silence before a
	// new request; TCP's implementation is a no-op.
	DelayChars(ctx cancel.Context, chars int)
	// Close releases the underlying connection.
	Close() error
}
