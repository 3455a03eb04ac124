package modbus

import (
	"time"

	"github.com/GoAethereal/cancel"
	"go.bug.st/serial"
)

// Config configures a Master (spec §6 "Master configuration").
type Config struct {
	// Mode selects the wire framing: ModeRTU, ModeASCII, or ModeTCP.
	Mode Mode
	// Kind selects the underlying transport: "tcp" or "serial".
	Kind string
	// Endpoint is the dial target for Kind "tcp" (host:port) or the
	// device path for Kind "serial" (e.g. /dev/ttyUSB0, COM3).
	Endpoint string

	// BaudRate, DataBits, Parity and StopBits configure the serial link.
	// Ignored when Kind is "tcp".
	BaudRate int
	DataBits int
	Parity   serial.Parity
	StopBits serial.StopBits

	// MaxPDUChars bounds the data-only character count of any single
	// planned request (spec §4.5). Zero selects the protocol maximum.
	MaxPDUChars uint16
	// LatencyChars is the fixed per-request latency charged by the cost
	// model in addition to protocol overhead (spec §4.2). Zero selects the
	// mode-dependent default: 2 character-times over a serial link, 1 over
	// TCP.
	LatencyChars uint8
	// Timeout bounds a single request/response round trip, enforced by the
	// transport rather than by Master itself. Zero selects defaultTimeout.
	Timeout time.Duration

	// Static enables fixed capacity limits on ReadOptimized: after
	// planning, a request that produced more than MaxBlocks address runs
	// returns ErrTooManyBlocks, and one that produced more than MaxPlans
	// plans returns ErrTooManyPlans, before anything is sent. Blocks, plans
	// and frame buffers are still allocated per call; no pools are
	// preallocated.
	Static    bool
	MaxBlocks int
	MaxPlans  int
}

// Verify validates cfg, returning a descriptive *Error if a field is out
// of range (spec §6).
func (cfg *Config) Verify() error {
	switch cfg.Mode {
	case ModeRTU, ModeASCII, ModeTCP:
	default:
		return newError(KindInvalidParam, "mode %v is not one of rtu, ascii, tcp", cfg.Mode)
	}

	switch cfg.Kind {
	case "tcp":
		if cfg.Mode != ModeTCP {
			return newError(KindInvalidParam, "kind tcp requires mode tcp")
		}
	case "serial":
		if cfg.Mode == ModeTCP {
			return newError(KindInvalidParam, "kind serial requires mode rtu or ascii")
		}
		if cfg.BaudRate <= 0 {
			return newError(KindInvalidParam, "serial baud rate must be positive")
		}
	default:
		return newError(KindInvalidParam, "kind %q is not one of tcp, serial", cfg.Kind)
	}

	if cfg.Endpoint == "" {
		return newError(KindInvalidParam, "endpoint must not be empty")
	}
	if cfg.MaxPDUChars > maxPDUDataBytes {
		return newError(KindInvalidParam, "max pdu chars %d exceeds protocol maximum %d", cfg.MaxPDUChars, maxPDUDataBytes)
	}
	if cfg.Static && (cfg.MaxBlocks <= 0 || cfg.MaxPlans <= 0) {
		return newError(KindInvalidParam, "static memory mode requires positive MaxBlocks and MaxPlans")
	}
	return nil
}

// maxPDUChars resolves cfg.MaxPDUChars to the protocol maximum when unset.
func (cfg Config) maxPDUChars() uint16 {
	if cfg.MaxPDUChars == 0 {
		return maxPDUDataBytes
	}
	return cfg.MaxPDUChars
}

// latencyChars resolves cfg.LatencyChars to the mode-dependent default when
// unset: 2 character-times over a serial link, 1 over TCP (spec §6).
func (cfg Config) latencyChars() uint8 {
	if cfg.LatencyChars != 0 {
		return cfg.LatencyChars
	}
	if cfg.Mode == ModeTCP {
		return 1
	}
	return 2
}

// defaultTimeout is the round-trip timeout applied when Config.Timeout is
// unset (spec §6 "timeout_ms defaults to 1000").
const defaultTimeout = 1000 * time.Millisecond

// timeout resolves cfg.Timeout to defaultTimeout when unset.
func (cfg Config) timeout() time.Duration {
	if cfg.Timeout == 0 {
		return defaultTimeout
	}
	return cfg.Timeout
}

// transport dials or opens the underlying byte pipe for cfg.
func (cfg Config) transport(ctx cancel.Context) (Transport, error) {
	switch cfg.Kind {
	case "tcp":
		return dialTCP(ctx, cfg.Endpoint, cfg.timeout())
	case "serial":
		return openSerial(cfg)
	}
	return nil, newError(KindInvalidParam, "kind %q has no transport", cfg.Kind)
}

// framer returns the frame codec for cfg.Mode, matching the teacher's
// Config.framer construction step.
func (cfg Config) framer() framer {
	return newFramer(cfg.Mode)
}
