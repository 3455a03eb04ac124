package modbus

import (
	"encoding/binary"
	"sync"

	"github.com/GoAethereal/cancel"
)

// Master is the Go implementation of a Modbus master (spec §4.7). The
// intended use mirrors the teacher's Client:
//
//	m := &modbus.Master{Config: modbus.Config{
//		Mode:     modbus.ModeTCP,
//		Kind:     "tcp",
//		Endpoint: "localhost:502",
//	}}
//	defer m.Disconnect()
//
//	values := make([]uint16, len(addrs))
//	err := m.ReadOptimized(ctx, modbus.ReadRequest{SlaveID: 1, FunctionCode: modbus.FCReadHoldingRegisters, Addresses: addrs}, values)
type Master struct {
	Config

	mtx   sync.Mutex
	t     Transport
	f     framer
	stats Stats
}

// Disconnect shuts down the transport. Any request in flight observes a
// transport error as a result.
func (m *Master) Disconnect() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.t != nil {
		err := m.t.Close()
		m.t = nil
		return err
	}
	return nil
}

// init lazily dials the transport and selects the framer on first use,
// the same lazy-connect shape as the teacher's Client.init.
func (m *Master) init(ctx cancel.Context) (Transport, framer, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if err := m.Config.Verify(); err != nil {
		return nil, nil, err
	}
	if m.t == nil {
		t, err := m.Config.transport(ctx)
		if err != nil {
			return nil, nil, err
		}
		m.t = t
	}
	if m.f == nil {
		m.f = m.Config.framer()
	}
	return m.t, m.f, nil
}

// request performs one wire round-trip: encode, send, recv, decode,
// verify, accounting the exchange into Stats regardless of outcome
// (spec §7 "Statistics counters are incremented for every attempted
// round-trip, successful or failed").
func (m *Master) request(ctx cancel.Context, slave, fc byte, data []byte) (resp []byte, err error) {
	t, f, err := m.init(ctx)
	if err != nil {
		return nil, err
	}

	req, err := f.encode(slave, fc, data)
	if err != nil {
		return nil, err
	}

	if err := t.Send(ctx, req); err != nil {
		m.stats.recordFrame(0, 0)
		return nil, err
	}
	// RTU/ASCII transports need inter-frame silence enforced before their
	// next send; TCP's DelayChars is a no-op.
	defer t.DelayChars(ctx, 0)

	buf := f.buffer()
	n, err := t.Recv(ctx, buf)
	m.stats.recordFrame(len(req), n)
	if err != nil {
		return nil, err
	}

	if verr := f.verify(req, buf[:n]); verr != nil {
		return nil, verr
	}
	_, _, resp, err = f.decode(buf[:n])
	return resp, err
}

// ReadOptimized runs the full planner pipeline over req and scatters the
// decoded values back into out, one entry per req.Addresses in the
// caller's original order (spec §4.7 last paragraph). out must have the
// same length as req.Addresses. Bit-based function codes populate out
// with 0 or 1; register-based function codes populate out with the
// 16-bit register value.
func (m *Master) ReadOptimized(ctx cancel.Context, req ReadRequest, out []uint16) error {
	if len(out) != len(req.Addresses) {
		return newError(KindInvalidParam, "out has length %d, want %d", len(out), len(req.Addresses))
	}
	p, ok := lookupPolicy(req.FunctionCode)
	if !ok || !p.isRead || !p.supportsMerge {
		return newError(KindInvalidFC, "function code %#x is not a readable, optimizable function", req.FunctionCode)
	}
	if len(req.Addresses) == 0 {
		return nil
	}

	result, err := optimize(req, m.Mode, m.maxPDUChars(), m.latencyChars())
	if err != nil {
		return err
	}
	if m.Static {
		if result.blocksIn > m.MaxBlocks {
			return ErrTooManyBlocks
		}
		if len(result.plans) > m.MaxPlans {
			return ErrTooManyPlans
		}
	}
	m.stats.recordOptimize(len(req.Addresses), result)

	planValues := make([][]uint16, len(result.plans))
	for i, plan := range result.plans {
		data := put(4, plan.StartAddress, plan.Quantity)
		resp, err := m.request(ctx, plan.SlaveID, plan.FunctionCode, data)
		if err != nil {
			return err
		}
		values, err := decodeReadResponse(p, plan.Quantity, resp)
		if err != nil {
			return err
		}
		planValues[i] = values
	}

	for i, addr := range req.Addresses {
		loc := result.scatter[addr]
		out[i] = planValues[loc.planIndex][loc.offset]
	}
	return nil
}

// decodeReadResponse unpacks a read response's byte-count-prefixed data
// field into quantity values, per the unit-size rule of spec §4.1.
func decodeReadResponse(p fcPolicy, quantity uint16, resp []byte) ([]uint16, error) {
	if len(resp) == 0 || int(resp[0]) != len(resp)-1 {
		return nil, newError(KindInvalidFrame, "response byte count does not match payload length")
	}
	data := resp[1:]
	if p.unit == unitBit {
		bools := bytesToBools(quantity, data)
		values := make([]uint16, quantity)
		for i, b := range bools {
			if b {
				values[i] = 1
			}
		}
		return values, nil
	}
	if len(data) != int(quantity)*2 {
		return nil, newError(KindInvalidFrame, "response data length %d does not match quantity %d", len(data), quantity)
	}
	values := make([]uint16, quantity)
	for i := range values {
		values[i] = binary.BigEndian.Uint16(data[2*i:])
	}
	return values, nil
}

// ReadSingle issues one direct, non-optimized read of quantity units
// starting at start, bypassing the planner entirely (spec §4.7
// `read_single`).
func (m *Master) ReadSingle(ctx cancel.Context, slave, fc byte, start, quantity uint16) ([]uint16, error) {
	p, ok := lookupPolicy(fc)
	if !ok || !p.isRead {
		return nil, newError(KindInvalidFC, "function code %#x is not a readable function", fc)
	}
	if err := boundCheck(start, quantity, p.maxQuantity); err != nil {
		return nil, err
	}
	resp, err := m.request(ctx, slave, fc, put(4, start, quantity))
	if err != nil {
		return nil, err
	}
	return decodeReadResponse(p, quantity, resp)
}

// WriteSingleCoil sets the coil at address to status.
func (m *Master) WriteSingleCoil(ctx cancel.Context, slave byte, address uint16, status bool) error {
	resp, err := m.request(ctx, slave, FCWriteSingleCoil, put(4, address, status))
	if err != nil {
		return err
	}
	if len(resp) != 4 || binary.BigEndian.Uint16(resp) != address {
		return newError(KindInvalidFrame, "write single coil echo mismatch")
	}
	return nil
}

// WriteSingleRegister writes value to the holding register at address.
func (m *Master) WriteSingleRegister(ctx cancel.Context, slave byte, address, value uint16) error {
	resp, err := m.request(ctx, slave, FCWriteSingleRegister, put(4, address, value))
	if err != nil {
		return err
	}
	if len(resp) != 4 || binary.BigEndian.Uint16(resp) != address || binary.BigEndian.Uint16(resp[2:]) != value {
		return newError(KindInvalidFrame, "write single register echo mismatch")
	}
	return nil
}

// WriteMultipleRegisters writes values to consecutive holding registers
// starting at address.
func (m *Master) WriteMultipleRegisters(ctx cancel.Context, slave byte, address uint16, values []uint16) error {
	quantity := uint16(len(values))
	p, _ := lookupPolicy(FCWriteMultipleRegisters)
	if err := boundCheck(address, quantity, p.maxQuantity); err != nil {
		return err
	}

	raw := make([]byte, 2*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint16(raw[2*i:], v)
	}

	data := put(5+len(raw), address, quantity, byte(len(raw)), raw)
	resp, err := m.request(ctx, slave, FCWriteMultipleRegisters, data)
	if err != nil {
		return err
	}
	if len(resp) != 4 || binary.BigEndian.Uint16(resp) != address || binary.BigEndian.Uint16(resp[2:]) != quantity {
		return newError(KindInvalidFrame, "write multiple registers echo mismatch")
	}
	return nil
}

// Stats returns a snapshot of the master's accumulated counters.
func (m *Master) Stats() Stats {
	return m.stats.snapshot()
}

// ResetStats zeroes every counter.
func (m *Master) ResetStats() {
	m.stats.reset()
}
