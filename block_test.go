package modbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockValidate(t *testing.T) {
	cases := []struct {
		name    string
		b       Block
		wantErr Kind
	}{
		{"ok", Block{FunctionCode: FCReadHoldingRegisters, StartAddress: 0, Quantity: 125}, -1},
		{"zero quantity", Block{FunctionCode: FCReadHoldingRegisters, Quantity: 0}, KindInvalidQuantity},
		{"over policy max", Block{FunctionCode: FCReadHoldingRegisters, Quantity: 126}, KindInvalidQuantity},
		{"unknown fc", Block{FunctionCode: 0x99, Quantity: 1}, KindInvalidFC},
		{"address overflow", Block{FunctionCode: FCReadCoils, StartAddress: 0xFFFF, Quantity: 2}, KindInvalidAddress},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.b.Validate()
			if c.wantErr == -1 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, c.wantErr, e.Kind)
		})
	}
}

func TestBlockAddressAtMax(t *testing.T) {
	// Boundary case: address 0xFFFF with quantity 1 succeeds.
	assert.NoError(t, Block{FunctionCode: FCReadHoldingRegisters, StartAddress: 0xFFFF, Quantity: 1}.Validate())
}

func TestAdjacentAndGap(t *testing.T) {
	a := Block{FunctionCode: FCReadHoldingRegisters, StartAddress: 100, Quantity: 3} // [100,103)
	b := Block{FunctionCode: FCReadHoldingRegisters, StartAddress: 103, Quantity: 2} // [103,105)
	assert.True(t, Adjacent(a, b))
	assert.EqualValues(t, 0, Gap(a, b))

	c := Block{FunctionCode: FCReadHoldingRegisters, StartAddress: 110, Quantity: 2} // [110,112)
	assert.False(t, Adjacent(a, c))
	assert.EqualValues(t, 7, Gap(a, c))
}

func TestCompatible(t *testing.T) {
	a := Block{SlaveID: 1, FunctionCode: FCReadHoldingRegisters}
	b := Block{SlaveID: 1, FunctionCode: FCReadHoldingRegisters}
	assert.True(t, Compatible(a, b))

	b.SlaveID = 2
	assert.False(t, Compatible(a, b))
}

func TestMerge(t *testing.T) {
	a := Block{SlaveID: 1, FunctionCode: FCReadHoldingRegisters, StartAddress: 100, Quantity: 3}
	b := Block{SlaveID: 1, FunctionCode: FCReadHoldingRegisters, StartAddress: 115, Quantity: 3}
	merged, err := Merge(a, b)
	require.NoError(t, err)
	assert.EqualValues(t, 100, merged.StartAddress)
	assert.EqualValues(t, 18, merged.Quantity)
	assert.True(t, merged.IsMerged)

	incompatible := Block{SlaveID: 2, FunctionCode: FCReadHoldingRegisters, StartAddress: 0, Quantity: 1}
	_, err = Merge(a, incompatible)
	require.Error(t, err)
}

func TestAddressesToBlocksDedupAndCoalesce(t *testing.T) {
	blocks, locs, err := AddressesToBlocks([]uint16{102, 100, 101, 101, 105}, 1, FCReadHoldingRegisters)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.EqualValues(t, 100, blocks[0].StartAddress)
	assert.EqualValues(t, 3, blocks[0].Quantity)
	assert.EqualValues(t, 105, blocks[1].StartAddress)
	assert.EqualValues(t, 1, blocks[1].Quantity)

	assert.Equal(t, addressLoc{blockIndex: 0, offset: 2}, locs[102])
	assert.Equal(t, addressLoc{blockIndex: 1, offset: 0}, locs[105])
}

func TestAddressesToBlocksUnknownFC(t *testing.T) {
	_, _, err := AddressesToBlocks([]uint16{1}, 1, 0x99)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFC)
}

func TestAddressesToBlocksEmpty(t *testing.T) {
	blocks, locs, err := AddressesToBlocks(nil, 1, FCReadHoldingRegisters)
	require.NoError(t, err)
	assert.Nil(t, blocks)
	assert.Nil(t, locs)
}
