package modbus

import (
	"testing"
	"time"

	"github.com/GoAethereal/cancel"
	"github.com/stretchr/testify/assert"
)

func TestTCPTransportDeadlineUsesOwnTimeoutWhenCtxHasNone(t *testing.T) {
	tr := &tcpTransport{timeout: 50 * time.Millisecond}
	before := time.Now()
	d := tr.deadline(cancel.New())
	assert.True(t, d.After(before))
	assert.True(t, d.Before(before.Add(time.Second)))
}
