package events

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
)

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "playerhire-test")
	assert.ErrorIs(t, err, nats.ErrNoServers)
}

func TestNATSPublisher_CanceledContext(t *testing.T) {
	p := &NATSPublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Publish(ctx, "players.hired", nil), context.Canceled)
	p.Close()
}
