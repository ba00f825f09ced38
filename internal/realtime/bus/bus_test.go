package bus

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
	"github.com/yungbote/agilecoach-backend/internal/realtime"
)

func collect(t *testing.T, b Bus, ctx context.Context) <-chan realtime.SSEMessage {
	t.Helper()
	out := make(chan realtime.SSEMessage, 4)
	require.NoError(t, b.StartForwarder(ctx, func(m realtime.SSEMessage) { out <- m }))
	return out
}

func expect(t *testing.T, ch <-chan realtime.SSEMessage) realtime.SSEMessage {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bus message")
	}
	return realtime.SSEMessage{}
}

func TestMemoryBusForwards(t *testing.T) {
	b := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	first := collect(t, b, ctx)
	second := collect(t, b, ctx)

	msg := realtime.UserMessage(uuid.New(), realtime.SSEEventProgressUpdated, map[string]any{"score": 10})
	require.NoError(t, b.Publish(context.Background(), msg))
	assert.Equal(t, msg.Channel, expect(t, first).Channel)
	assert.Equal(t, msg.Event, expect(t, second).Event)

	require.NoError(t, b.Close())
	assert.Error(t, b.Publish(context.Background(), msg))
	assert.Error(t, b.StartForwarder(ctx, func(realtime.SSEMessage) {}))
}

func TestMemoryBusRejectsNilCallback(t *testing.T) {
	assert.Error(t, NewMemoryBus().StartForwarder(context.Background(), nil))
}

func TestNewRedisBusRequiresAddress(t *testing.T) {
	_, err := NewRedisBus(logger.Nop(), RedisConfig{})
	assert.Error(t, err)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	userID := uuid.New()
	msg := realtime.UserMessage(userID, realtime.SSEEventScenarioCompleted, map[string]any{"score": 90})
	raw, err := encodeEnvelope("api-1/abcd", msg, time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	env, err := decodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, "api-1/abcd", env.Origin)
	assert.Equal(t, realtime.UserChannel(userID), env.Msg.Channel)
	assert.Equal(t, realtime.SSEEventScenarioCompleted, env.Msg.Event)
}

func TestDecodeEnvelopeRejects(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`{"v":2,"msg":{"channel":"user:x","event":"ProgressUpdated"}}`,
		`{"v":1,"msg":{"channel":"","event":"ProgressUpdated"}}`,
		`{"channel":"user:x","event":"ProgressUpdated"}`,
	} {
		_, err := decodeEnvelope([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestRedisBusRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	b, err := NewRedisBus(logger.Nop(), RedisConfig{Addr: addr, Channel: "agilecoach:test:" + uuid.NewString()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := collect(t, b, ctx)

	userID := uuid.New()
	require.NoError(t, b.Publish(ctx, realtime.UserMessage(userID, realtime.SSEEventInsightsGenerated, map[string]any{"count": 2})))
	m := expect(t, got)
	assert.Equal(t, realtime.UserChannel(userID), m.Channel)
	assert.Equal(t, realtime.SSEEventInsightsGenerated, m.Event)
}
