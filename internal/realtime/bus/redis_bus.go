package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
	"github.com/yungbote/agilecoach-backend/internal/realtime"
)

const (
	defaultRedisChannel = "agilecoach:events"
	envelopeVersion     = 1
	publishTimeout      = 2 * time.Second
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Channel defaults to "agilecoach:events".
	Channel string
}

// envelope is the pub/sub payload. Origin names the publishing process so
// operators can trace cross-instance delivery in the logs.
type envelope struct {
	V      int                 `json:"v"`
	Origin string              `json:"origin"`
	SentAt time.Time           `json:"sent_at"`
	Msg    realtime.SSEMessage `json:"msg"`
}

var errUnsupportedEnvelope = errors.New("unsupported event envelope")

func encodeEnvelope(origin string, msg realtime.SSEMessage, now time.Time) ([]byte, error) {
	return json.Marshal(envelope{V: envelopeVersion, Origin: origin, SentAt: now.UTC(), Msg: msg})
}

func decodeEnvelope(raw []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, err
	}
	if env.V != envelopeVersion {
		return envelope{}, fmt.Errorf("%w: v=%d", errUnsupportedEnvelope, env.V)
	}
	if env.Msg.Channel == "" || env.Msg.Event == "" {
		return envelope{}, fmt.Errorf("%w: missing channel or event", errUnsupportedEnvelope)
	}
	return env, nil
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	origin  string
}

// NewRedisBus connects and pings Redis. It fails fast so a misconfigured
// instance never starts silently dropping events.
func NewRedisBus(log *logger.Logger, cfg RedisConfig) (Bus, error) {
	if log == nil {
		log = logger.Nop()
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = defaultRedisChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	origin := instanceOrigin()
	return &redisBus{
		log:     log.With("component", "RedisEventBus", "channel", ch, "origin", origin),
		rdb:     rdb,
		channel: ch,
		origin:  origin,
	}, nil
}

func instanceOrigin() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return host + "/" + uuid.NewString()[:8]
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	raw, err := encodeEnvelope(b.origin, msg, time.Now())
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				env, err := decodeEnvelope([]byte(m.Payload))
				if err != nil {
					b.log.Warn("Dropping bad event payload", "error", err)
					continue
				}
				if env.Origin != b.origin {
					b.log.Debug("Forwarding remote event", "from", env.Origin, "event", env.Msg.Event)
				}
				onMsg(env.Msg)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error {
	return b.rdb.Close()
}
