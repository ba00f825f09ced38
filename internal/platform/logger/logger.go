package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a sugared zap logger that scrubs learner data from key/value
// pairs before they are written. Children made with With keep the policy.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
	policy        *policy
}

// policy decides what happens to a value based on its key. Redacted keys
// are replaced outright; hashed keys keep a salted digest so one learner's
// lines can still be grouped.
type policy struct {
	enabled bool
	salt    string
}

var (
	redactMarkers = []string{"token", "authorization", "password", "secret", "api_key", "apikey", "email", "first_name", "last_name"}
	hashMarkers   = []string{"user_id", "username"}
)

// New builds a logger for the given mode: "prod"/"production" emits JSON,
// "test" only emits warnings and above, anything else is development output.
// LOG_LEVEL overrides the mode's default level. LOG_REDACTION_ENABLED=false
// turns scrubbing off and LOG_HASH_SALT salts hashed values.
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(strings.ToLower(raw))); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	redact, salt := policyFromEnv()
	return &Logger{SugaredLogger: zapLogger.Sugar(), policy: &policy{enabled: redact, salt: salt}}, nil
}

// FromCore wraps an existing zap core. Tests pair it with zaptest/observer.
func FromCore(core zapcore.Core, redact bool, salt ...string) *Logger {
	p := &policy{enabled: redact}
	if len(salt) > 0 {
		p.salt = salt[0]
	}
	return &Logger{SugaredLogger: zap.New(core).Sugar(), policy: p}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar(), policy: &policy{}}
}

func policyFromEnv() (bool, string) {
	enabled := true
	switch strings.TrimSpace(strings.ToLower(os.Getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		enabled = false
	}
	return enabled, strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, l.policy.apply(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, l.policy.apply(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, l.policy.apply(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, l.policy.apply(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, l.policy.apply(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.policy.apply(keysAndValues)...), policy: l.policy}
}

func (p *policy) apply(kv []interface{}) []interface{} {
	if p == nil || !p.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := toString(kv[i])
		out = append(out, key, p.value(normalizeKey(key), kv[i+1]))
	}
	return out
}

func (p *policy) value(key string, val interface{}) interface{} {
	switch {
	case key == "":
		return val
	case hasMarker(key, redactMarkers):
		return "[REDACTED]"
	case hasMarker(key, hashMarkers):
		return p.hash(val)
	}
	if m, ok := val.(map[string]interface{}); ok {
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[k] = p.value(normalizeKey(k), v)
		}
		return out
	}
	return val
}

func (p *policy) hash(val interface{}) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	h := sha256.New()
	_, _ = h.Write([]byte(p.salt))
	_, _ = h.Write([]byte(raw))
	return "hash:" + hex.EncodeToString(h.Sum(nil))[:12]
}

// normalizeKey folds camelCase and dashes so "userId", "userID" and
// "user-id" all match the "user_id" marker.
func normalizeKey(k string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range strings.TrimSpace(k) {
		switch {
		case r == '-' || r == ' ':
			b.WriteByte('_')
			prevLower = false
		case r >= 'A' && r <= 'Z':
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		}
	}
	return b.String()
}

func hasMarker(key string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(key, m) {
			return true
		}
	}
	return false
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
