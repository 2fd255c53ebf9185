package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap SugaredLogger and scrubs key/value pairs before they are
// written. Clinical text never belongs in a log line; identifiers are hashed.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

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
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(sanitizeKVs(keysAndValues)...)}
}

// Keys are matched by substring after lowercasing.
var (
	// Free text from a consultation.
	clinicalKeys = []string{"transcript", "soap", "summary", "utterance", "segment_text", "body"}
	// Provider and mail credentials.
	credentialKeys = []string{"api_key", "apikey", "authorization", "secret", "token"}
	// Identifiers that still need to correlate across lines.
	identifierKeys = []string{"session_id", "consultation_id", "patient", "recipient", "email"}
)

type redactionPolicy struct {
	enabled bool
	salt    string
}

var (
	policyOnce sync.Once
	policy     redactionPolicy
)

// activePolicy reads LOG_REDACTION_ENABLED and LOG_HASH_SALT once.
func activePolicy() redactionPolicy {
	policyOnce.Do(func() {
		policy = redactionPolicy{
			enabled: true,
			salt:    strings.TrimSpace(os.Getenv("LOG_HASH_SALT")),
		}
		switch strings.TrimSpace(strings.ToLower(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			policy.enabled = false
		}
	})
	return policy
}

func sanitizeKVs(kv []interface{}) []interface{} {
	p := activePolicy()
	if len(kv) == 0 || !p.enabled {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := toString(kv[i])
		out = append(out, key, p.scrub(normalizeKey(key), kv[i+1]))
	}
	return out
}

func sanitizeValue(key string, val interface{}) interface{} {
	return activePolicy().scrub(key, val)
}

func (p redactionPolicy) scrub(key string, val interface{}) interface{} {
	switch {
	case key == "":
		return val
	case matchesAny(key, clinicalKeys), matchesAny(key, credentialKeys):
		return "[REDACTED]"
	case matchesAny(key, identifierKeys):
		return p.hash(val)
	}
	m, ok := val.(map[string]interface{})
	if !ok {
		return val
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = p.scrub(normalizeKey(k), v)
	}
	return out
}

func (p redactionPolicy) hash(val interface{}) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(p.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func hashValue(val interface{}) string {
	return activePolicy().hash(val)
}

func matchesAny(key string, frags []string) bool {
	for _, frag := range frags {
		if strings.Contains(key, frag) {
			return true
		}
	}
	return false
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
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
