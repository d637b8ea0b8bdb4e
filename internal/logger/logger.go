package logger

import (
	"encoding/json"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Fields map[string]any

var sensitiveKeys = map[string]struct{}{
	"pin":             {},
	"transactionpin":  {},
	"transaction_pin": {},
	"taxid":           {},
	"tax_id":          {},
	"channelkey":      {},
	"channel_key":     {},
	"apikey":          {},
	"api_key":         {},
	"password":        {},
}

var base = newLogger()

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

func Info(message string, fields Fields) {
	base.Infow(message, keysAndValues(fields)...)
}

func Error(message string, err error, fields Fields) {
	kvs := keysAndValues(fields)
	if err != nil {
		kvs = append(kvs, "error", err.Error())
	}
	base.Errorw(message, kvs...)
}

// SanitizePayload returns a copy of payload safe for logging, with
// sensitive keys masked at any nesting depth.
func SanitizePayload(payload any) any {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "<unavailable>"
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "<unavailable>"
	}

	return sanitizeValue(data)
}

func keysAndValues(fields Fields) []any {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kvs := make([]any, 0, len(fields)*2)
	for _, k := range keys {
		if isSensitiveKey(k) {
			kvs = append(kvs, k, "******")
			continue
		}
		kvs = append(kvs, k, sanitizeValue(fields[k]))
	}
	return kvs
}

func sanitizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, inner := range typed {
			if isSensitiveKey(key) {
				out[key] = "******"
				continue
			}
			out[key] = sanitizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			out = append(out, sanitizeValue(item))
		}
		return out
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "-", ""))
	_, ok := sensitiveKeys[normalized]
	return ok
}
