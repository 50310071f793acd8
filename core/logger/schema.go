package logger

import "strings"

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

var statusNames = map[string]string{
	"ok":           "ok",
	"fail":         "fail",
	"skip":         "skip",
	"retry":        "retry",
	"rate_limited": "rate_limited",
	"duplicate":    "duplicate",
	"cancelled":    "cancelled",
}

var outcomeNames = map[string]string{
	"ok":        "ok",
	"fail":      "fail",
	"invalid":   "invalid",
	"cancelled": "cancelled",
}

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if mapped, ok := levelNames[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

// normalizeEnum lowercases value and reports whether it belongs to known.
func normalizeEnum(known map[string]string, value string) (string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", false
	}
	mapped, ok := known[value]
	if !ok {
		return value, false
	}
	return mapped, true
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"flow",
	"step",
	"next_step",
	"cb_key",
	"outcome",
	"duration_ms",
	"kind",
	"vacancy",
	"record_id",
	"delivery_id",
	"recipient",
	"count",
	"payload",
	"username",
	"mode",
	"listen",
	"public_url",
	"http_code",
	"driver",
	"db",
	"host",
	"port",
	"err",
	"err_code",
	"error_kind",
	"cause",
	"attempts",
	"attempt",
	"backoff_ms",
	"swept",
}
