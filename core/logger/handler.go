package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders every record as one line with a stable key
// order: the keys listed in keyOrder first, the rest alphabetically.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	prefix string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errors.New("logger: writer not initialized")
	}
	f := h.fields(ctx, r)

	var (
		line []byte
		err  error
	)
	if h.cfg.format == formatJSON {
		line, err = encodeJSON(f, h.cfg.keyOrder)
	} else {
		line = encodeKV(f, h.cfg.keyOrder)
	}
	if err != nil {
		return err
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		// attrs added after WithGroup belong to that group
		clone.attrs = append(clone.attrs, slog.Attr{Key: joinKey(h.prefix, a.Key), Value: a.Value})
	}
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

// fields collects the line: record metadata, handler attrs, record attrs,
// then the correlation ids carried by ctx for keys not set explicitly.
func (h *structuredHandler) fields(ctx context.Context, r slog.Record) fieldSet {
	jsonOut := h.cfg.format == formatJSON
	f := make(fieldSet, 16)

	ts := r.Time.UTC()
	f["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	f["level"] = normalizeLevel(r.Level.String())
	if jsonOut {
		f["ts_unix_nano"] = ts.UnixNano()
	}

	for _, a := range h.attrs {
		f.add("", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		f.add(h.prefix, a)
		return true
	})
	f.fromContext(ctx)

	if rid, ok := f.str("rid"); ok && rid != "" {
		if compact := CompactRID(rid); compact != rid {
			if jsonOut {
				f.setDefault("rid_full", rid)
			}
			f["rid"] = compact
		}
	}
	if ev, _ := f.str("event"); ev == "" {
		f["event"] = firstNonEmpty(r.Message, "unknown")
	}
	if comp, _ := f.str("component"); comp == "" {
		f["component"] = "app"
	}

	f.normalizeEnums()
	f.dropEmpty()
	return f
}

// fieldSet is the flattened key/value view of one log line.
type fieldSet map[string]any

func (f fieldSet) add(prefix string, a slog.Attr) {
	key := joinKey(prefix, a.Key)
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			f.add(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if k, val, ok := plainValue(key, v); ok {
		f[k] = val
	}
}

func (f fieldSet) str(key string) (string, bool) {
	v, ok := f[key]
	if !ok {
		return "", false
	}
	if s, isStr := v.(string); isStr {
		return s, true
	}
	return fmt.Sprint(v), true
}

func (f fieldSet) setDefault(key string, v any) {
	if _, ok := f[key]; !ok {
		f[key] = v
	}
}

func (f fieldSet) fromContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	if rid := RIDFrom(ctx); rid != "" {
		f.setDefault("rid", rid)
	}
	if id := UpdateIDFrom(ctx); id != 0 {
		f.setDefault("update_id", id)
	}
	if id := UserIDFrom(ctx); id != 0 {
		f.setDefault("user_id", id)
	}
	if id := ChatIDFrom(ctx); id != 0 {
		f.setDefault("chat_id", id)
	}
	if name := HandlerFrom(ctx); name != "" {
		f.setDefault("handler", name)
	}
}

// normalizeEnums lowercases status and outcome. An unknown status is kept
// as written, an unknown outcome is dropped.
func (f fieldSet) normalizeEnums() {
	if s, ok := f.str("status"); ok && s != "" {
		f["status"], _ = normalizeEnum(statusNames, s)
	}
	if o, ok := f.str("outcome"); ok && o != "" {
		if v, known := normalizeEnum(outcomeNames, o); known {
			f["outcome"] = v
		} else {
			delete(f, "outcome")
		}
	}
}

func (f fieldSet) dropEmpty() {
	for k, v := range f {
		switch x := v.(type) {
		case nil:
			delete(f, k)
		case string:
			if x == "" {
				delete(f, k)
			}
		}
	}
}

// plainValue converts v into a JSON friendly value. Durations are rendered
// in whole milliseconds under a "_ms" key.
func plainValue(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return msKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}

	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case time.Duration:
		return msKey(key), RoundMS(x).Milliseconds(), true
	case string:
		return key, strings.TrimSpace(x), true
	case fmt.Stringer:
		return key, x.String(), true
	default:
		return key, fmt.Sprint(x), true
	}
}

func msKey(key string) string {
	if key == "duration" {
		return "duration_ms"
	}
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
