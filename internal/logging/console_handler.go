package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleOutput is shared by a handler and everything derived from it so
// concurrent workers never interleave partial lines.
type consoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// consoleHandler prints a header line per record followed by indented
// fields. Info and above get a curated field list; debug records list every
// field verbatim.
type consoleHandler struct {
	out       *consoleOutput
	level     slog.Leveler
	addSource bool
	preset    []kv
	groups    []string
}

func newConsoleHandler(w io.Writer, lvl slog.Leveler, addSource bool) slog.Handler {
	return &consoleHandler{out: &consoleOutput{w: w}, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]kv, 0, len(h.preset)+record.NumAttrs())
	fields = append(fields, h.preset...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendFlattened(fields, h.groups, attr)
		return true
	})
	fields = dedupeKVsByKey(fields)

	head := lineHeader{
		time:      record.Time,
		level:     record.Level,
		component: lookupField(fields, FieldComponent),
		phase:     lookupField(fields, FieldPhase),
		file:      lookupField(fields, FieldFile),
		message:   strings.TrimSpace(record.Message),
	}
	if head.time.IsZero() {
		head.time = time.Now()
	}
	if head.message == "" {
		head.message = "(no message)"
	}
	if h.addSource {
		head.source = record.Source()
	}

	var buf bytes.Buffer
	buf.Grow(256 + len(fields)*32)
	head.write(&buf)
	if record.Level < slog.LevelInfo {
		writeDebugFields(&buf, fields)
	} else {
		writeInfoFields(&buf, fields)
	}

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	_, err := h.out.w.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := h.clone()
	for _, attr := range attrs {
		next.preset = appendFlattened(next.preset, next.groups, attr)
	}
	return next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(next.groups, name)
	return next
}

func (h *consoleHandler) clone() *consoleHandler {
	return &consoleHandler{
		out:       h.out,
		level:     h.level,
		addSource: h.addSource,
		preset:    append([]kv(nil), h.preset...),
		groups:    append([]string(nil), h.groups...),
	}
}

type lineHeader struct {
	time      time.Time
	level     slog.Level
	component string
	phase     string
	file      string
	message   string
	source    *slog.Source
}

// write renders "TS LEVEL [component] PHASE · file - message [src:line]".
func (l lineHeader) write(buf *bytes.Buffer) {
	buf.WriteString(formatTimestamp(l.time))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(l.level))
	if l.component != "" {
		buf.WriteString(" [" + l.component + "]")
	}
	if subject := FormatSubject(l.phase, l.file); subject != "" {
		buf.WriteString(" " + subject)
	}
	buf.WriteString(" - " + l.message)
	if l.source != nil && l.source.File != "" {
		buf.WriteString(" [" + filepath.Base(l.source.File) + ":" + strconv.Itoa(l.source.Line) + "]")
	}
	buf.WriteByte('\n')
}

func writeInfoFields(buf *bytes.Buffer, fields []kv) {
	shown, hidden := selectInfoFields(fields, infoAttrLimit)
	for _, field := range shown {
		buf.WriteString("    - " + field.label + ": " + field.value + "\n")
	}
	switch {
	case hidden == 1:
		buf.WriteString("    + 1 more field hidden\n")
	case hidden > 1:
		buf.WriteString("    + " + strconv.Itoa(hidden) + " more fields hidden\n")
	}
}

func writeDebugFields(buf *bytes.Buffer, fields []kv) {
	for _, field := range fields {
		buf.WriteString("    " + field.key + ": " + formatValue(field.value) + "\n")
	}
}

type kv struct {
	key   string
	value slog.Value
}

func lookupField(fields []kv, key string) string {
	for _, field := range fields {
		if field.key == key {
			return attrString(field.value)
		}
	}
	return ""
}

// dedupeKVsByKey keeps the first position of each key with its last value.
func dedupeKVsByKey(fields []kv) []kv {
	if len(fields) < 2 {
		return fields
	}
	positions := make(map[string]int, len(fields))
	out := make([]kv, 0, len(fields))
	for _, field := range fields {
		if field.key == "" {
			continue
		}
		if pos, ok := positions[field.key]; ok {
			out[pos].value = field.value
			continue
		}
		positions[field.key] = len(out)
		out = append(out, field)
	}
	return out
}

// appendFlattened expands groups into dotted keys under prefix.
func appendFlattened(dst []kv, prefix []string, attr slog.Attr) []kv {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		inner := prefix
		if attr.Key != "" {
			inner = append(append([]string(nil), prefix...), attr.Key)
		}
		for _, member := range attr.Value.Group() {
			dst = appendFlattened(dst, inner, member)
		}
		return dst
	}
	key := attr.Key
	if len(prefix) > 0 {
		key = strings.Join(append(append([]string(nil), prefix...), attr.Key), ".")
	}
	return append(dst, kv{key: key, value: attr.Value})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
