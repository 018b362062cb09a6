package logging

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

type infoField struct {
	label string
	value string
}

const infoAttrLimit = 8

// infoHighlightKeys are listed first, in this order, when present.
var infoHighlightKeys = []string{
	FieldEventType,
	FieldDecisionType,
	"decision_result",
	"decision_reason",
	"root",
	"camera_id",
	"camera_model",
	"descriptors",
	"descriptors_with_identity",
	"videos",
	"cameras",
	"attributed_files",
	"unknown_files",
	"mixed_folders",
	"conflicts",
	"total_size_bytes",
	"elapsed",
	"error",
	FieldErrorHint,
	FieldImpact,
	"reason",
}

// selectInfoFields returns formatted info-level fields and a count of hidden
// entries. limit=0 means no limit.
func selectInfoFields(attrs []kv, limit int) ([]infoField, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	if limit < 0 {
		limit = 0
	}
	used := make([]bool, len(attrs))
	result := make([]infoField, 0, infoAttrLimit)
	hidden := 0

	accept := func(idx int) {
		attr := attrs[idx]
		used[idx] = true
		if skipInfoKey(attr.key) {
			return
		}
		if isDebugOnlyKey(attr.key) {
			hidden++
			return
		}
		val := formatValueForKey(attr.key, attr.value)
		if shouldHideInfoValue(attr.key, val) {
			hidden++
			return
		}
		if limit > 0 && len(result) >= limit {
			hidden++
			return
		}
		result = append(result, infoField{label: displayLabel(attr.key), value: val})
	}

	for _, key := range infoHighlightKeys {
		for idx, attr := range attrs {
			if !used[idx] && attr.key == key {
				accept(idx)
				break
			}
		}
	}
	for idx := range attrs {
		if !used[idx] {
			accept(idx)
		}
	}
	return result, hidden
}

// formatValueForKey applies smart formatting based on the key name.
func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()

	if isByteSizeKey(key) && (v.Kind() == slog.KindInt64 || v.Kind() == slog.KindUint64) {
		if v.Kind() == slog.KindInt64 {
			if n := v.Int64(); n >= 0 {
				return humanize.IBytes(uint64(n))
			}
			return formatValue(v)
		}
		return humanize.IBytes(v.Uint64())
	}
	if isDurationKey(key) && v.Kind() == slog.KindDuration {
		return v.Duration().Round(time.Millisecond).String()
	}
	if isPercentKey(key) && v.Kind() == slog.KindFloat64 {
		return fmt.Sprintf("%.1f%%", v.Float64())
	}
	if v.Kind() == slog.KindBool {
		if v.Bool() {
			return "yes"
		}
		return "no"
	}

	value := formatValue(v)
	if key == "error" {
		value = truncateErrorValue(value)
	}
	return value
}

func isByteSizeKey(key string) bool {
	return strings.HasSuffix(key, "_bytes") || key == "size"
}

func isDurationKey(key string) bool {
	return strings.HasSuffix(key, "_duration") ||
		strings.HasSuffix(key, "_elapsed") ||
		key == "elapsed" ||
		key == "duration"
}

func isPercentKey(key string) bool {
	return strings.HasSuffix(key, "_percent") || key == "percent"
}

func truncateErrorValue(value string) string {
	value = strings.TrimSpace(value)
	const maxLen = 200
	if len(value) > maxLen {
		value = value[:maxLen] + "…"
	}
	return value
}

func skipInfoKey(key string) bool {
	switch key {
	case "", FieldPhase, FieldFile, FieldComponent:
		return true
	default:
		return false
	}
}

func isDebugOnlyKey(key string) bool {
	switch key {
	case "", FieldRunID, "source_descriptor", "duration_seconds", "width", "height":
		return true
	}
	if strings.HasPrefix(key, "ffprobe.") {
		return true
	}
	return strings.HasSuffix(key, "_path") || strings.HasSuffix(key, "_dir")
}

func shouldHideInfoValue(key, value string) bool {
	switch key {
	case "error", "root", FieldErrorHint:
		return false
	}
	return len(value) > 120
}

func displayLabel(key string) string {
	switch key {
	case FieldEventType:
		return "Event"
	case FieldDecisionType, "decision_result":
		return "Decision"
	case "decision_reason":
		return "Reason"
	case FieldErrorHint:
		return "Hint"
	case "camera_id":
		return "Camera"
	case "camera_model":
		return "Model"
	case "descriptors_with_identity":
		return "With Identity"
	case "attributed_files":
		return "Attributed"
	case "unknown_files":
		return "Unknown"
	case "mixed_folders":
		return "Mixed Folders"
	case "total_size_bytes":
		return "Total Size"
	default:
		return titleizeKey(key)
	}
}

func titleizeKey(key string) string {
	if key == "" {
		return ""
	}
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-'
	})
	if len(parts) == 0 {
		return strings.ToUpper(key[:1]) + strings.ToLower(key[1:])
	}
	for i, part := range parts {
		parts[i] = capitalizeASCII(part)
	}
	return strings.Join(parts, " ")
}

func capitalizeASCII(value string) string {
	switch len(value) {
	case 0:
		return ""
	case 1:
		return strings.ToUpper(value)
	default:
		lower := strings.ToLower(value)
		return strings.ToUpper(lower[:1]) + lower[1:]
	}
}
