package logging

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestFormatValueQuotesOnlyText(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.Local)
	cases := []struct {
		name  string
		value slog.Value
		want  string
	}{
		{"plain string", slog.StringValue("C0001.MP4"), "C0001.MP4"},
		{"string with space", slog.StringValue("Clip 1"), `"Clip 1"`},
		{"string with equals", slog.StringValue("a=b"), `"a=b"`},
		{"empty string", slog.StringValue(""), `""`},
		{"int", slog.Int64Value(42), "42"},
		{"bool", slog.BoolValue(true), "true"},
		{"float", slog.Float64Value(1.5), "1.5"},
		{"large float", slog.Float64Value(1e6), "1000000"},
		{"duration", slog.DurationValue(1500 * time.Millisecond), "1.5s"},
		{"time", slog.TimeValue(ts), "2024-05-01 10:30:00.000"},
		{"error", slog.AnyValue(errors.New("exit status 1")), `"exit status 1"`},
		{"any", slog.AnyValue(struct{ N int }{7}), "{7}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatValue(tc.value); got != tc.want {
				t.Fatalf("formatValue = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAttrStringLeavesTextUnquoted(t *testing.T) {
	if got := attrString(slog.StringValue("metadata extractor")); got != "metadata extractor" {
		t.Fatalf("attrString = %q", got)
	}
	if got := attrString(slog.AnyValue(errors.New("boom now"))); got != "boom now" {
		t.Fatalf("attrString error = %q", got)
	}
	if got := attrString(slog.TimeValue(time.Time{})); got != "" {
		t.Fatalf("zero time should render empty, got %q", got)
	}
}
