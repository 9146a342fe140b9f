package logger

import (
	"fmt"
	"log/slog"
)

// maxStringAttr is the longest string value logged verbatim.
const maxStringAttr = 256

// summarizePayload keeps image bytes and long text bodies out of log lines.
// Byte slices are replaced by their length and long strings are truncated.
func summarizePayload(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindAny:
		if b, ok := a.Value.Any().([]byte); ok {
			return slog.String(a.Key, PayloadSummary(b))
		}
	case slog.KindString:
		if s := a.Value.String(); len(s) > maxStringAttr {
			return slog.String(a.Key, s[:maxStringAttr]+fmt.Sprintf("...(%d bytes)", len(s)))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = summarizePayload(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// PayloadSummary describes a payload without its content.
func PayloadSummary(b []byte) string {
	return fmt.Sprintf("<%d bytes>", len(b))
}
