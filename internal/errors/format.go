package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// asSrcError finds a SrcError in err's chain, wrapping plain errors as internal.
func asSrcError(err error) *SrcError {
	var se *SrcError
	if errors.As(err, &se) {
		return se
	}
	return Wrap(ErrCodeInternal, err)
}

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	se := asSrcError(err)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", se.Message)
	if se.Suggestion != "" {
		fmt.Fprintf(&sb, "  Hint: %s\n", se.Suggestion)
	}
	fmt.Fprintf(&sb, "  Code: %s\n", se.Code)
	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
}

// FormatJSON returns a JSON representation of the error, used by
// `srcfind --json` so scripted callers get a parseable failure.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	se := asSrcError(err)
	je := jsonError{
		Code:       se.Code,
		Message:    se.Message,
		Category:   string(se.Category),
		Severity:   string(se.Severity),
		Details:    se.Details,
		Suggestion: se.Suggestion,
	}
	if se.Cause != nil {
		je.Cause = se.Cause.Error()
	}
	return json.Marshal(je)
}

// FormatForLog returns slog attributes describing err.
// Details are emitted in key order so log lines are stable.
func FormatForLog(err error) []slog.Attr {
	if err == nil {
		return nil
	}

	var se *SrcError
	if !errors.As(err, &se) {
		return []slog.Attr{slog.String("error", err.Error())}
	}

	attrs := []slog.Attr{
		slog.String("error_code", se.Code),
		slog.String("message", se.Message),
		slog.String("category", string(se.Category)),
		slog.String("severity", string(se.Severity)),
	}
	if se.Cause != nil {
		attrs = append(attrs, slog.String("cause", se.Cause.Error()))
	}
	if se.Suggestion != "" {
		attrs = append(attrs, slog.String("suggestion", se.Suggestion))
	}

	keys := make([]string, 0, len(se.Details))
	for k := range se.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.String("detail_"+k, se.Details[k]))
	}
	return attrs
}
