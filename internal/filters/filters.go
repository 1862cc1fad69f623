// Package filters implements the template filters and tests (C7): pure
// functions exposed to the jinja producer step's FuncMap, plus the
// not_empty test.
package filters

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

// DatetimeFormat reformats an ISO-8601 timestamp using a Go reference-time
// layout. Everything from the first dot on is dropped (matching the
// source's truncate-at-first-dot behavior), so a zone that follows
// fractional seconds is discarded; a zone written directly after the
// seconds makes the parse fail, and the result is then "".
func DatetimeFormat(isoTimestamp, layout string) string {
	if isoTimestamp == "" {
		return ""
	}
	trimmed := strings.SplitN(isoTimestamp, ".", 2)[0]
	t, err := time.Parse("2006-01-02T15:04:05", trimmed)
	if err != nil {
		return ""
	}
	return t.Format(layout)
}

// Extract returns the values of obj present in keys, skipping absent keys.
func Extract(obj map[string]any, keys []string) []any {
	result := make([]any, 0, len(keys))
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			result = append(result, v)
		}
	}
	return result
}

const alphabetSize = 26

// OfAlphabet is the bijective base-26 numeral for the zero-based index n:
// 0 -> "a", 25 -> "z", 26 -> "aa", 27 -> "ab", 51 -> "az", 52 -> "ba", ...
// This is the bijective form — every non-negative integer maps to a
// distinct string and every string maps back to exactly one integer,
// unlike a positional base-26 encoding which collides on leading "a"s.
func OfAlphabet(n int) string {
	if n < 0 {
		return ""
	}
	m := n + 1 // bijective numeration is 1-based internally
	var b []byte
	for m > 0 {
		m--
		r := m % alphabetSize
		b = append([]byte{byte('a' + r)}, b...)
		m /= alphabetSize
	}
	return string(b)
}

var romanTable = []struct {
	Value  int
	Symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// Roman renders n as a classical additive Roman numeral.
func Roman(n int) string {
	var sb strings.Builder
	for _, rv := range romanTable {
		for n >= rv.Value {
			sb.WriteString(rv.Symbol)
			n -= rv.Value
		}
	}
	return sb.String()
}

// Markdown renders CommonMark markdown to HTML with goldmark's default
// parser (no GitHub-flavored extensions are enabled).
func Markdown(mdText string) (string, error) {
	if mdText == "" {
		return "", nil
	}
	var sb strings.Builder
	if err := goldmark.Convert([]byte(mdText), &sb); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return sb.String(), nil
}

// Dot appends a trailing period unless the text already ends with one or
// is blank.
func Dot(text string) string {
	if strings.HasSuffix(text, ".") || strings.TrimSpace(text) == "" {
		return text
	}
	return text + "."
}

// reply is the shape of one entry in a replies map: {"value": {"value": x}}.
func hasValue(reply map[string]any) bool {
	if reply == nil {
		return false
	}
	v, ok := reply["value"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = v["value"]
	return ok
}

func getValue(reply map[string]any) any {
	return reply["value"].(map[string]any)["value"]
}

// ReplyStrValue returns a reply's value as a string, or "" if absent.
func ReplyStrValue(reply map[string]any) string {
	if !hasValue(reply) {
		return ""
	}
	return fmt.Sprintf("%v", getValue(reply))
}

// ReplyIntValue returns a reply's value as an int, or 0 if absent.
func ReplyIntValue(reply map[string]any) int {
	if !hasValue(reply) {
		return 0
	}
	switch v := getValue(reply).(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// ReplyFloatValue returns a reply's value as a float64, or 0 if absent.
func ReplyFloatValue(reply map[string]any) float64 {
	if !hasValue(reply) {
		return 0
	}
	switch v := getValue(reply).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// ReplyItems returns a reply's value as a slice, or an empty slice if
// absent or not itself a list.
func ReplyItems(reply map[string]any) []any {
	if !hasValue(reply) {
		return []any{}
	}
	if items, ok := getValue(reply).([]any); ok {
		return items
	}
	return []any{}
}

// ReplyPath joins a sequence of uuids into the dotted path used as a
// replies map key.
func ReplyPath(uuids []string) string {
	return strings.Join(uuids, ".")
}

// FindReply looks up replies[path] and coerces its value to xtype
// ("string", "int", "float", "list"). It returns nil when the path has no
// answered reply.
func FindReply(replies map[string]any, path string, xtype string) any {
	raw, ok := replies[path]
	if !ok {
		return nil
	}
	reply, ok := raw.(map[string]any)
	if !ok || !hasValue(reply) {
		return nil
	}

	switch xtype {
	case "int":
		return ReplyIntValue(reply)
	case "float":
		return ReplyFloatValue(reply)
	case "list":
		return ReplyItems(reply)
	default:
		return ReplyStrValue(reply)
	}
}

// NotEmpty is the "not_empty" jinja test: false for nil, empty
// strings/slices/maps, and zero-length anything with a Len; true
// otherwise (including non-empty scalars like 0 or false, matching the
// source's hasattr(__len__)-first check).
func NotEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return len(x) > 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.String, reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
			return rv.Len() > 0
		}
		return true
	}
}
