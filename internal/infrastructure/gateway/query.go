// Package gateway adapts portal domain operations into concrete HTTP calls
// against the transport client and normalizes their outcomes into the shared
// error taxonomy. The transport client only ever produces generic kinds;
// the resource-specific kinds are minted here.
package gateway

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// isoMillis is the wire format for filter dates: full ISO-8601 with
// milliseconds and a Z suffix.
const isoMillis = "2006-01-02T15:04:05.000Z"

// field is one candidate query parameter. An empty value means the field is
// absent and must not appear in the query string at all.
type field struct {
	key   string
	value string
}

// str passes a string filter through unchanged.
func str(key, value string) field {
	return field{key: key, value: value}
}

// num serializes an integer filter. Always present (page/limit are emitted
// even when they equal the defaults).
func num(key string, value int) field {
	return field{key: key, value: strconv.Itoa(value)}
}

// date serializes an optional instant filter.
func date(key string, value *time.Time) field {
	if value == nil {
		return field{key: key}
	}
	return field{key: key, value: value.UTC().Format(isoMillis)}
}

// buildQuery constructs a query string by appending only the present fields,
// in the exact order given. Field order is part of the contract: it decides
// the literal query string, which callers and tests assert on. This is why
// url.Values.Encode (which sorts keys) is not used here.
func buildQuery(fields ...field) string {
	var b strings.Builder
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.value))
	}
	if b.Len() == 0 {
		return ""
	}
	return "?" + b.String()
}
