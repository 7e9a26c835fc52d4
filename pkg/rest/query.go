package rest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// queryParams holds query parameters in insertion order. url.Values sorts
// keys when encoding, which would make serialized URLs drift from the order
// parameters were attached in.
type queryParams struct {
	keys   []string
	values map[string]string
}

func newQueryParams() *queryParams {
	return &queryParams{values: make(map[string]string)}
}

// set records the value for key. An existing key keeps its position and
// takes the new value.
func (q *queryParams) set(key, value string) {
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}

	q.values[key] = value
}

// clone returns an independent copy.
func (q *queryParams) clone() *queryParams {
	out := &queryParams{
		keys:   make([]string, len(q.keys)),
		values: make(map[string]string, len(q.values)),
	}

	copy(out.keys, q.keys)

	for key, value := range q.values {
		out.values[key] = value
	}

	return out
}

func (q *queryParams) len() int {
	if q == nil {
		return 0
	}

	return len(q.keys)
}

// encode serializes the parameters in insertion order.
func (q *queryParams) encode() string {
	if q == nil || len(q.keys) == 0 {
		return ""
	}

	var builder strings.Builder

	for i, key := range q.keys {
		if i > 0 {
			builder.WriteByte('&')
		}

		builder.WriteString(url.QueryEscape(key))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(q.values[key]))
	}

	return builder.String()
}

// formatScalar renders a query or parameter value as it should appear on
// the wire.
func formatScalar(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
