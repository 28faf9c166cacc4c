// Package history holds the bounded newest-first color lists and their
// persisted comma-separated form.
package history

import (
	"strconv"
	"strings"

	"random-color-picker/internal/model"
)

// Capacity is the maximum number of entries kept in a list.
const Capacity = 5

// Insert returns take(distinct([v] ++ list), Capacity). list is not modified.
func Insert(list []model.ColorValue, v model.ColorValue) []model.ColorValue {
	out := make([]model.ColorValue, 0, Capacity)
	out = append(out, v)
	for _, c := range list {
		if len(out) == Capacity {
			break
		}
		if contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Remove returns list without any entry equal to v, keeping the order of the rest.
func Remove(list []model.ColorValue, v model.ColorValue) []model.ColorValue {
	out := make([]model.ColorValue, 0, len(list))
	for _, c := range list {
		if c != v {
			out = append(out, c)
		}
	}
	return out
}

func contains(list []model.ColorValue, v model.ColorValue) bool {
	for _, c := range list {
		if c == v {
			return true
		}
	}
	return false
}

// Encode joins the signed ARGB integers with commas. An empty list encodes to "".
func Encode(list []model.ColorValue) string {
	parts := make([]string, 0, len(list))
	for _, c := range list {
		parts = append(parts, strconv.FormatInt(int64(c.Int32()), 10))
	}
	return strings.Join(parts, ",")
}

// Decode parses the output of Encode. Tokens that are not integers are skipped.
func Decode(s string) []model.ColorValue {
	if s == "" {
		return []model.ColorValue{}
	}
	tokens := strings.Split(s, ",")
	out := make([]model.ColorValue, 0, len(tokens))
	for _, tok := range tokens {
		n, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, model.FromInt64(n))
	}
	return out
}
