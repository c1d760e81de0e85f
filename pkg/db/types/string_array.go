package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// StringArray maps a postgres text[] column holding order identifiers. The
// sqlite test databases store the same literal form as plain text.
type StringArray []string

func (a *StringArray) Scan(src any) error {
	if src == nil {
		*a = StringArray{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return a.parseFromString(v)
	case []byte:
		return a.parseFromString(string(v))
	default:
		return fmt.Errorf("StringArray: unsupported Scan type %T", src)
	}
}

func (a StringArray) Value() (driver.Value, error) {
	// Postgres array literal: {a,b}
	if len(a) == 0 {
		return "{}", nil
	}
	escaped := make([]string, 0, len(a))
	for _, s := range a {
		if strings.ContainsAny(s, `,{}" `) {
			s = `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
		}
		escaped = append(escaped, s)
	}
	return "{" + strings.Join(escaped, ",") + "}", nil
}

func (a *StringArray) parseFromString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || s == "{}" {
		*a = StringArray{}
		return nil
	}
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	if strings.TrimSpace(s) == "" {
		*a = StringArray{}
		return nil
	}

	out := StringArray{}
	for _, part := range splitArrayLiteral(s) {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, `"`) && strings.HasSuffix(part, `"`) && len(part) >= 2 {
			part = strings.ReplaceAll(part[1:len(part)-1], `\"`, `"`)
		}
		out = append(out, part)
	}
	*a = out
	return nil
}

func splitArrayLiteral(s string) []string {
	var (
		parts    []string
		current  strings.Builder
		inQuotes bool
		escaped  bool
	)
	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			current.WriteRune(r)
			escaped = true
		case r == '"':
			current.WriteRune(r)
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	parts = append(parts, current.String())
	return parts
}

// Contains reports whether the array already holds the given value.
func (a StringArray) Contains(value string) bool {
	for _, s := range a {
		if s == value {
			return true
		}
	}
	return false
}
