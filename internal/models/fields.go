package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidField is returned when a column value fails its per-field validation.
	ErrInvalidField = errors.New("invalid field")
	// ErrUnknownType is returned when a row's discriminator has no registered constructor.
	ErrUnknownType = errors.New("unknown entity type")
)

// LinkPlaceholder stands in for the site URL inside stored HTML so content survives a domain move.
const LinkPlaceholder = "TFISH_LINK"

// Links converts between stored HTML (with LinkPlaceholder) and display HTML (with the site URL).
type Links struct {
	SiteURL string
}

// Expand replaces the placeholder with the site URL.
func (l Links) Expand(html string) string {
	if l.SiteURL == "" {
		return html
	}
	return strings.ReplaceAll(html, LinkPlaceholder, l.SiteURL)
}

// Compact replaces the site URL with the placeholder.
func (l Links) Compact(html string) string {
	if l.SiteURL == "" {
		return html
	}
	return strings.ReplaceAll(html, l.SiteURL, LinkPlaceholder)
}

// field binds a column name to the struct field holding it.
type field struct {
	column string
	ptr    any
	html   bool
}

// loadFields copies row values into the bound fields. Columns absent from the row are left untouched.
func loadFields(fields []field, row map[string]any, links Links) error {
	for _, f := range fields {
		v, ok := row[f.column]
		if !ok {
			continue
		}
		if err := assign(f.ptr, v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidField, f.column, err)
		}
		if f.html {
			if s, ok := f.ptr.(*string); ok {
				*s = links.Expand(*s)
			}
		}
	}
	return nil
}

// persistFields returns column => value for every bound field except those listed in skip.
func persistFields(fields []field, links Links, skip ...string) map[string]any {
	out := make(map[string]any, len(fields))
outer:
	for _, f := range fields {
		for _, s := range skip {
			if s == f.column {
				continue outer
			}
		}
		switch p := f.ptr.(type) {
		case *string:
			if f.html {
				out[f.column] = links.Compact(*p)
			} else {
				out[f.column] = *p
			}
		case *int64:
			out[f.column] = *p
		case *JSON:
			if len(p.JSON) == 0 {
				out[f.column] = nil
			} else {
				out[f.column] = p.String()
			}
		}
	}
	return out
}

func assign(ptr any, v any) error {
	switch p := ptr.(type) {
	case *string:
		s, err := asString(v)
		if err != nil {
			return err
		}
		*p = s
	case *int64:
		n, err := asInt64(v)
		if err != nil {
			return err
		}
		*p = n
	case *JSON:
		s, err := asString(v)
		if err != nil {
			return err
		}
		return p.Scan(s)
	default:
		return fmt.Errorf("unsupported field type %T", ptr)
	}
	return nil
}

func asString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case int:
		return strconv.Itoa(t), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("cannot use %T as text", v)
	}
}

func asInt64(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	case float64:
		return int64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return asInt64(string(t))
	case string:
		if t == "" {
			return 0, nil
		}
		return strconv.ParseInt(strings.TrimSpace(t), 10, 64)
	default:
		return 0, fmt.Errorf("cannot use %T as integer", v)
	}
}
