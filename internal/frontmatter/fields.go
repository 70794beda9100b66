package frontmatter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Reserved frontmatter keys understood by the parse stage.
const (
	KeyTitle       = "title"
	KeyCreated     = "created"
	KeyTags        = "tags"
	KeyAuthor      = "author"
	KeyDescription = "description"
)

// ErrMissingCreated is returned when an article has no created date.
var ErrMissingCreated = errors.New("frontmatter field \"created\" is required")

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Fields is the typed view of an article's frontmatter.
type Fields struct {
	Title       string
	Created     time.Time
	Tags        []string
	Author      string
	Description string
	Extra       map[string]any
}

// Decode parses raw frontmatter into Fields. Unknown keys are kept in Extra.
func Decode(raw []byte) (Fields, error) {
	m, err := ParseYAML(raw)
	if err != nil {
		return Fields{}, err
	}

	var f Fields
	for k, v := range m {
		switch k {
		case KeyTitle:
			f.Title, err = asString(k, v)
		case KeyAuthor:
			f.Author, err = asString(k, v)
		case KeyDescription:
			f.Description, err = asString(k, v)
		case KeyTags:
			f.Tags, err = asStrings(v)
		case KeyCreated:
			f.Created, err = asTime(v)
		default:
			if f.Extra == nil {
				f.Extra = make(map[string]any)
			}
			f.Extra[k] = v
		}
		if err != nil {
			return Fields{}, err
		}
	}

	if f.Created.IsZero() {
		return Fields{}, ErrMissingCreated
	}
	return f, nil
}

func asString(key string, v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case int, int64, float64, bool:
		return fmt.Sprint(s), nil
	default:
		return "", fmt.Errorf("frontmatter field %q: expected string, got %T", key, v)
	}
}

func asStrings(v any) ([]string, error) {
	switch vv := v.(type) {
	case nil:
		return nil, nil
	case string:
		var out []string
		for _, part := range strings.Split(vv, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			s, err := asString(KeyTags, item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("frontmatter field %q: expected list, got %T", KeyTags, v)
	}
}

func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("frontmatter field %q: invalid date %q", KeyCreated, t)
	case nil:
		return time.Time{}, ErrMissingCreated
	default:
		return time.Time{}, fmt.Errorf("frontmatter field %q: expected date, got %T", KeyCreated, v)
	}
}
