package article

import "time"

// CategoryInfo describes a category directory. It is read from an optional
// metadata file inside the directory; the zero value means there is none.
type CategoryInfo struct {
	Name        string    `json:"name,omitempty" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description"`
	Created     time.Time `json:"created,omitzero" yaml:"created"`
}

// IsZero reports whether c carries no metadata.
func (c CategoryInfo) IsZero() bool {
	return c.Name == "" && c.Description == "" && c.Created.IsZero()
}

// CategoryLabels returns a display name per category segment: the segment's
// metadata name when set, the segment itself otherwise.
func (p Preview) CategoryLabels() []string {
	labels := make([]string, len(p.Category))
	for i, seg := range p.Category {
		labels[i] = seg
		if i < len(p.Categories) && p.Categories[i].Name != "" {
			labels[i] = p.Categories[i].Name
		}
	}
	return labels
}
