package models

import "time"

// Frontmatter is the structured header of an entity file. Its shape is
// module-specific; only "id" and "name" are guaranteed keys.
type Frontmatter map[string]any

// Clone returns a shallow copy of the frontmatter map. Values are shared,
// but adding or removing keys on the copy does not affect the original.
func (fm Frontmatter) Clone() Frontmatter {
	out := make(Frontmatter, len(fm))
	for k, v := range fm {
		out[k] = v
	}
	return out
}

// String returns the value for key if it is a non-empty string.
func (fm Frontmatter) String(key string) (string, bool) {
	s, ok := fm[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Strings returns the value for key as a list of ids. A scalar string
// yields a one-element list; a YAML sequence yields its string elements.
func (fm Frontmatter) Strings(key string) []string {
	switch v := fm[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	default:
		return nil
	}
}

// Entity is one persisted campaign record: a frontmatter header plus a
// free-text body, backed by a single file on disk.
type Entity struct {
	ID          string      `json:"id"`
	Frontmatter Frontmatter `json:"frontmatter"`
	Content     string      `json:"content"`
	Path        string      `json:"path"`
	Modified    time.Time   `json:"modified"`
}

// Metadata is the lightweight listing form of an entity: the frontmatter
// without the body content.
type Metadata struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Frontmatter Frontmatter `json:"frontmatter"`
	Path        string      `json:"path"`
	Modified    time.Time   `json:"modified"`
}

// EntityInput is the caller-supplied payload for create operations.
// The frontmatter may carry an explicit "id"; when absent the store
// generates one from "name".
type EntityInput struct {
	Frontmatter Frontmatter `json:"frontmatter"`
	Content     string      `json:"content"`
}

// EntityUpdate is a partial update. Frontmatter keys present in the map
// overwrite the stored values; a key with a nil value is removed.
// Content replaces the body only when non-nil.
type EntityUpdate struct {
	Frontmatter Frontmatter `json:"frontmatter,omitempty"`
	Content     *string     `json:"content,omitempty"`
}
