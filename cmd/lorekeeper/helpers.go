package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/branwick/lorekeeper/internal/models"
)

// parseFieldFlags turns repeated --field k=v flags into frontmatter.
// Values that parse as JSON (true, 42, null, ["a","b"]) keep their typed
// form; anything else stays a plain string. A null value marks the key
// for removal on update.
func parseFieldFlags(flags []string) (models.Frontmatter, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	fm := make(models.Frontmatter, len(flags))
	for _, f := range flags {
		key, raw, found := strings.Cut(f, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --field %q: expected key=value", f)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		fm[key] = v
	}
	return fm, nil
}
