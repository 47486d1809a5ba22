// Package playerview projects entities into a player-safe view: items
// hidden from players are dropped and DM-only fields stripped. Filtering
// never mutates its input and never removes identity fields.
package playerview

import "github.com/branwick/lorekeeper/internal/models"

// dmOnlyFields are frontmatter keys excluded from every player-facing
// projection.
var dmOnlyFields = []string{"dmOnly", "hidden", "playerVisible"}

// IsHiddenFromPlayers reports whether the record is excluded entirely
// from player-facing output. Two conventions coexist across module
// schemas — `hidden: true` and `playerVisible: false` — and are treated
// as independent predicates rather than unified.
func IsHiddenFromPlayers(fm models.Frontmatter) bool {
	if hidden, ok := fm["hidden"].(bool); ok && hidden {
		return true
	}
	if visible, ok := fm["playerVisible"].(bool); ok && !visible {
		return true
	}
	return false
}

// FilterFrontmatter returns a copy of fm with DM-only fields removed.
func FilterFrontmatter(fm models.Frontmatter) models.Frontmatter {
	out := fm.Clone()
	for _, field := range dmOnlyFields {
		delete(out, field)
	}
	return out
}

// FilterEntity returns a copy of the entity safe to show players.
func FilterEntity(e models.Entity) models.Entity {
	e.Frontmatter = FilterFrontmatter(e.Frontmatter)
	return e
}

// FilterMetadata returns a copy of the metadata safe to show players.
func FilterMetadata(m models.Metadata) models.Metadata {
	m.Frontmatter = FilterFrontmatter(m.Frontmatter)
	return m
}

// FilterMetadataList removes records hidden from players and strips
// DM-only fields from the remainder, preserving the original order.
func FilterMetadataList(list []models.Metadata) []models.Metadata {
	out := make([]models.Metadata, 0, len(list))
	for _, m := range list {
		if IsHiddenFromPlayers(m.Frontmatter) {
			continue
		}
		out = append(out, FilterMetadata(m))
	}
	return out
}
