// Package hierarchy validates parent-style relationships within a
// module: the directed child->parent graph must stay acyclic. Validation
// runs strictly before any write, so a rejected assignment never touches
// disk.
package hierarchy

import (
	"github.com/branwick/lorekeeper/internal/metrics"
	"github.com/branwick/lorekeeper/internal/models"
	"github.com/branwick/lorekeeper/internal/store"
)

// WouldCreateCycle reports whether assigning proposedParentID as childID's
// parent would close a cycle. It walks the ancestor chain from the
// proposed parent: reaching childID, or revisiting any id before a root,
// rejects. A pre-existing cycle in stored data counts as invalid too.
// Depth is bounded by hierarchy depth; hierarchies are expected shallow.
func WouldCreateCycle(entities []models.Metadata, childID, proposedParentID, parentField string) bool {
	if proposedParentID == childID {
		return true
	}

	byID := make(map[string]models.Metadata, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}

	visited := map[string]bool{}
	current := proposedParentID
	for {
		if current == childID {
			return true
		}
		if visited[current] {
			return true
		}
		visited[current] = true

		entity, ok := byID[current]
		if !ok {
			// Dangling parent reference terminates the walk.
			return false
		}
		parent, ok := entity.Frontmatter.String(parentField)
		if !ok {
			return false
		}
		current = parent
	}
}

// ValidateParentAssignment checks a proposed parent for childID against
// the module's current entities. An empty proposedParentID always passes
// (clearing the parent). A parent id absent from the entity set and a
// cycle both return a ValidationError describing the rejection.
func ValidateParentAssignment(entities []models.Metadata, childID, proposedParentID, parentField string) error {
	if proposedParentID == "" {
		return nil
	}

	found := false
	for _, e := range entities {
		if e.ID == proposedParentID {
			found = true
			break
		}
	}
	if !found {
		return store.NewValidationError("Parent %q not found", proposedParentID)
	}

	if WouldCreateCycle(entities, childID, proposedParentID, parentField) {
		metrics.Inc(metrics.CycleRejections)
		return store.NewValidationError("Cannot set parent: would create a circular reference")
	}
	return nil
}

// ValidateUpdate runs the parent check for a pending create or update
// when it touches the parent field of a hierarchical module. childID is
// empty for creates. Modules without hierarchy semantics always pass.
func ValidateUpdate(st *store.Store, campaignID, moduleID, childID string, fm models.Frontmatter) error {
	mod, ok := st.Modules().Get(moduleID)
	if !ok || !mod.HasHierarchy() || fm == nil {
		return nil
	}
	if _, touched := fm[mod.ParentField]; !touched {
		return nil
	}
	parentID, _ := fm.String(mod.ParentField)
	if parentID == "" {
		return nil
	}

	metas, err := st.List(campaignID, moduleID)
	if err != nil {
		if store.IsValidation(err) {
			// No data folder yet: the named parent cannot exist.
			return store.NewValidationError("Parent %q not found", parentID)
		}
		return err
	}
	return ValidateParentAssignment(metas, childID, parentID, mod.ParentField)
}
