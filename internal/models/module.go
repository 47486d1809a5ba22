package models

import "sort"

// Module describes a content category: where its entity files live and
// which frontmatter fields reference other entities. The descriptor is
// data-driven so the store stays module-agnostic; schemas and validation
// syntax live outside this package.
type Module struct {
	ID string `json:"id" mapstructure:"id"`

	// DataFolder is the directory name under a campaign root holding this
	// module's entity files.
	DataFolder string `json:"data_folder" mapstructure:"data_folder"`

	// RelationshipFields are frontmatter fields whose values are entity ids.
	RelationshipFields []string `json:"relationship_fields" mapstructure:"relationship_fields"`

	// ParentField, when set, names the frontmatter field forming a
	// child->parent hierarchy within the module. The hierarchy must stay
	// acyclic.
	ParentField string `json:"parent_field,omitempty" mapstructure:"parent_field"`
}

// HasHierarchy reports whether the module has parent-link semantics.
func (m Module) HasHierarchy() bool { return m.ParentField != "" }

// BuiltinModules returns the default module set. Config may override or
// extend it at startup.
func BuiltinModules() []Module {
	return []Module{
		{
			ID:                 "locations",
			DataFolder:         "locations",
			RelationshipFields: []string{"parent", "faction"},
			ParentField:        "parent",
		},
		{
			ID:                 "npcs",
			DataFolder:         "npcs",
			RelationshipFields: []string{"location", "faction", "ship"},
		},
		{
			ID:                 "ships",
			DataFolder:         "ships",
			RelationshipFields: []string{"location", "faction", "captain"},
		},
		{
			ID:                 "factions",
			DataFolder:         "factions",
			RelationshipFields: []string{"headquarters"},
		},
	}
}

// ModuleSet is an immutable lookup of module descriptors by id.
type ModuleSet struct {
	byID map[string]Module
}

// NewModuleSet builds a set from descriptors. Later entries with the same
// id replace earlier ones, letting config overrides win over builtins.
func NewModuleSet(modules []Module) *ModuleSet {
	byID := make(map[string]Module, len(modules))
	for _, m := range modules {
		if m.DataFolder == "" {
			m.DataFolder = m.ID
		}
		byID[m.ID] = m
	}
	return &ModuleSet{byID: byID}
}

// Get returns the descriptor for id.
func (s *ModuleSet) Get(id string) (Module, bool) {
	m, ok := s.byID[id]
	return m, ok
}

// IDs returns all module ids in sorted order.
func (s *ModuleSet) IDs() []string {
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
