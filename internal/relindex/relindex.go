// Package relindex tracks which frontmatter fields are relationship
// references and computes reverse references on demand. Forward
// registrations are schema-derived and static; reverse references are
// recomputed from disk per query instead of kept in an incrementally
// maintained cache, trading a full scan for freedom from multi-writer
// cache-consistency hazards.
package relindex

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/branwick/lorekeeper/internal/metrics"
	"github.com/branwick/lorekeeper/internal/models"
	"github.com/branwick/lorekeeper/internal/store"
)

// Reference identifies one frontmatter field on one entity that points at
// a target entity.
type Reference struct {
	Module   string `json:"module"`
	EntityID string `json:"entity_id"`
	Field    string `json:"field"`
}

// Index is the relationship-field registry plus the reverse-reference
// scanner. Fields are registered once per module at process start and
// never change afterwards.
type Index struct {
	mu     sync.RWMutex
	fields map[string]map[string]struct{}
	store  *store.Store
	logger *slog.Logger
}

// New creates an index backed by the given content store.
func New(st *store.Store, logger *slog.Logger) *Index {
	return &Index{
		fields: make(map[string]map[string]struct{}),
		store:  st,
		logger: logger,
	}
}

// RegisterFields merges fieldNames into the module's registered set.
// Registration is an idempotent union, so repeated calls are safe.
func (x *Index) RegisterFields(moduleID string, fieldNames []string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	set, ok := x.fields[moduleID]
	if !ok {
		set = make(map[string]struct{}, len(fieldNames))
		x.fields[moduleID] = set
	}
	for _, f := range fieldNames {
		set[f] = struct{}{}
	}
}

// Fields returns the registered field names for moduleID in sorted order,
// empty when the module was never registered.
func (x *Index) Fields(moduleID string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	set := x.fields[moduleID]
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// ComputeReverseReferences scans every registered module's current
// entities and returns targetID -> referencing (module, entity, field)
// triples. Modules without a data folder in the campaign are skipped;
// the result reflects the disk state at scan time.
func (x *Index) ComputeReverseReferences(campaignID string) (map[string][]Reference, error) {
	if !x.store.HasCampaign(campaignID) {
		return nil, store.NewValidationError("campaign %q not found", campaignID)
	}

	x.mu.RLock()
	moduleIDs := make([]string, 0, len(x.fields))
	for id := range x.fields {
		moduleIDs = append(moduleIDs, id)
	}
	x.mu.RUnlock()
	sort.Strings(moduleIDs)

	refs := make(map[string][]Reference)
	for _, moduleID := range moduleIDs {
		metas, err := x.store.List(campaignID, moduleID)
		if err != nil {
			if store.IsValidation(err) {
				x.logger.Debug("skipping module without data folder", "campaign", campaignID, "module", moduleID, "reason", err)
				continue
			}
			return nil, fmt.Errorf("scanning module %q: %w", moduleID, err)
		}

		fields := x.Fields(moduleID)
		for _, meta := range metas {
			for _, field := range fields {
				for _, target := range meta.Frontmatter.Strings(field) {
					refs[target] = append(refs[target], Reference{
						Module:   moduleID,
						EntityID: meta.ID,
						Field:    field,
					})
				}
			}
		}
	}

	metrics.Inc(metrics.ReverseRefScans)
	return refs, nil
}

// References returns only the references pointing at targetID.
func (x *Index) References(campaignID, targetID string) ([]Reference, error) {
	all, err := x.ComputeReverseReferences(campaignID)
	if err != nil {
		return nil, err
	}
	return all[targetID], nil
}

// RegisterModules registers the relationship fields of every module in
// the set. Called exactly once at process start.
func RegisterModules(x *Index, modules *models.ModuleSet) {
	for _, id := range modules.IDs() {
		mod, _ := modules.Get(id)
		if len(mod.RelationshipFields) > 0 {
			x.RegisterFields(mod.ID, mod.RelationshipFields)
		}
	}
}
