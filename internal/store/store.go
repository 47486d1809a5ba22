// Package store implements the campaign content store: CRUD over
// entities persisted one file per entity inside per-campaign, per-module
// directories. Mutations to the same entity are serialized through an
// injected lock manager; the filesystem is the single source of truth.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/branwick/lorekeeper/internal/campaign"
	"github.com/branwick/lorekeeper/internal/contentfile"
	"github.com/branwick/lorekeeper/internal/lock"
	"github.com/branwick/lorekeeper/internal/metrics"
	"github.com/branwick/lorekeeper/internal/models"
)

// maxIDAttempts bounds suffix regeneration when a generated id collides.
const maxIDAttempts = 10

// Store provides CRUD over entities scoped to (campaignID, moduleID).
type Store struct {
	campaigns *campaign.Manager
	modules   *models.ModuleSet
	locks     *lock.Manager
	logger    *slog.Logger
}

// New creates a content store. The lock manager is injected so isolated
// stores can coexist in tests without sharing lock state.
func New(campaigns *campaign.Manager, modules *models.ModuleSet, locks *lock.Manager, logger *slog.Logger) *Store {
	return &Store{
		campaigns: campaigns,
		modules:   modules,
		locks:     locks,
		logger:    logger,
	}
}

// Modules returns the module descriptor set the store was built with.
func (s *Store) Modules() *models.ModuleSet { return s.modules }

// HasCampaign reports whether the campaign directory exists.
func (s *Store) HasCampaign(campaignID string) bool {
	return s.campaigns.Exists(campaignID)
}

// List returns metadata for all parsable entity files in the module
// directory, sorted by name then id. Unparsable files are skipped with a
// warning; ids beginning with "_" are module settings records and are
// excluded. A missing campaign or module directory is a validation error.
func (s *Store) List(campaignID, moduleID string) ([]models.Metadata, error) {
	dir, err := s.moduleDir(campaignID, moduleID, false)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading module dir %s: %w", dir, err)
	}

	metas := make([]models.Metadata, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), contentfile.Ext) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), contentfile.Ext)
		if strings.HasPrefix(id, "_") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable entity file", "path", path, "error", err)
			metrics.Inc(metrics.ParseFailures)
			continue
		}
		fm, _, err := contentfile.Decode(data)
		if err != nil {
			s.logger.Warn("skipping unparsable entity file", "path", path, "error", err)
			metrics.Inc(metrics.ParseFailures)
			continue
		}

		info, err := entry.Info()
		var modified time.Time
		if err == nil {
			modified = info.ModTime().UTC()
		}

		if fileID, ok := fm.String("id"); ok {
			id = fileID
		}
		name, _ := fm.String("name")
		metas = append(metas, models.Metadata{
			ID:          id,
			Name:        name,
			Frontmatter: fm,
			Path:        path,
			Modified:    modified,
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		if metas[i].Name != metas[j].Name {
			return metas[i].Name < metas[j].Name
		}
		return metas[i].ID < metas[j].ID
	})

	metrics.Inc(metrics.ListTotal)
	return metas, nil
}

// Get returns the full entity, or ErrNotFound if no file exists for id.
// Settings records ("_"-prefixed ids) are readable through Get even
// though listings exclude them.
func (s *Store) Get(campaignID, moduleID, id string) (*models.Entity, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	dir, err := s.moduleDir(campaignID, moduleID, false)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, id+contentfile.Ext)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading entity file %s: %w", path, err)
	}

	fm, content, err := contentfile.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing entity file %s: %w", path, err)
	}

	var modified time.Time
	if info, err := os.Stat(path); err == nil {
		modified = info.ModTime().UTC()
	}

	return &models.Entity{
		ID:          id,
		Frontmatter: fm,
		Content:     content,
		Path:        path,
		Modified:    modified,
	}, nil
}

// Create persists a new entity. When the frontmatter carries no "id", one
// is generated from "name" as a slug plus a short random suffix,
// regenerating the suffix on collision. An explicit id that already
// exists is a validation error. The module directory is created when the
// campaign exists but the folder does not.
func (s *Store) Create(campaignID, moduleID string, input models.EntityInput) (*models.Entity, error) {
	dir, err := s.moduleDir(campaignID, moduleID, true)
	if err != nil {
		return nil, err
	}

	fm := input.Frontmatter.Clone()
	if fm == nil {
		fm = models.Frontmatter{}
	}
	name, _ := fm.String("name")

	id, hasID := fm.String("id")
	if hasID {
		if err := validateID(id); err != nil {
			return nil, err
		}
	} else if name == "" {
		return nil, NewValidationError("name is required to generate an entity id")
	}

	// The uniqueness check and the write are a single exclusive create
	// under the entity lock, so two creates with the same id cannot both
	// pass a pre-check and overwrite each other. A generated id that
	// loses the race gets a fresh suffix.
	var created *models.Entity
	for attempt := 0; ; attempt++ {
		if !hasID {
			if attempt == maxIDAttempts {
				return nil, fmt.Errorf("generating id for %q: exhausted %d attempts", name, maxIDAttempts)
			}
			id = Slugify(name) + "-" + shortSuffix()
		}
		fm["id"] = id
		path := filepath.Join(dir, id+contentfile.Ext)

		err = s.locks.Do(s.lockKey(campaignID, moduleID, id), func() error {
			data, err := contentfile.Encode(fm, input.Content)
			if err != nil {
				return err
			}
			if err := writeExclusive(path, data); err != nil {
				return err
			}
			created = &models.Entity{
				ID:          id,
				Frontmatter: fm,
				Content:     input.Content,
				Path:        path,
				Modified:    fileModTime(path),
			}
			return nil
		})
		if errors.Is(err, os.ErrExist) {
			if hasID {
				return nil, NewValidationError("entity %q already exists in module %q", id, moduleID)
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	metrics.Inc(metrics.CreateTotal)
	s.logger.Info("created entity", "campaign", campaignID, "module", moduleID, "id", id)
	return created, nil
}

// Update merges a partial update into the stored entity under lock and
// returns the updated entity. Frontmatter keys overwrite; nil values
// remove the key; the "id" field stays stable regardless of the update.
func (s *Store) Update(campaignID, moduleID, id string, upd models.EntityUpdate) (*models.Entity, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	dir, err := s.moduleDir(campaignID, moduleID, false)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, id+contentfile.Ext)
	key := s.lockKey(campaignID, moduleID, id)

	var updated *models.Entity
	err = s.locks.Do(key, func() error {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return ErrNotFound
			}
			return fmt.Errorf("reading entity file %s: %w", path, err)
		}
		fm, content, err := contentfile.Decode(data)
		if err != nil {
			return fmt.Errorf("parsing entity file %s: %w", path, err)
		}

		for k, v := range upd.Frontmatter {
			if v == nil {
				delete(fm, k)
				continue
			}
			fm[k] = v
		}
		fm["id"] = id
		if upd.Content != nil {
			content = *upd.Content
		}

		out, err := contentfile.Encode(fm, content)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return fmt.Errorf("writing entity file %s: %w", path, err)
		}

		updated = &models.Entity{
			ID:          id,
			Frontmatter: fm,
			Content:     content,
			Path:        path,
			Modified:    fileModTime(path),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Inc(metrics.UpdateTotal)
	s.logger.Info("updated entity", "campaign", campaignID, "module", moduleID, "id", id)
	return updated, nil
}

// Delete removes the entity file under lock. It reports whether a file
// was actually removed; deleting an absent entity is not an error.
func (s *Store) Delete(campaignID, moduleID, id string) (bool, error) {
	if err := validateID(id); err != nil {
		return false, err
	}
	dir, err := s.moduleDir(campaignID, moduleID, false)
	if err != nil {
		return false, err
	}

	path := filepath.Join(dir, id+contentfile.Ext)
	key := s.lockKey(campaignID, moduleID, id)

	removed := false
	err = s.locks.Do(key, func() error {
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("removing entity file %s: %w", path, err)
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if removed {
		metrics.Inc(metrics.DeleteTotal)
		s.logger.Info("deleted entity", "campaign", campaignID, "module", moduleID, "id", id)
	}
	return removed, nil
}

// --- helpers ---

// moduleDir resolves and validates the directory for (campaign, module).
// When create is true the module folder is created if the campaign
// exists; otherwise a missing folder is a validation error.
func (s *Store) moduleDir(campaignID, moduleID string, create bool) (string, error) {
	if campaignID == "" {
		return "", NewValidationError("campaign id is required")
	}
	mod, ok := s.modules.Get(moduleID)
	if !ok {
		return "", NewValidationError("unknown module %q", moduleID)
	}
	if !s.campaigns.Exists(campaignID) {
		return "", NewValidationError("campaign %q not found", campaignID)
	}

	dir := filepath.Join(s.campaigns.Dir(campaignID), mod.DataFolder)
	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return "", NewValidationError("module path %s is not a directory", dir)
		}
	case os.IsNotExist(err):
		if !create {
			return "", NewValidationError("module %q has no data folder in campaign %q", moduleID, campaignID)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating module dir %s: %w", dir, err)
		}
	default:
		return "", fmt.Errorf("checking module dir %s: %w", dir, err)
	}
	return dir, nil
}

func (s *Store) lockKey(campaignID, moduleID, id string) string {
	return campaignID + "/" + moduleID + "/" + id
}

// validateID rejects ids that do not map 1:1 to a file name inside the
// module directory. Path separators and dots would let an id escape the
// (campaign, module) scope, or alias one on-disk file under several
// lock keys.
func validateID(id string) error {
	if id == "" {
		return NewValidationError("entity id is required")
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return NewValidationError("invalid entity id %q: only letters, digits, '-' and '_' are allowed", id)
		}
	}
	return nil
}

// writeExclusive creates path with O_EXCL, returning os.ErrExist when a
// file is already there.
func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return os.ErrExist
		}
		return fmt.Errorf("writing entity file %s: %w", path, err)
	}
	_, werr := f.Write(data)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("writing entity file %s: %w", path, werr)
	}
	return nil
}

// Slugify lowercases name and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "entity"
	}
	return slug
}

// shortSuffix returns the first uuid segment, eight hex chars.
func shortSuffix() string {
	return uuid.New().String()[:8]
}

func fileModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Now().UTC()
	}
	return info.ModTime().UTC()
}
