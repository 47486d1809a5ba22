// Package campaign supplies the active campaign context the content store
// consumes. Campaign lifecycle management (creation, switching) lives
// outside this module; only the narrow read surface is exposed here.
package campaign

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoActiveCampaign is returned by GetActive when no campaign is selected.
var ErrNoActiveCampaign = errors.New("no active campaign")

// Campaign identifies one campaign and its on-disk root.
type Campaign struct {
	ID   string `json:"id"`
	Root string `json:"root"`
}

// Manager resolves campaign directories under a common root.
type Manager struct {
	root   string
	active string
}

// NewManager creates a manager. root is the directory holding one
// subdirectory per campaign; active is the selected campaign id, empty
// when none is selected.
func NewManager(root, active string) *Manager {
	return &Manager{root: root, active: active}
}

// GetActive returns the active campaign, verifying its directory exists.
func (m *Manager) GetActive() (*Campaign, error) {
	if m.active == "" {
		return nil, ErrNoActiveCampaign
	}
	dir := m.Dir(m.active)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("campaign %q: %w", m.active, ErrNoActiveCampaign)
		}
		return nil, fmt.Errorf("checking campaign dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("campaign path %s is not a directory", dir)
	}
	return &Campaign{ID: m.active, Root: dir}, nil
}

// Dir returns the directory for the given campaign id.
func (m *Manager) Dir(campaignID string) string {
	return filepath.Join(m.root, campaignID)
}

// Exists reports whether the campaign directory is present.
func (m *Manager) Exists(campaignID string) bool {
	info, err := os.Stat(m.Dir(campaignID))
	return err == nil && info.IsDir()
}
