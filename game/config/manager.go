package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrPackNotFound = errors.New("route pack not found")
	ErrInvalidPack  = errors.New("invalid route pack")
)

// PackInfo summarizes an available route pack for listings.
type PackInfo struct {
	Filename         string `json:"filename"`
	PackID           string `json:"pack_id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	FixedRoutes      int    `json:"fixed_routes"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
	MaxHints         int    `json:"max_hints"`
}

// Manager handles route pack loading and caching.
type Manager struct {
	packDir     string
	defaultPack *RoutePack
	packs       map[string]*RoutePack
	mu          sync.RWMutex
}

// NewManager creates a pack manager over the given directory. The directory
// may be empty; the built-in default pack is always available.
func NewManager(packDir string) (*Manager, error) {
	if _, err := os.Stat(packDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("pack directory does not exist: %s", packDir)
	}

	return &Manager{
		packDir:     packDir,
		defaultPack: builtinDefault(),
		packs:       make(map[string]*RoutePack),
	}, nil
}

// builtinDefault is the pack used when a session names no pack.
func builtinDefault() *RoutePack {
	return &RoutePack{
		Name:             "Classic",
		Description:      "Random routes across the whole dataset",
		MinPar:           2,
		MaxPar:           6,
		TimeLimitSeconds: 300,
		MaxHints:         3,
	}
}

// GetDefault returns the default pack.
func (m *Manager) GetDefault() *RoutePack {
	return m.defaultPack
}

// LoadPack loads a pack by name, from cache when possible.
func (m *Manager) LoadPack(name string) (*RoutePack, error) {
	m.mu.RLock()
	if pack, exists := m.packs[name]; exists {
		m.mu.RUnlock()
		return pack, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if pack, exists := m.packs[name]; exists {
		return pack, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.packDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPackNotFound
		}
		return nil, fmt.Errorf("failed to read pack file: %w", err)
	}

	pack, err := ParsePack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}

	m.packs[name] = pack
	return pack, nil
}

// ListPacks returns information about every pack in the directory.
func (m *Manager) ListPacks() ([]*PackInfo, error) {
	entries, err := os.ReadDir(m.packDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read pack directory: %w", err)
	}

	var infos []*PackInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		pack, err := m.LoadPack(name)
		if err != nil {
			// Skip unreadable packs rather than failing the listing.
			continue
		}

		infos = append(infos, &PackInfo{
			Filename:         entry.Name(),
			PackID:           name,
			Name:             pack.Name,
			Description:      pack.Description,
			FixedRoutes:      len(pack.Routes),
			TimeLimitSeconds: pack.TimeLimitSeconds,
			MaxHints:         pack.MaxHints,
		})
	}

	return infos, nil
}

// SavePack validates and writes a pack to the directory, replacing any
// cached copy.
func (m *Manager) SavePack(name string, pack *RoutePack) error {
	if err := ValidatePack(pack); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := json.MarshalIndent(pack, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pack: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.packDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write pack file: %w", err)
	}

	m.mu.Lock()
	m.packs[strings.TrimSuffix(filename, ".json")] = pack
	m.mu.Unlock()

	return nil
}
