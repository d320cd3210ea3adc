// Package repository holds the small persistence adapters of the service.
package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"holdings_checker/internal/app/port"
)

// fileRecentStore implements port.RecentAddressStore on top of a JSON file
// holding a plain array of address strings, most recent first. The file is
// rewritten on every Record; a missing or corrupt file just starts the list
// empty.
type fileRecentStore struct {
	path   string
	max    int
	logger *zap.Logger

	mu        sync.Mutex
	addresses []string
}

// NewFileRecentStore creates a store persisted at path, keeping at most max
// entries.
func NewFileRecentStore(path string, max int, logger *zap.Logger) port.RecentAddressStore {
	if max <= 0 {
		max = 5
	}
	s := &fileRecentStore{
		path:   path,
		max:    max,
		logger: logger.Named("RecentStore"),
	}
	s.load()
	return s
}

func (s *fileRecentStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read recent-address file, starting empty",
				zap.String("path", s.path), zap.Error(err))
		}
		return
	}

	var addresses []string
	if err := json.Unmarshal(data, &addresses); err != nil {
		s.logger.Warn("Recent-address file is not a JSON string array, starting empty",
			zap.String("path", s.path), zap.Error(err))
		return
	}
	if len(addresses) > s.max {
		addresses = addresses[:s.max]
	}
	s.addresses = addresses
}

// Record implements port.RecentAddressStore.
func (s *fileRecentStore) Record(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, s.max)
	next = append(next, address)
	for _, existing := range s.addresses {
		if existing == address { // dedupe is case-sensitive
			continue
		}
		next = append(next, existing)
		if len(next) == s.max {
			break
		}
	}
	s.addresses = next

	return s.persist()
}

// List implements port.RecentAddressStore.
func (s *fileRecentStore) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.addresses))
	copy(out, s.addresses)
	return out
}

func (s *fileRecentStore) persist() error {
	data, err := json.Marshal(s.addresses)
	if err != nil {
		return fmt.Errorf("failed to marshal recent addresses: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create recent-address dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write recent-address file %s: %w", s.path, err)
	}
	return nil
}
