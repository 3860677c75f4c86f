package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"gopkg.in/yaml.v3"

	"ledgerline/statement-import/internal/logging"
)

const (
	profileExtension = ".yaml"

	cacheExpiration      = 15 * time.Minute
	cacheCleanupInterval = 30 * time.Minute
)

// Store loads and saves bank profiles as YAML documents, one per bank key,
// under a configurable directory. Loaded profiles are cached; the cache is
// invalidated on save.
type Store struct {
	dir    string
	cache  *cache.Cache
	logger logging.Logger
}

// NewStore creates a profile store rooted at dir.
func NewStore(dir string, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Store{
		dir:    dir,
		cache:  cache.New(cacheExpiration, cacheCleanupInterval),
		logger: logger,
	}
}

// LoadProfile returns the profile for a bank key, or nil when no profile
// exists. Absence is not an error: callers fall back to generic heuristics.
// Built-in profiles are consulted after the directory so an operator can
// override a shipped default by saving a file under the same key.
func (s *Store) LoadProfile(bankKey string) (*BankProfile, error) {
	key := normalizeKey(bankKey)
	if key == "" {
		return nil, nil
	}

	if cached, found := s.cache.Get(key); found {
		return cached.(*BankProfile), nil
	}

	data, err := os.ReadFile(s.profilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			if builtin, ok := builtinProfiles[key]; ok {
				s.cache.Set(key, builtin, cache.DefaultExpiration)
				return builtin, nil
			}
			s.logger.Debug("No profile for bank key",
				logging.Field{Key: "bank", Value: key})
			return nil, nil
		}
		return nil, fmt.Errorf("error reading profile %s: %w", key, err)
	}

	var p BankProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("error parsing profile %s: %w", key, err)
	}

	s.cache.Set(key, &p, cache.DefaultExpiration)
	s.logger.Debug("Loaded bank profile",
		logging.Field{Key: "bank", Value: key},
		logging.Field{Key: "name", Value: p.Name})
	return &p, nil
}

// SaveProfile validates and writes a profile document for the bank key.
func (s *Store) SaveProfile(bankKey string, p *BankProfile) error {
	key := normalizeKey(bankKey)
	if key == "" {
		return fmt.Errorf("bank key is required")
	}
	if valid, errs := Validate(p); !valid {
		return fmt.Errorf("profile %s is invalid: %s", key, strings.Join(errs, "; "))
	}

	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return fmt.Errorf("error creating profile directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("error marshaling profile %s: %w", key, err)
	}
	if err := os.WriteFile(s.profilePath(key), data, 0600); err != nil {
		return fmt.Errorf("error writing profile %s: %w", key, err)
	}

	s.cache.Delete(key)
	s.logger.Info("Saved bank profile",
		logging.Field{Key: "bank", Value: key})
	return nil
}

// ListProfiles returns the sorted bank keys with a profile available, both
// on-disk documents and shipped built-ins.
func (s *Store) ListProfiles() ([]string, error) {
	keys := make(map[string]bool)
	for key := range builtinProfiles {
		keys[key] = true
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error listing profiles: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), profileExtension) {
			continue
		}
		keys[strings.TrimSuffix(entry.Name(), profileExtension)] = true
	}

	var out []string
	for key := range keys {
		out = append(out, key)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) profilePath(key string) string {
	return filepath.Join(s.dir, key+profileExtension)
}

func normalizeKey(bankKey string) string {
	return strings.ToLower(strings.TrimSpace(bankKey))
}
