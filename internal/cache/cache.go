// Package cache stores computed verdicts keyed by their inputs. The cache
// is strictly advisory: a miss is identical to "not yet computed", and a
// fresh verdict may always overwrite a stale entry. Correctness only
// depends on evaluation being cheap and idempotent.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/veriguard/veriguard/internal/models"
)

// Cache collaborator interface. Implementations are passed by reference;
// there are no process-wide singletons.
type Cache interface {
	Get(key string) (*models.Verdict, bool)
	Set(key string, v *models.Verdict) error
}

// Key derives the cache key from the evaluation inputs. Identical
// (configuration, findings) pairs hash identically because the verdict is
// a pure function of them.
func Key(cfg *models.CheckConfig, findings []models.Finding) string {
	h := sha256.New()

	enc := json.NewEncoder(h)
	// Marshal errors are impossible for these types; ignore like a miss.
	_ = enc.Encode(cfg)
	_ = enc.Encode(findings)

	return hex.EncodeToString(h.Sum(nil))
}

// Memory is an in-process cache for repeated evaluations in one run.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*models.Verdict
}

// NewMemory constructor
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*models.Verdict)}
}

func (m *Memory) Get(key string) (*models.Verdict, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *Memory) Set(key string, v *models.Verdict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = v
	return nil
}

// Dir persists one JSON file per key under a directory, surviving across
// CLI invocations. Read failures of any kind degrade to a miss.
type Dir struct {
	root string
}

// NewDir constructor; the directory is created lazily on first Set.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

func (d *Dir) path(key string) string {
	return filepath.Join(d.root, key+".json")
}

func (d *Dir) Get(key string) (*models.Verdict, bool) {
	data, err := os.ReadFile(d.path(key))
	if err != nil {
		return nil, false
	}

	var v models.Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		// Corrupt entry: treat as not yet computed.
		return nil, false
	}
	return &v, true
}

func (d *Dir) Set(key string, v *models.Verdict) error {
	if err := os.MkdirAll(d.root, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal verdict: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(d.path(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}
