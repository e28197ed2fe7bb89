package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const guidanceCacheFileName = "guidance.json"

// GuidanceCache persists the last guidance result so repeated calls
// within a day reuse it. Validity is checked with GuidanceResult.Valid,
// never assumed.
type GuidanceCache struct {
	path string
}

// NewGuidanceCache creates a cache rooted at the given directory.
func NewGuidanceCache(dir string) *GuidanceCache {
	return &GuidanceCache{path: filepath.Join(dir, guidanceCacheFileName)}
}

// Load returns the cached result, or nil when absent or unreadable.
func (c *GuidanceCache) Load() *GuidanceResult {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil
	}
	var result GuidanceResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

// Clear removes the cached result. A missing file is fine.
func (c *GuidanceCache) Clear() error {
	err := os.Remove(c.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Save atomically replaces the cached result.
func (c *GuidanceCache) Save(result *GuidanceResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal guidance: %w", err)
	}
	tmpPath := fmt.Sprintf("%s.tmp.%d", c.path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write guidance cache: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace guidance cache: %w", err)
	}
	return nil
}
