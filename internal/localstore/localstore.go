package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is a device-scoped key-value store persisted as JSON files, standing
// in for browser local storage. Values are namespaced by device id; a missing
// or corrupt value reads as absent, never as an error.
type Store struct {
	basePath string
}

func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create local state directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Get unmarshals the stored value for (deviceID, key) into v. It reports
// whether a usable value was found; parse failures are swallowed.
func (s *Store) Get(deviceID, key string, v interface{}) bool {
	path, err := s.safeJoin(deviceID, key)
	if err != nil {
		return false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false
	}
	return true
}

// Put serializes v under (deviceID, key). The write goes through a temp file
// and rename so readers never observe a partial value.
func (s *Store) Put(deviceID, key string, v interface{}) error {
	path, err := s.safeJoin(deviceID, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create device directory: %w", err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

// Delete removes the value for (deviceID, key). Deleting an absent value is
// not an error.
func (s *Store) Delete(deviceID, key string) error {
	path, err := s.safeJoin(deviceID, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// safeJoin resolves the value path and rejects directory traversal.
func (s *Store) safeJoin(deviceID, key string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.basePath, deviceID, key+".json"))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt")
	}
	return absPath, nil
}
