package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cabforge/cab/pkg/util/files"
)

// ErrUnknownBuild means no build record exists under that name.
var ErrUnknownBuild = errors.New("unknown build")

// Build identifies one logical build target across invocations.
type Build struct {
	Name      string `json:"name"`
	Vendor    string `json:"vendor"`
	Release   string `json:"release"`
	Sources   string `json:"sources"`
	WithDebug bool   `json:"with_debug"`
	WithTests bool   `json:"with_tests"`
}

func buildPath(name string) string {
	return filepath.Join(buildsDir(), name+".json")
}

// BuildExists reports whether a build record exists.
func BuildExists(name string) (bool, error) {
	return files.Exists(buildPath(name))
}

// LoadBuild reads one build record, or ErrUnknownBuild.
func LoadBuild(name string) (*Build, error) {
	exists, err := BuildExists(name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBuild, name)
	}
	text, err := os.ReadFile(buildPath(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read build %s: %w", name, err)
	}
	b := &Build{}
	if err := json.Unmarshal(text, b); err != nil {
		return nil, fmt.Errorf("failed to parse build %s: %w", name, err)
	}
	return b, nil
}

// Save writes the build record.
func (b *Build) Save() error {
	text, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(buildsDir(), 0o755); err != nil {
		return err
	}
	return os.WriteFile(buildPath(b.Name), text, 0o600)
}

// RemoveBuild deletes the build record. Removing an absent build is
// not an error.
func RemoveBuild(name string) error {
	err := os.Remove(buildPath(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ListBuilds returns the registered build names.
func ListBuilds() ([]string, error) {
	entries, err := os.ReadDir(buildsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	return names, nil
}
