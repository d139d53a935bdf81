// Package output writes the run's artifacts: the JSON snapshot of the result
// set and the rendered map document.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattsblocklist/advisorymap/internal/advisory"
	"github.com/mattsblocklist/advisorymap/internal/render"
)

// WriteSnapshot writes rs as an indented JSON object keyed by ISO code.
func WriteSnapshot(path string, rs *advisory.ResultSet) error {
	jsonContent, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return writeFile(path, jsonContent)
}

// ReadSnapshot reads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (*advisory.ResultSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	rs := advisory.NewResultSet()
	if err := json.Unmarshal(data, rs); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	return rs, nil
}

// WriteMap renders rs and writes the map document to path.
func WriteMap(path string, rs *advisory.ResultSet) error {
	doc, err := render.Map(rs)
	if err != nil {
		return err
	}

	return writeFile(path, []byte(doc))
}

// WriteAll writes both the snapshot and the map. A failure of one does not
// stop the other; all failures are returned together.
func WriteAll(snapshotPath, mapPath string, rs *advisory.ResultSet) error {
	return errors.Join(
		WriteSnapshot(snapshotPath, rs),
		WriteMap(mapPath, rs),
	)
}

func writeFile(path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory for %s: %w", path, err)
		}
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
