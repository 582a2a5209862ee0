// Package catalogfile loads achievement definitions from JSON files, for
// the import and lint tools. The file format is a plain array of
// definitions in the same shape the admin API accepts.
package catalogfile

import (
	"encoding/json"
	"fmt"
	"os"

	"vidverse/models"
)

// Load reads and decodes a catalog file. Decoding errors are fatal;
// semantic validation is a separate step so the linter can report every
// bad entry instead of stopping at the first.
func Load(path string) ([]models.Achievement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var defs []models.Achievement
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return defs, nil
}

// Check validates every definition and reports duplicates by name.
// Returns one error per bad entry.
func Check(defs []models.Achievement) []error {
	var errs []error
	seen := make(map[string]int, len(defs))

	for i := range defs {
		if err := defs[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		if prev, dup := seen[defs[i].Name]; dup {
			errs = append(errs, fmt.Errorf("entry %d: duplicate name %q (first at entry %d)", i, defs[i].Name, prev))
			continue
		}
		seen[defs[i].Name] = i
	}
	return errs
}
