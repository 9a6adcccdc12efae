package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/fakeyudi/labclock/internal/config"
)

// Load reads a catalog file (JSON, or YAML when the extension is .yaml/.yml)
// and validates it. An empty path returns the built-in protocol.
func Load(path string) (Catalog, error) {
	if path == "" {
		c := Default()
		return c, c.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Catalog{}, fmt.Errorf("catalog file not found: %s", path)
		}
		return Catalog{}, err
	}
	var c Catalog
	if err := config.Decode(path, data, &c); err != nil {
		return Catalog{}, err
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return c, nil
}
