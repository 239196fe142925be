package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/oci-infra/oci-acceptor/types"
)

// DefaultPattern selects every active case.
const DefaultPattern = "."

// Catalog manages the ordered conformance case list and its exclusion set.
// The catalog is fixed at load time; it is only ever filtered, never mutated.
type Catalog struct {
	config Config
	cases  []types.Case
	mu     sync.RWMutex
}

// Config contains catalog configuration
type Config struct {
	Log *slog.Logger
	// CatalogFile optionally overrides the built-in catalog with a YAML file.
	CatalogFile string
}

// NewCatalog creates a catalog from the built-in case list, or from the
// configured YAML file when one is given.
func NewCatalog(cfg Config) (*Catalog, error) {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	c := &Catalog{config: cfg}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	cfg.Log.Debug("Catalog loaded", "source", c.Source(), "cases", len(c.cases))

	return c, nil
}

// Source names where the catalog entries came from.
func (c *Catalog) Source() string {
	if c.config.CatalogFile != "" {
		return c.config.CatalogFile
	}
	return "builtin"
}

func (c *Catalog) load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cases := Default()
	if c.config.CatalogFile != "" {
		loaded, err := loadFile(c.config.CatalogFile)
		if err != nil {
			return err
		}
		cases = loaded
	}

	if err := validate(cases); err != nil {
		return err
	}

	c.cases = cases
	return nil
}

// Cases returns every catalog entry in execution order, excluded entries
// included.
func (c *Catalog) Cases() []types.Case {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cases
}

// Excluded returns the permanently excluded entries with their rationales.
func (c *Catalog) Excluded() []types.Case {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var excluded []types.Case
	for _, cs := range c.cases {
		if cs.Status.Excluded() {
			excluded = append(excluded, cs)
		}
	}
	return excluded
}

// Select returns the active cases whose ID matches pattern, preserving
// catalog order. The pattern is an unanchored regular expression, so plain
// substrings select too; DefaultPattern matches every active case. Excluded
// cases are never selected regardless of pattern.
func (c *Catalog) Select(pattern string) ([]types.Case, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid selection pattern %q: %w", pattern, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var selected []types.Case
	for _, cs := range c.cases {
		if cs.Status.Excluded() {
			continue
		}
		if re.MatchString(cs.ID) {
			selected = append(selected, cs)
		}
	}
	return selected, nil
}

// fileSchema is the YAML shape of a catalog override file.
type fileSchema struct {
	Cases []types.Case `yaml:"cases"`
}

// loadFile loads a catalog from a YAML file. Entries without an explicit
// status default to active.
func loadFile(path string) ([]types.Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading catalog file")
	}

	var f fileSchema
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parsing catalog file")
	}
	if len(f.Cases) == 0 {
		return nil, fmt.Errorf("catalog file %s defines no cases", path)
	}

	for i := range f.Cases {
		if f.Cases[i].Status == "" {
			f.Cases[i].Status = types.CaseStatusActive
		}
	}
	return f.Cases, nil
}

func validate(cases []types.Case) error {
	seen := make(map[string]bool, len(cases))
	for _, cs := range cases {
		if err := cs.Validate(); err != nil {
			return err
		}
		if seen[cs.ID] {
			return fmt.Errorf("duplicate case ID %s", cs.ID)
		}
		seen[cs.ID] = true
	}
	return nil
}
