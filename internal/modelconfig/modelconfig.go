// Package modelconfig loads the static tables of the importance-weighted
// model: slot names, scaler mean/scale, feature importances, and the mapping
// from extracted features onto slots. Tables are loaded once at startup and
// any defect is fatal to the caller.
package modelconfig

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed data/default_model.json
var defaultModelJSON []byte

//go:embed data/schema.json
var schemaJSON []byte

const schemaURL = "schema://penrisk/model.json"

// Combine decides what happens when several features map onto one slot.
type Combine string

const (
	// CombineOverwrite keeps the value of the last rule in table order.
	CombineOverwrite Combine = "overwrite"
	CombineMax       Combine = "max"
	CombineMean      Combine = "mean"
)

// MappingRule routes one extracted feature into one model slot.
type MappingRule struct {
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	Combine Combine `json:"combine,omitempty"`
}

// Config holds the model tables. Slices are index-aligned with FeatureNames.
type Config struct {
	Version      string        `json:"version,omitempty"`
	FeatureNames []string      `json:"feature_names"`
	Mean         []float64     `json:"mean"`
	Scale        []float64     `json:"scale"`
	Importances  []float64     `json:"feature_importances"`
	Mapping      []MappingRule `json:"mapping"`
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var doc any
		if err := json.Unmarshal(schemaJSON, &doc); err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Default returns the embedded tables.
func Default() (Config, error) {
	return Parse(defaultModelJSON)
}

// Load reads tables from path, or returns the embedded tables when path is
// empty.
func Load(path string) (Config, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrRead, path, err)
	}
	return Parse(data)
}

// Parse validates raw JSON against the table schema, then checks that the
// tables line up.
func Parse(data []byte) (Config, error) {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Config{}, fmt.Errorf("%w: invalid JSON: %v", ErrMalformed, err)
	}
	sch, err := schema()
	if err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}
	if err := sch.Validate(parsed); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for i := range cfg.Mapping {
		if cfg.Mapping[i].Combine == "" {
			cfg.Mapping[i].Combine = CombineOverwrite
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the schema cannot express.
func (c Config) Validate() error {
	n := len(c.FeatureNames)
	if n == 0 {
		return fmt.Errorf("%w: no feature names", ErrMalformed)
	}
	if len(c.Mean) != n || len(c.Scale) != n || len(c.Importances) != n {
		return fmt.Errorf("%w: names=%d mean=%d scale=%d importances=%d",
			ErrLengthMismatch, n, len(c.Mean), len(c.Scale), len(c.Importances))
	}
	idx := c.Index()
	rules := make(map[string]Combine, len(c.Mapping))
	for _, r := range c.Mapping {
		if _, ok := idx[r.Target]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTarget, r.Target)
		}
		comb := r.Combine
		if comb == "" {
			comb = CombineOverwrite
		}
		if prev, ok := rules[r.Target]; ok && prev != comb {
			return fmt.Errorf("%w: %q uses %s and %s", ErrMixedCombine, r.Target, prev, comb)
		}
		rules[r.Target] = comb
	}
	return nil
}

// Index maps each slot name to its position.
func (c Config) Index() map[string]int {
	idx := make(map[string]int, len(c.FeatureNames))
	for i, name := range c.FeatureNames {
		idx[name] = i
	}
	return idx
}
