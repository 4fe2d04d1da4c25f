package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CostRange bounds a tier's primary-currency cost.
type CostRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// TierDefinition is one tier entry in a definitions file.
type TierDefinition struct {
	Weight        float64   `yaml:"weight"`
	PrimaryCost   CostRange `yaml:"primary_cost"`
	SecondaryCost *int      `yaml:"secondary_cost"`
	Prizes        []string  `yaml:"prizes"`
}

// EconomyDefinition carries economy-wide settings.
type EconomyDefinition struct {
	// SecondaryCost is the fallback secondary-currency cost for tiers
	// without their own override.
	SecondaryCost int `yaml:"secondary_cost"`
}

// Definitions is the root of a tier definitions document.
//
// Tier keys are tier names in any case; unknown names are skipped on
// reload rather than failing the whole document.
type Definitions struct {
	Tiers   map[string]TierDefinition `yaml:"tiers"`
	Economy EconomyDefinition         `yaml:"economy"`
}

// Parse decodes a YAML tier definitions document.
func Parse(data []byte) (Definitions, error) {
	var defs Definitions
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return Definitions{}, fmt.Errorf("parse tier definitions: %w", err)
	}
	return defs, nil
}

// LoadFile parses the definitions file at path and reloads the catalog
// from it. The active catalog is untouched when reading or parsing fails.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tier definitions: %w", err)
	}
	defs, err := Parse(data)
	if err != nil {
		return err
	}
	c.Reload(defs)
	return nil
}
