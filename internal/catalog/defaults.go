package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var defaultProducts = mustParseDefaults(defaultsYAML)

type seedFile struct {
	Products []Product `yaml:"products"`
}

// ParseSeed decodes a YAML product list in the defaults.yaml layout.
func ParseSeed(data []byte) ([]Product, error) {
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("catalog: parse seed: %w", err)
	}
	for i := range seed.Products {
		seed.Products[i].Addons = normalizeAddons(seed.Products[i].Addons)
	}
	return seed.Products, nil
}

func mustParseDefaults(data []byte) []Product {
	products, err := ParseSeed(data)
	if err != nil {
		panic(err)
	}
	return products
}

// DefaultProducts returns a fresh copy of the built-in demo catalog.
func DefaultProducts() []Product {
	return cloneProducts(defaultProducts)
}
