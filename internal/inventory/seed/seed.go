package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/fekuna/omnipos-cart-service/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Products []model.Product `yaml:"products"`
}

// Load reads the catalog seed at path, or the embedded default when path is empty.
func Load(path string) ([]model.Product, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog seed %s: %w", path, err)
		}
		data = b
	}
	return Parse(data)
}

func Parse(data []byte) ([]model.Product, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog seed: %w", err)
	}
	if len(file.Products) == 0 {
		return nil, errors.New("catalog seed has no products")
	}

	seen := make(map[string]struct{}, len(file.Products))
	for i, p := range file.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("product #%d: id is required", i+1)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("product %s: duplicate id", p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.OriginalPrice <= 0 {
			return nil, fmt.Errorf("product %s: price must be positive", p.ID)
		}
		if p.Stock < 0 {
			return nil, fmt.Errorf("product %s: stock cannot be negative", p.ID)
		}
		file.Products[i].CurrentPrice = p.OriginalPrice
	}
	return file.Products, nil
}
