package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"paghetta/internal/core"
)

// priceFile is the YAML layout of PRICE_TABLE_FILE:
//
//	tasks:
//	  - task: Dishes
//	    amount: 50
type priceFile struct {
	Tasks []core.PriceItem `yaml:"tasks"`
}

// LoadPriceTable reads the price table at path. An empty path yields the
// built-in table.
func LoadPriceTable(path string) (core.PriceTable, error) {
	if path == "" {
		return core.DefaultPriceTable(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return core.PriceTable{}, fmt.Errorf("read price table: %w", err)
	}
	pt, err := ParsePriceTable(b)
	if err != nil {
		return core.PriceTable{}, fmt.Errorf("price table %s: %w", path, err)
	}
	return pt, nil
}

// ParsePriceTable decodes a YAML price table. Unknown keys are rejected.
func ParsePriceTable(b []byte) (core.PriceTable, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var pf priceFile
	if err := dec.Decode(&pf); err != nil && !errors.Is(err, io.EOF) {
		return core.PriceTable{}, fmt.Errorf("decode yaml: %w", err)
	}
	return core.NewPriceTable(pf.Tasks)
}
