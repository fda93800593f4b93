package pricing

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadPrices reads a price table from a JSON file and merges it over the
// built-in defaults, so an override file only needs the rates that
// drifted:
//
//	{"instances": {"t3.large": 0.0901}, "natGatewayHourly": 0.048}
func LoadPrices(path string) (*Prices, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading price table %s: %w", path, err)
	}

	// Unmarshal over the defaults: absent keys keep their built-in
	// values, map entries merge.
	prices := DefaultPrices()
	if err := json.Unmarshal(data, prices); err != nil {
		return nil, fmt.Errorf("parsing price table %s: %w", path, err)
	}
	return prices, nil
}

// LoadOrDefault returns the built-in price table when path is empty,
// otherwise the override file merged over it.
func LoadOrDefault(path string) (*Prices, error) {
	if path == "" {
		return DefaultPrices(), nil
	}
	return LoadPrices(path)
}
