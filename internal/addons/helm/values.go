package helm

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/ibraheemcisse/ekstack/internal/config"
)

// Values represents helm chart values as a map.
type Values map[string]any

// Merge combines multiple Values maps with later maps taking precedence.
// Nested maps are merged recursively; any other value is replaced.
func Merge(valueMaps ...Values) Values {
	result := make(Values)
	for _, m := range valueMaps {
		deepMerge(result, m)
	}
	return result
}

// deepMerge recursively merges src into dst.
// For maps, it merges recursively. For other types, src overwrites dst.
func deepMerge(dst, src Values) {
	for key, srcVal := range src {
		if dstVal, exists := dst[key]; exists {
			srcMap, srcIsMap := asValues(srcVal)
			dstMap, dstIsMap := asValues(dstVal)
			if srcIsMap && dstIsMap {
				merged := make(Values, len(dstMap))
				deepMerge(merged, dstMap)
				deepMerge(merged, srcMap)
				dst[key] = merged
				continue
			}
		}
		dst[key] = srcVal
	}
}

func asValues(v any) (Values, bool) {
	switch m := v.(type) {
	case Values:
		return m, true
	case map[string]any:
		return Values(m), true
	default:
		return nil, false
	}
}

// ToMap converts values to a plain map[string]any recursively. Helm's
// coalescing type-asserts on map[string]any, so nested Values must be
// unwrapped before they reach the SDK.
func (v Values) ToMap() map[string]any {
	result := make(map[string]any, len(v))
	for key, val := range v {
		result[key] = toPlainValue(val)
	}
	return result
}

func toPlainValue(v any) any {
	switch val := v.(type) {
	case Values:
		return val.ToMap()
	case map[string]any:
		return Values(val).ToMap()
	case []Values:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item.ToMap()
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toPlainValue(item)
		}
		return out
	default:
		return v
	}
}

// ToYAML converts values to YAML bytes.
func (v Values) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(v.ToMap()); err != nil {
		return nil, fmt.Errorf("failed to encode values to YAML: %w", err)
	}

	return buf.Bytes(), nil
}

// FromYAML parses YAML bytes into Values. Decoding goes through JSON,
// like Helm's own values loading, so nested maps come out as
// map[string]any and numbers as float64.
func FromYAML(data []byte) (Values, error) {
	var values Values
	if err := sigsyaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse YAML values: %w", err)
	}
	return values, nil
}

// LoadValuesFile reads a YAML values file from disk.
func LoadValuesFile(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file: %w", err)
	}
	return FromYAML(data)
}

// ApplyOverrides merges the override's values file over the computed
// values when one is named.
func ApplyOverrides(values Values, override config.ChartOverride) (Values, error) {
	if override.ValuesFile == "" {
		return values, nil
	}
	overrides, err := LoadValuesFile(override.ValuesFile)
	if err != nil {
		return nil, err
	}
	return Merge(values, overrides), nil
}
