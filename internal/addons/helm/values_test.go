package helm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibraheemcisse/ekstack/internal/config"
)

func TestMerge_LaterTakesPrecedence(t *testing.T) {
	base := Values{
		"replicaCount": 1,
		"image":        "v1",
	}
	override := Values{
		"replicaCount": 3,
	}

	merged := Merge(base, override)

	assert.Equal(t, 3, merged["replicaCount"])
	assert.Equal(t, "v1", merged["image"])
}

func TestMerge_DeepMergesNestedMaps(t *testing.T) {
	base := Values{
		"serviceAccount": Values{
			"create": true,
			"name":   "controller",
		},
	}
	override := Values{
		"serviceAccount": Values{
			"annotations": Values{
				"eks.amazonaws.com/role-arn": "arn:aws:iam::123456789012:role/demo",
			},
		},
	}

	merged := Merge(base, override)

	sa, ok := merged["serviceAccount"].(Values)
	require.True(t, ok)
	assert.Equal(t, true, sa["create"])
	assert.Equal(t, "controller", sa["name"])

	annotations, ok := sa["annotations"].(Values)
	require.True(t, ok)
	assert.Equal(t, "arn:aws:iam::123456789012:role/demo", annotations["eks.amazonaws.com/role-arn"])
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	base := Values{
		"nested": Values{"a": 1},
	}
	override := Values{
		"nested": Values{"b": 2},
	}

	_ = Merge(base, override)

	baseNested := base["nested"].(Values)
	_, leaked := baseNested["b"]
	assert.False(t, leaked, "merge must not write into its inputs")
}

func TestValues_ToMap_UnwrapsNestedValues(t *testing.T) {
	values := Values{
		"top": "level",
		"nested": Values{
			"deep": Values{
				"key": "value",
			},
		},
	}

	plain := values.ToMap()

	// Helm type-asserts on map[string]any, so the named type must be
	// gone at every level.
	nested, ok := plain["nested"].(map[string]any)
	require.True(t, ok)
	deep, ok := nested["deep"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "value", deep["key"])
}

func TestValues_ToMap_ConvertsSliceElements(t *testing.T) {
	values := Values{
		"list": []Values{
			{"name": "first"},
			{"name": "second"},
		},
		"mixed": []any{Values{"k": "v"}, "plain"},
	}

	plain := values.ToMap()

	list, ok := plain["list"].([]any)
	require.True(t, ok)
	require.Len(t, list, 2)
	first, ok := list[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "first", first["name"])

	mixed, ok := plain["mixed"].([]any)
	require.True(t, ok)
	_, ok = mixed[0].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "plain", mixed[1])
}

func TestValues_ToYAML(t *testing.T) {
	values := Values{
		"controller": Values{
			"replicaCount": 2,
		},
	}

	data, err := values.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "controller:")
	assert.Contains(t, string(data), "replicaCount: 2")
}

func TestFromYAML_RoundTrip(t *testing.T) {
	data := []byte(`
server:
  replicas: 3
  extraArgs:
    - --insecure
`)

	values, err := FromYAML(data)
	require.NoError(t, err)

	server, ok := values["server"].(map[string]any)
	require.True(t, ok)
	// Decoding goes through JSON, so numbers are float64.
	assert.Equal(t, float64(3), server["replicas"])
}

func TestFromYAML_Invalid(t *testing.T) {
	_, err := FromYAML([]byte(`{unclosed: [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML values")
}

func TestLoadValuesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte("controller:\n  replicaCount: 2\n"), 0o644))

	values, err := LoadValuesFile(path)
	require.NoError(t, err)

	controller, ok := values["controller"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), controller["replicaCount"])
}

func TestLoadValuesFile_Missing(t *testing.T) {
	_, err := LoadValuesFile(filepath.Join(t.TempDir(), "no-such.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read values file")
}

func TestApplyOverrides_NoFile(t *testing.T) {
	values := Values{"replicas": 2}

	got, err := ApplyOverrides(values, config.ChartOverride{})
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestApplyOverrides_MergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte("replicas: 5\nserviceAccount:\n  annotations:\n    team: platform\n"), 0o644))

	base := Values{
		"replicas": 2,
		"serviceAccount": Values{
			"create": true,
		},
	}

	got, err := ApplyOverrides(base, config.ChartOverride{ValuesFile: path})
	require.NoError(t, err)

	// The file wins on conflicts and deep-merges into nested maps.
	assert.Equal(t, float64(5), got["replicas"])
	sa, ok := got["serviceAccount"].(Values)
	require.True(t, ok)
	assert.Equal(t, true, sa["create"])
	annotations, ok := sa["annotations"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "platform", annotations["team"])
}
