package tags

import "testing"

func TestNewBuilder(t *testing.T) {
	got := NewBuilder("prod").Build()

	if got[KeyCluster] != "prod" {
		t.Errorf("Expected cluster tag %q, got %q", "prod", got[KeyCluster])
	}
	if got[KeyManagedBy] != ManagedBy {
		t.Errorf("Expected managed-by tag %q, got %q", ManagedBy, got[KeyManagedBy])
	}
}

func TestBuilder_Chaining(t *testing.T) {
	got := NewBuilder("prod").
		WithName("prod-vpc").
		WithRole(RoleNetwork).
		WithNodeGroup("workers").
		Merge(map[string]string{"team": "platform"}).
		Build()

	expected := map[string]string{
		KeyCluster:   "prod",
		KeyManagedBy: ManagedBy,
		KeyName:      "prod-vpc",
		KeyRole:      RoleNetwork,
		KeyNodeGroup: "workers",
		"team":       "platform",
	}

	if len(got) != len(expected) {
		t.Fatalf("Expected %d tags, got %d: %v", len(expected), len(got), got)
	}
	for k, v := range expected {
		if got[k] != v {
			t.Errorf("Tag %q: expected %q, got %q", k, v, got[k])
		}
	}
}

func TestBuilder_BuildReturnsCopy(t *testing.T) {
	b := NewBuilder("prod")
	first := b.Build()
	first["mutated"] = "true"

	second := b.Build()
	if _, ok := second["mutated"]; ok {
		t.Error("Build() should return a copy, not the internal map")
	}
}

func TestSharedCluster(t *testing.T) {
	got := SharedCluster("prod")
	if got != "kubernetes.io/cluster/prod" {
		t.Errorf("Expected kubernetes.io/cluster/prod, got %q", got)
	}
}

func TestForCluster(t *testing.T) {
	key, value := ForCluster("prod")
	if key != KeyCluster || value != "prod" {
		t.Errorf("Expected (%q, %q), got (%q, %q)", KeyCluster, "prod", key, value)
	}
}
