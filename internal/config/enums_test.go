package config

import "testing"

func TestRegion_IsValid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		region Region
		want   bool
	}{
		{"valid us-east-1", RegionUSEast1, true},
		{"valid eu-central-1", RegionEUCentral1, true},
		{"valid ap-south-1", RegionAPSouth1, true},
		{"invalid empty", Region(""), false},
		{"invalid random", Region("mars-north-1"), false},
		{"invalid typo", Region("us-east"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.region.IsValid(); got != tt.want {
				t.Errorf("Region.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegion_String(t *testing.T) {
	t.Parallel()
	tests := []struct {
		region Region
		want   string
	}{
		{RegionUSEast1, "us-east-1 (N. Virginia)"},
		{RegionEUCentral1, "eu-central-1 (Frankfurt)"},
		{Region("unknown"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(string(tt.region), func(t *testing.T) {
			t.Parallel()
			if got := tt.region.String(); got != tt.want {
				t.Errorf("Region.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNATStrategy_IsValid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		strategy NATStrategy
		want     bool
	}{
		{"single", NATSingle, true},
		{"per-az", NATPerAZ, true},
		{"none", NATNone, true},
		{"empty", NATStrategy(""), false},
		{"garbage", NATStrategy("dual"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.strategy.IsValid(); got != tt.want {
				t.Errorf("NATStrategy.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCapacityType_IsValid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		capacity CapacityType
		want     bool
	}{
		{"on-demand", CapacityOnDemand, true},
		{"spot", CapacitySpot, true},
		{"empty", CapacityType(""), false},
		{"uppercase", CapacityType("SPOT"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.capacity.IsValid(); got != tt.want {
				t.Errorf("CapacityType.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaintEffect_IsValid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		effect TaintEffect
		want   bool
	}{
		{"NoSchedule", TaintNoSchedule, true},
		{"PreferNoSchedule", TaintPreferNoSchedule, true},
		{"NoExecute", TaintNoExecute, true},
		{"lowercase", TaintEffect("noschedule"), false},
		{"empty", TaintEffect(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.effect.IsValid(); got != tt.want {
				t.Errorf("TaintEffect.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogType_IsValid(t *testing.T) {
	t.Parallel()
	for _, lt := range ValidLogTypes() {
		if !lt.IsValid() {
			t.Errorf("expected %q to be valid", lt)
		}
	}
	if LogType("syslog").IsValid() {
		t.Error("expected syslog to be invalid")
	}
}

func TestSupportedVersions(t *testing.T) {
	t.Parallel()
	versions := SupportedVersions()
	if len(versions) == 0 {
		t.Fatal("expected at least one supported version")
	}

	if !IsSupportedVersion(versions[0]) {
		t.Errorf("expected %q to be supported", versions[0])
	}
	if IsSupportedVersion("1.12") {
		t.Error("expected 1.12 to be unsupported")
	}
	if DefaultVersion() != versions[len(versions)-1] {
		t.Errorf("DefaultVersion() = %q, want newest %q", DefaultVersion(), versions[len(versions)-1])
	}
}

func TestNextVersion(t *testing.T) {
	t.Parallel()

	next, err := NextVersion("1.30")
	if err != nil {
		t.Fatalf("NextVersion(1.30) failed: %v", err)
	}
	if next != "1.31" {
		t.Errorf("NextVersion(1.30) = %q, want 1.31", next)
	}

	versions := SupportedVersions()
	newest := versions[len(versions)-1]
	if _, err := NextVersion(newest); err == nil {
		t.Errorf("NextVersion(%s) should fail for the newest version", newest)
	}

	if _, err := NextVersion("0.9"); err == nil {
		t.Error("NextVersion(0.9) should fail for unknown versions")
	}
}
