package config

import "fmt"

// Region is an AWS region.
type Region string

const (
	// RegionUSEast1 is N. Virginia.
	RegionUSEast1 Region = "us-east-1"
	// RegionUSEast2 is Ohio.
	RegionUSEast2 Region = "us-east-2"
	// RegionUSWest2 is Oregon.
	RegionUSWest2 Region = "us-west-2"
	// RegionEUWest1 is Ireland.
	RegionEUWest1 Region = "eu-west-1"
	// RegionEUCentral1 is Frankfurt.
	RegionEUCentral1 Region = "eu-central-1"
	// RegionEUNorth1 is Stockholm.
	RegionEUNorth1 Region = "eu-north-1"
	// RegionAPSoutheast1 is Singapore.
	RegionAPSoutheast1 Region = "ap-southeast-1"
	// RegionAPSouth1 is Mumbai.
	RegionAPSouth1 Region = "ap-south-1"
)

// ValidRegions returns all supported regions.
func ValidRegions() []Region {
	return []Region{
		RegionUSEast1, RegionUSEast2, RegionUSWest2,
		RegionEUWest1, RegionEUCentral1, RegionEUNorth1,
		RegionAPSoutheast1, RegionAPSouth1,
	}
}

// IsValid returns true if the region is supported.
func (r Region) IsValid() bool {
	for _, valid := range ValidRegions() {
		if r == valid {
			return true
		}
	}
	return false
}

// String returns a human-readable description of the region.
func (r Region) String() string {
	switch r {
	case RegionUSEast1:
		return "us-east-1 (N. Virginia)"
	case RegionUSEast2:
		return "us-east-2 (Ohio)"
	case RegionUSWest2:
		return "us-west-2 (Oregon)"
	case RegionEUWest1:
		return "eu-west-1 (Ireland)"
	case RegionEUCentral1:
		return "eu-central-1 (Frankfurt)"
	case RegionEUNorth1:
		return "eu-north-1 (Stockholm)"
	case RegionAPSoutheast1:
		return "ap-southeast-1 (Singapore)"
	case RegionAPSouth1:
		return "ap-south-1 (Mumbai)"
	default:
		return string(r)
	}
}

// NATStrategy selects how private subnets reach the internet.
type NATStrategy string

const (
	// NATSingle shares one NAT gateway across all private subnets.
	// Cheapest option, single point of failure for egress.
	NATSingle NATStrategy = "single"

	// NATPerAZ runs one NAT gateway per availability zone.
	// Survives AZ outage, roughly triples the NAT cost.
	NATPerAZ NATStrategy = "per-az"

	// NATNone creates no NAT gateways. Private subnets have no internet
	// egress; image pulls must come from the in-region registry.
	NATNone NATStrategy = "none"
)

// ValidNATStrategies returns all valid NAT strategies.
func ValidNATStrategies() []NATStrategy {
	return []NATStrategy{NATSingle, NATPerAZ, NATNone}
}

// IsValid returns true if the NAT strategy is valid.
func (n NATStrategy) IsValid() bool {
	switch n {
	case NATSingle, NATPerAZ, NATNone:
		return true
	default:
		return false
	}
}

// String returns a human-readable description of the NAT strategy.
func (n NATStrategy) String() string {
	switch n {
	case NATSingle:
		return "single (one shared NAT gateway)"
	case NATPerAZ:
		return "per-az (one NAT gateway per availability zone)"
	case NATNone:
		return "none (no internet egress from private subnets)"
	default:
		return string(n)
	}
}

// CapacityType selects the EC2 purchase option for a node group.
type CapacityType string

const (
	// CapacityOnDemand provisions regular on-demand instances.
	CapacityOnDemand CapacityType = "on-demand"

	// CapacitySpot provisions spot instances. Cheaper, may be reclaimed.
	CapacitySpot CapacityType = "spot"
)

// ValidCapacityTypes returns all valid capacity types.
func ValidCapacityTypes() []CapacityType {
	return []CapacityType{CapacityOnDemand, CapacitySpot}
}

// IsValid returns true if the capacity type is valid.
func (c CapacityType) IsValid() bool {
	switch c {
	case CapacityOnDemand, CapacitySpot:
		return true
	default:
		return false
	}
}

// TaintEffect is a Kubernetes taint effect.
type TaintEffect string

const (
	TaintNoSchedule       TaintEffect = "NoSchedule"
	TaintPreferNoSchedule TaintEffect = "PreferNoSchedule"
	TaintNoExecute        TaintEffect = "NoExecute"
)

// IsValid returns true if the taint effect is valid.
func (t TaintEffect) IsValid() bool {
	switch t {
	case TaintNoSchedule, TaintPreferNoSchedule, TaintNoExecute:
		return true
	default:
		return false
	}
}

// LogType is an EKS control plane log type.
type LogType string

const (
	LogAPI               LogType = "api"
	LogAudit             LogType = "audit"
	LogAuthenticator     LogType = "authenticator"
	LogControllerManager LogType = "controllerManager"
	LogScheduler         LogType = "scheduler"
)

// ValidLogTypes returns all valid control plane log types.
func ValidLogTypes() []LogType {
	return []LogType{LogAPI, LogAudit, LogAuthenticator, LogControllerManager, LogScheduler}
}

// IsValid returns true if the log type is valid.
func (l LogType) IsValid() bool {
	for _, valid := range ValidLogTypes() {
		if l == valid {
			return true
		}
	}
	return false
}

// SupportedVersions returns the Kubernetes minor versions the tool can
// provision, oldest first.
func SupportedVersions() []string {
	return []string{"1.29", "1.30", "1.31", "1.32", "1.33"}
}

// DefaultVersion returns the Kubernetes version used when none is configured.
func DefaultVersion() string {
	versions := SupportedVersions()
	return versions[len(versions)-1]
}

// IsSupportedVersion returns true if the given Kubernetes version can be
// provisioned.
func IsSupportedVersion(v string) bool {
	for _, supported := range SupportedVersions() {
		if v == supported {
			return true
		}
	}
	return false
}

// NextVersion returns the next supported Kubernetes version after v, or an
// error if v is the newest supported version.
func NextVersion(v string) (string, error) {
	versions := SupportedVersions()
	for i, supported := range versions {
		if v == supported {
			if i == len(versions)-1 {
				return "", fmt.Errorf("%s is already the newest supported version", v)
			}
			return versions[i+1], nil
		}
	}
	return "", fmt.Errorf("unknown version %q", v)
}
