package config

import (
	"encoding/binary"
	"fmt"
	"net"
)

// ParseVPCCIDR validates a VPC IPv4 range. The prefix must be between /16
// and /20 so that per-AZ subnet carving still yields usable subnet sizes.
func ParseVPCCIDR(cidr string) (*net.IPNet, error) {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR: %w", err)
	}
	if network.IP.To4() == nil {
		return nil, fmt.Errorf("only IPv4 ranges are supported, got %s", cidr)
	}
	maskSize, _ := network.Mask.Size()
	if maskSize < 16 || maskSize > 20 {
		return nil, fmt.Errorf("prefix length must be between /16 and /20, got /%d", maskSize)
	}
	return network, nil
}

// SubnetPlan holds the carved subnet ranges for a VPC.
type SubnetPlan struct {
	// Public subnet CIDRs, one per availability zone.
	Public []string
	// Private subnet CIDRs, one per availability zone. Private subnets get
	// twice the address space of public ones since pods and nodes live there.
	Private []string
}

// PlanSubnets carves public and private subnet ranges out of the VPC CIDR,
// one pair per availability zone. The layout dedicates the first quarter of
// the range to public subnets and the second half to private subnets, which
// leaves a quarter spare for future use.
func PlanSubnets(cidr string, azCount int) (*SubnetPlan, error) {
	if _, err := ParseVPCCIDR(cidr); err != nil {
		return nil, err
	}
	if azCount < 2 || azCount > 3 {
		return nil, fmt.Errorf("availability zone count must be 2 or 3, got %d", azCount)
	}

	plan := &SubnetPlan{}

	// Public subnets: prefix+4 slices (e.g. /20 inside a /16) from the start.
	for i := 0; i < azCount; i++ {
		subnet, err := CIDRSubnet(cidr, 4, i)
		if err != nil {
			return nil, err
		}
		plan.Public = append(plan.Public, subnet)
	}

	// Private subnets: prefix+3 slices (e.g. /19 inside a /16) from the
	// second half of the range.
	for i := 0; i < azCount; i++ {
		subnet, err := CIDRSubnet(cidr, 3, 4+i)
		if err != nil {
			return nil, err
		}
		plan.Private = append(plan.Private, subnet)
	}

	return plan, nil
}

// CIDRSubnet calculates a subnet address given a network address, a netmask
// size increase, and a subnet number.
//
// Parameters:
//   - prefix: The network prefix (e.g., "10.0.0.0/16")
//   - newbits: The number of additional bits to add to the prefix length (e.g., 8 for /24 inside /16)
//   - netnum: The zero-based index of the subnet to calculate
//
// Note: Only IPv4 addresses are supported. IPv6 addresses will return an error.
func CIDRSubnet(prefix string, newbits int, netnum int) (string, error) {
	_, network, err := net.ParseCIDR(prefix)
	if err != nil {
		return "", fmt.Errorf("invalid CIDR prefix: %w", err)
	}

	if network.IP.To4() == nil {
		return "", fmt.Errorf("only IPv4 addresses are supported, got IPv6: %s", prefix)
	}

	maskSize, totalBits := network.Mask.Size()
	newMaskSize := maskSize + newbits

	if newMaskSize > totalBits {
		return "", fmt.Errorf("prefix extension of %d bits is too large for %s", newbits, prefix)
	}

	maxSubnets := 1 << newbits
	if netnum >= maxSubnets {
		return "", fmt.Errorf("subnet number %d exceeds max subnets %d", netnum, maxSubnets)
	}

	ip := network.IP
	if ip.To4() != nil {
		ip = ip.To4()
	}

	ipInt := uint64(binary.BigEndian.Uint32(ip))

	subnetSize := 1 << (totalBits - newMaskSize)
	offset := netnum * subnetSize

	// #nosec G115
	ipInt += uint64(offset)

	newIP := make(net.IP, 4)
	// #nosec G115
	binary.BigEndian.PutUint32(newIP, uint32(ipInt))

	return fmt.Sprintf("%s/%d", newIP.String(), newMaskSize), nil
}
