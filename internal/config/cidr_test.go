package config

import "testing"

func TestParseVPCCIDR(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cidr    string
		wantErr bool
	}{
		{"valid /16", "10.0.0.0/16", false},
		{"valid /20", "172.16.0.0/20", false},
		{"too large", "10.0.0.0/8", true},
		{"too small", "10.0.0.0/24", true},
		{"not a CIDR", "10.0.0.0", true},
		{"ipv6", "fd00::/16", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseVPCCIDR(tt.cidr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseVPCCIDR(%q) error = %v, wantErr %v", tt.cidr, err, tt.wantErr)
			}
		})
	}
}

func TestCIDRSubnet(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		prefix  string
		newbits int
		netnum  int
		want    string
		wantErr bool
	}{
		{"first /20 in /16", "10.0.0.0/16", 4, 0, "10.0.0.0/20", false},
		{"second /20 in /16", "10.0.0.0/16", 4, 1, "10.0.16.0/20", false},
		{"first /24 in /16", "10.0.0.0/16", 8, 0, "10.0.0.0/24", false},
		{"fifth /19 in /16", "10.0.0.0/16", 3, 4, "10.0.128.0/19", false},
		{"netnum out of range", "10.0.0.0/16", 2, 4, "", true},
		{"newbits too large", "10.0.0.0/30", 4, 0, "", true},
		{"bad prefix", "banana", 4, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := CIDRSubnet(tt.prefix, tt.newbits, tt.netnum)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CIDRSubnet() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CIDRSubnet() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlanSubnets(t *testing.T) {
	t.Parallel()

	plan, err := PlanSubnets("10.0.0.0/16", 3)
	if err != nil {
		t.Fatalf("PlanSubnets failed: %v", err)
	}

	wantPublic := []string{"10.0.0.0/20", "10.0.16.0/20", "10.0.32.0/20"}
	wantPrivate := []string{"10.0.128.0/19", "10.0.160.0/19", "10.0.192.0/19"}

	if len(plan.Public) != 3 || len(plan.Private) != 3 {
		t.Fatalf("expected 3 public and 3 private subnets, got %d/%d", len(plan.Public), len(plan.Private))
	}
	for i := range wantPublic {
		if plan.Public[i] != wantPublic[i] {
			t.Errorf("public[%d] = %q, want %q", i, plan.Public[i], wantPublic[i])
		}
		if plan.Private[i] != wantPrivate[i] {
			t.Errorf("private[%d] = %q, want %q", i, plan.Private[i], wantPrivate[i])
		}
	}
}

func TestPlanSubnets_Errors(t *testing.T) {
	t.Parallel()

	if _, err := PlanSubnets("10.0.0.0/8", 3); err == nil {
		t.Error("expected error for oversized VPC CIDR")
	}
	if _, err := PlanSubnets("10.0.0.0/16", 1); err == nil {
		t.Error("expected error for single AZ")
	}
	if _, err := PlanSubnets("10.0.0.0/16", 4); err == nil {
		t.Error("expected error for four AZs")
	}
}
