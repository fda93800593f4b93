// Package pricing provides cost estimation for ekstack platforms.
package pricing

import (
	"fmt"

	"github.com/ibraheemcisse/ekstack/internal/config"
)

// HoursPerMonth is the averaged month length AWS bills hourly rates
// against.
const HoursPerMonth = 730

// Calculator calculates platform costs from a price table.
type Calculator struct {
	prices *Prices
}

// Prices contains the USD rates an estimate is built from. Hourly rates
// follow the on-demand us-east-1 price sheet; regional differences are
// within a few percent and this is an estimate, not a bill.
type Prices struct {
	// ControlPlaneHourly is the EKS control plane rate.
	ControlPlaneHourly float64 `json:"controlPlaneHourly"`

	// Instances maps EC2 instance type to its on-demand hourly rate.
	Instances map[string]float64 `json:"instances"`

	// DBInstances maps RDS instance class to its single-AZ hourly rate.
	DBInstances map[string]float64 `json:"dbInstances"`

	// NATGatewayHourly is the per-gateway rate, excluding data processing.
	NATGatewayHourly float64 `json:"natGatewayHourly"`

	// LoadBalancerHourly is the ALB base rate, excluding LCUs.
	LoadBalancerHourly float64 `json:"loadBalancerHourly"`

	// EBSGBMonth is gp3 volume storage per GB-month.
	EBSGBMonth float64 `json:"ebsGBMonth"`

	// RDSStorageGBMonth is RDS gp3 storage per GB-month.
	RDSStorageGBMonth float64 `json:"rdsStorageGBMonth"`

	// SpotDiscount is the assumed fraction saved on spot capacity.
	// Actual spot prices float with demand.
	SpotDiscount float64 `json:"spotDiscount"`
}

// Estimate contains the calculated cost estimate.
type Estimate struct {
	// Items is the list of line items.
	Items []LineItem

	// Monthly is the summed monthly cost.
	Monthly float64

	// UnknownTypes lists instance types missing from the price table.
	// Their line items are priced at zero, so the estimate is a floor.
	UnknownTypes []string

	// Config metadata
	ClusterName string
	Region      config.Region
}

// LineItem represents a single cost line item. UnitPrice and Total are
// monthly USD.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitType    string  `json:"unitType"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

// String returns a formatted string representation of the line item.
func (l LineItem) String() string {
	return fmt.Sprintf("%s: %d x %s @ $%.2f = $%.2f/mo",
		l.Description, l.Quantity, l.UnitType, l.UnitPrice, l.Total)
}

// AnnualCost returns the estimated annual cost.
func (e *Estimate) AnnualCost() float64 {
	return e.Monthly * 12
}

// NewCalculator creates a calculator with the built-in price table.
func NewCalculator() *Calculator {
	return &Calculator{prices: DefaultPrices()}
}

// NewCalculatorWithPrices creates a calculator with specific pricing.
func NewCalculatorWithPrices(prices *Prices) *Calculator {
	return &Calculator{prices: prices}
}

// Calculate calculates the cost estimate for a platform configuration.
// The config must have defaults applied.
func (c *Calculator) Calculate(cfg *config.Config) *Estimate {
	e := &Estimate{
		ClusterName: cfg.Name,
		Region:      cfg.Region,
	}

	c.addControlPlane(e)
	c.addNodeGroups(e, cfg)
	c.addNAT(e, cfg)
	c.addLoadBalancer(e, cfg)
	c.addDatabase(e, cfg)

	for _, item := range e.Items {
		e.Monthly += item.Total
	}
	return e
}

func (c *Calculator) addControlPlane(e *Estimate) {
	monthly := c.prices.ControlPlaneHourly * HoursPerMonth
	e.Items = append(e.Items, LineItem{
		Description: "EKS control plane",
		Quantity:    1,
		UnitType:    "cluster",
		UnitPrice:   monthly,
		Total:       monthly,
	})
}

func (c *Calculator) addNodeGroups(e *Estimate, cfg *config.Config) {
	totalDiskGB := 0

	for _, ng := range cfg.NodeGroups {
		hourly, ok := c.prices.Instances[ng.InstanceType]
		if !ok {
			e.UnknownTypes = append(e.UnknownTypes, ng.InstanceType)
		}

		description := fmt.Sprintf("Node group %s", ng.Name)
		if ng.CapacityType == config.CapacitySpot {
			hourly *= 1 - c.prices.SpotDiscount
			description += " (spot)"
		}

		monthly := hourly * HoursPerMonth
		e.Items = append(e.Items, LineItem{
			Description: description,
			Quantity:    ng.Desired,
			UnitType:    ng.InstanceType,
			UnitPrice:   monthly,
			Total:       float64(ng.Desired) * monthly,
		})

		totalDiskGB += ng.Desired * ng.DiskGB
	}

	if totalDiskGB > 0 {
		e.Items = append(e.Items, LineItem{
			Description: "Node root volumes",
			Quantity:    totalDiskGB,
			UnitType:    "GB gp3",
			UnitPrice:   c.prices.EBSGBMonth,
			Total:       float64(totalDiskGB) * c.prices.EBSGBMonth,
		})
	}
}

func (c *Calculator) addNAT(e *Estimate, cfg *config.Config) {
	count := 0
	switch cfg.Network.NAT {
	case config.NATSingle:
		count = 1
	case config.NATPerAZ:
		count = cfg.Network.AvailabilityZones
	case config.NATNone:
	}
	if count == 0 {
		return
	}

	monthly := c.prices.NATGatewayHourly * HoursPerMonth
	e.Items = append(e.Items, LineItem{
		Description: "NAT gateways",
		Quantity:    count,
		UnitType:    "gateway",
		UnitPrice:   monthly,
		Total:       float64(count) * monthly,
	})
}

func (c *Calculator) addLoadBalancer(e *Estimate, cfg *config.Config) {
	if !cfg.Addons.LoadBalancerControllerEnabled() {
		return
	}

	// One ALB for the ingress the controller manages. Traffic-dependent
	// LCU charges are left out.
	monthly := c.prices.LoadBalancerHourly * HoursPerMonth
	e.Items = append(e.Items, LineItem{
		Description: "Application load balancer",
		Quantity:    1,
		UnitType:    "ALB",
		UnitPrice:   monthly,
		Total:       monthly,
	})
}

func (c *Calculator) addDatabase(e *Estimate, cfg *config.Config) {
	if !cfg.HasDatabase() {
		return
	}
	db := cfg.Database

	hourly, ok := c.prices.DBInstances[db.InstanceClass]
	if !ok {
		e.UnknownTypes = append(e.UnknownTypes, db.InstanceClass)
	}

	description := "Database"
	instances := 1
	if db.MultiAZ {
		// Multi-AZ runs a standby billed at the same rate.
		description = "Database (multi-AZ)"
		instances = 2
	}

	monthly := hourly * HoursPerMonth
	e.Items = append(e.Items, LineItem{
		Description: description,
		Quantity:    instances,
		UnitType:    db.InstanceClass,
		UnitPrice:   monthly,
		Total:       float64(instances) * monthly,
	})

	storageGB := db.StorageGB * instances
	e.Items = append(e.Items, LineItem{
		Description: "Database storage",
		Quantity:    storageGB,
		UnitType:    "GB gp3",
		UnitPrice:   c.prices.RDSStorageGBMonth,
		Total:       float64(storageGB) * c.prices.RDSStorageGBMonth,
	})
}

// DefaultPrices returns the built-in price table, following the public
// on-demand us-east-1 rates as of mid 2025. Rates drift; an override file
// can replace them without a rebuild (see LoadPrices).
func DefaultPrices() *Prices {
	return &Prices{
		ControlPlaneHourly: 0.10,
		Instances: map[string]float64{
			// t3 - burstable x86
			"t3.small":  0.0208,
			"t3.medium": 0.0416,
			"t3.large":  0.0832,
			"t3.xlarge": 0.1664,
			// t4g - burstable Graviton
			"t4g.small":  0.0168,
			"t4g.medium": 0.0336,
			"t4g.large":  0.0672,
			// m5/m6i - general purpose x86
			"m5.large":   0.096,
			"m5.xlarge":  0.192,
			"m6i.large":  0.096,
			"m6i.xlarge": 0.192,
			// m7g - general purpose Graviton
			"m7g.large":   0.0816,
			"m7g.xlarge":  0.1632,
			"m7g.2xlarge": 0.3264,
			// c6i/c7g - compute optimized
			"c6i.large":  0.085,
			"c6i.xlarge": 0.17,
			"c7g.large":  0.0725,
			"c7g.xlarge": 0.145,
			// r6g - memory optimized Graviton
			"r6g.large":  0.1008,
			"r6g.xlarge": 0.2016,
		},
		DBInstances: map[string]float64{
			"db.t4g.micro":  0.016,
			"db.t4g.small":  0.032,
			"db.t4g.medium": 0.065,
			"db.t4g.large":  0.129,
			"db.m7g.large":  0.168,
			"db.m7g.xlarge": 0.336,
			"db.r6g.large":  0.226,
			"db.r6g.xlarge": 0.452,
		},
		NATGatewayHourly:   0.045,
		LoadBalancerHourly: 0.0225,
		EBSGBMonth:         0.08,
		RDSStorageGBMonth:  0.115,
		SpotDiscount:       0.65,
	}
}
