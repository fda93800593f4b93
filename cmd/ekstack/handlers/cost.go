package handlers

import (
	"context"
	"fmt"

	"github.com/ibraheemcisse/ekstack/internal/pricing"
)

// CostOptions contains the options for the cost command.
type CostOptions struct {
	ConfigPath string
	PricesPath string
	JSON       bool
	Compact    bool
}

// loadPrices is replaced in tests.
var loadPrices = pricing.LoadOrDefault

// Cost handles the cost command. The estimate is arithmetic over the
// configuration and a price table; nothing is called on AWS.
func Cost(ctx context.Context, opts CostOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	prices, err := loadPrices(opts.PricesPath)
	if err != nil {
		return err
	}

	estimate := pricing.NewCalculatorWithPrices(prices).Calculate(cfg)

	formatter := pricing.NewFormatter()
	switch {
	case opts.JSON:
		fmt.Println(formatter.FormatJSON(estimate))
	case opts.Compact:
		fmt.Println(formatter.FormatCompact(estimate))
	default:
		fmt.Print(formatter.Format(estimate))
	}

	return nil
}
