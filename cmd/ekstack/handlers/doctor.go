package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ibraheemcisse/ekstack/internal/config"
	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
	"github.com/ibraheemcisse/ekstack/internal/ui/tui"
	"github.com/ibraheemcisse/ekstack/internal/util/naming"
	"github.com/ibraheemcisse/ekstack/internal/util/prerequisites"
)

// checkAllPrereqs is replaced in tests.
var checkAllPrereqs = prerequisites.CheckAll

// Doctor handles the doctor command.
//
// It diagnoses the environment end to end: client tools, configuration,
// AWS credentials, and any infrastructure already standing under the
// configured name. Doctor never mutates anything.
func Doctor(ctx context.Context, configPath string, jsonOutput bool) error {
	var checks []tui.Check
	checks = append(checks, toolChecks()...)

	cfg, check := configCheck(configPath)
	checks = append(checks, check)
	if cfg == nil {
		return renderDoctor("", checks, jsonOutput)
	}

	cloud, err := newCloudClient(ctx, cfg)
	if err != nil {
		checks = append(checks, tui.Check{
			Name:   "aws credentials",
			Status: tui.CheckFail,
			Detail: err.Error(),
		})
		return renderDoctor(cfg.Name, checks, jsonOutput)
	}

	account, err := cloud.AccountID(ctx)
	if err != nil {
		checks = append(checks, tui.Check{
			Name:   "aws credentials",
			Status: tui.CheckFail,
			Detail: fmt.Sprintf("STS call failed: %v", err),
		})
		return renderDoctor(cfg.Name, checks, jsonOutput)
	}
	checks = append(checks, tui.Check{
		Name:   "aws credentials",
		Status: tui.CheckOK,
		Detail: fmt.Sprintf("account %s, region %s", account, cloud.Region()),
	})

	checks = append(checks, infrastructureChecks(ctx, cloud, cfg)...)

	return renderDoctor(cfg.Name, checks, jsonOutput)
}

// toolChecks reports on required and optional client tools.
func toolChecks() []tui.Check {
	var checks []tui.Check
	for _, result := range checkAllPrereqs().Results {
		check := tui.Check{Name: result.Tool.Name}
		switch {
		case result.Found:
			check.Status = tui.CheckOK
			check.Detail = result.Version
		case result.Tool.Required:
			check.Status = tui.CheckFail
			check.Detail = fmt.Sprintf("not found in PATH, install: %s", result.Tool.InstallURL)
		default:
			check.Status = tui.CheckWarn
			check.Detail = fmt.Sprintf("not found in PATH (optional), install: %s", result.Tool.InstallURL)
		}
		checks = append(checks, check)
	}
	return checks
}

// configCheck locates and validates the configuration. A nil config
// means the remaining AWS-side checks cannot run.
func configCheck(configPath string) (*config.Config, tui.Check) {
	path := configPath
	if path == "" {
		found, err := findConfigFile()
		if err != nil {
			return nil, tui.Check{
				Name:   "configuration",
				Status: tui.CheckFail,
				Detail: fmt.Sprintf("%v (run 'ekstack init' to create one)", err),
			}
		}
		path = found
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		return nil, tui.Check{
			Name:   "configuration",
			Status: tui.CheckFail,
			Detail: err.Error(),
		}
	}

	return cfg, tui.Check{
		Name:   "configuration",
		Status: tui.CheckOK,
		Detail: path,
	}
}

// infrastructureChecks probes AWS for infrastructure under the platform
// name. It distinguishes a fully standing cluster, a clean slate, and
// the partial leftovers of an interrupted apply or destroy.
func infrastructureChecks(ctx context.Context, cloud cloudClient, cfg *config.Config) []tui.Check {
	var checks []tui.Check

	network, networkErr := cloud.GetNetwork(ctx, cfg.Name)
	cluster, clusterErr := cloud.GetCluster(ctx, cfg.Name)
	if networkErr != nil || clusterErr != nil {
		err := networkErr
		if err == nil {
			err = clusterErr
		}
		return append(checks, tui.Check{
			Name:   "infrastructure",
			Status: tui.CheckFail,
			Detail: fmt.Sprintf("probe failed: %v", err),
		})
	}

	var database *aws.DBInstance
	if cfg.HasDatabase() {
		if db, err := cloud.GetDatabase(ctx, naming.DBInstance(cfg.Name)); err == nil {
			database = db
		}
	}

	switch {
	case cluster != nil:
		checks = append(checks, tui.Check{
			Name:   "cluster",
			Status: clusterCheckStatus(cluster.Status),
			Detail: fmt.Sprintf("%s, Kubernetes %s", cluster.Status, cluster.Version),
		})
		if network != nil {
			checks = append(checks, tui.Check{
				Name:   "network",
				Status: tui.CheckOK,
				Detail: network.VPC.ID,
			})
		}
		if cfg.HasDatabase() {
			check := tui.Check{Name: "database", Status: tui.CheckWarn, Detail: "not found"}
			if database != nil {
				check.Detail = database.Status
				if database.Ready() {
					check.Status = tui.CheckOK
				}
			}
			checks = append(checks, check)
		}

	case network != nil || database != nil:
		checks = append(checks, tui.Check{
			Name:   "infrastructure",
			Status: tui.CheckWarn,
			Detail: "partially created, run 'ekstack apply' to continue or 'ekstack destroy' to clean up",
		})

	default:
		checks = append(checks, tui.Check{
			Name:   "infrastructure",
			Status: tui.CheckOK,
			Detail: "not created, run 'ekstack apply' to provision",
		})
	}

	return checks
}

func clusterCheckStatus(status string) tui.CheckStatus {
	switch status {
	case "ACTIVE":
		return tui.CheckOK
	case "CREATING", "UPDATING":
		return tui.CheckWarn
	default:
		return tui.CheckFail
	}
}

// renderDoctor prints the findings and returns an error when any check
// failed, so scripted callers get a non-zero exit.
func renderDoctor(clusterName string, checks []tui.Check, jsonOutput bool) error {
	failed := 0
	for _, check := range checks {
		if check.Status == tui.CheckFail {
			failed++
		}
	}

	if jsonOutput {
		data, err := json.MarshalIndent(checks, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal checks: %w", err)
		}
		fmt.Println(string(data))
	} else if isInteractiveTTY() {
		fmt.Println(tui.RenderDoctor(clusterName, checks))
	} else {
		printDoctorPlain(clusterName, checks)
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

// printDoctorPlain renders the findings without terminal styling.
func printDoctorPlain(clusterName string, checks []tui.Check) {
	title := "ekstack doctor"
	if clusterName != "" {
		title += fmt.Sprintf(": %s", clusterName)
	}
	fmt.Println(title)
	fmt.Println()

	for _, check := range checks {
		indicator := "✓"
		switch check.Status {
		case tui.CheckFail:
			indicator = "✗"
		case tui.CheckWarn:
			indicator = "!"
		}
		if check.Detail != "" {
			fmt.Printf("  %s %-26s %s\n", indicator, check.Name, check.Detail)
		} else {
			fmt.Printf("  %s %s\n", indicator, check.Name)
		}
	}
	fmt.Println()
}
