package commands

import (
	"github.com/spf13/cobra"

	"github.com/ibraheemcisse/ekstack/cmd/ekstack/handlers"
)

// LoadTest returns the load test command.
//
// The command runs a scenario of named request flows against a deployed
// workload, evaluates per-step checks and latency/error thresholds, and
// exits non-zero when any budget is missed so CI pipelines can gate on
// it.
func LoadTest() *cobra.Command {
	var (
		configPath   string
		scenarioPath string
		target       string
		outputPath   string
		bucket       string
		metricsAddr  string
	)

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Run a load test scenario against the platform",
		Long: `LoadTest executes a YAML scenario of weighted request flows.

Each flow is a sequence of HTTP steps with optional inline checks
(status codes, body substring, per-request latency). The scenario sets
the total request rate, duration or ramp stages, and thresholds on p95,
p99, and error rate; flows may override the thresholds.

The target is the scenario's base URL, or "service:<namespace>/<name>"
to resolve a Service load balancer through the cluster. Before the run
the target is probed for TCP reachability.

Results are printed as a summary table and written as a JSON artifact;
with a report bucket configured the artifact is also archived to S3.
The command exits non-zero when any threshold or check budget fails.

Examples:
  # Run the scenario from the config's loadtest defaults
  ekstack loadtest

  # Run a specific scenario against an explicit URL
  ekstack loadtest -s checkout.yaml --target http://shop.example.com

  # Expose live Prometheus metrics during the run
  ekstack loadtest -s checkout.yaml --metrics-addr :9095`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.LoadTest(cmd.Context(), handlers.LoadTestOptions{
				ConfigPath:   configPath,
				ScenarioPath: scenarioPath,
				Target:       target,
				OutputPath:   outputPath,
				Bucket:       bucket,
				MetricsAddr:  metricsAddr,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the platform configuration file")
	cmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "Path to the scenario file (default from config loadtest.scenario)")
	cmd.Flags().StringVar(&target, "target", "", "Base URL or service:<namespace>/<name>, overriding the scenario target")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Where to write the JSON report (default ./<scenario>-<timestamp>.json)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket to archive the report to (default from config loadtest.reportBucket)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve live Prometheus metrics on this address during the run")

	return cmd
}
