package handlers

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ibraheemcisse/ekstack/internal/loadtest"
	"github.com/ibraheemcisse/ekstack/internal/netutil"
	"github.com/ibraheemcisse/ekstack/internal/platform/s3"
)

// LoadTestOptions contains the options for the loadtest command.
type LoadTestOptions struct {
	ConfigPath   string
	ScenarioPath string
	Target       string
	OutputPath   string
	Bucket       string
	MetricsAddr  string
}

// targetProbeTimeout bounds the wait for the target to accept TCP
// connections before the attack starts. A fresh load balancer can take
// a minute to pass health checks.
const targetProbeTimeout = 2 * time.Minute

// reportUploader archives report artifacts to object storage.
type reportUploader interface {
	EnsureBucket(ctx context.Context, bucketName string) error
	Upload(ctx context.Context, bucketName, key, contentType string, data []byte) error
}

// loadtestRunner executes a scenario against a base URL.
type loadtestRunner interface {
	Run(ctx context.Context) (*loadtest.Report, error)
}

// Factory function variables for loadtest - replaced in tests.
var (
	loadScenario    = loadtest.LoadScenario
	waitForTarget   = netutil.WaitForPort
	writeReportFile = os.WriteFile

	newReportUploader = func(cloud cloudClient) reportUploader {
		return s3.NewClient(cloud.SDKConfig())
	}
	newLoadTestRunner = func(scenario *loadtest.Scenario, baseURL string, collector *loadtest.Collector) loadtestRunner {
		return loadtest.NewRunner(scenario, baseURL, os.Stdout, collector)
	}
)

// LoadTest handles the loadtest command. It returns an error when any
// flow misses its thresholds or checks, so CI pipelines fail on the
// exit code alone.
func LoadTest(ctx context.Context, opts LoadTestOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	scenarioPath := opts.ScenarioPath
	if scenarioPath == "" && cfg.LoadTest != nil {
		scenarioPath = cfg.LoadTest.Scenario
	}
	if scenarioPath == "" {
		return fmt.Errorf("no scenario: pass --scenario or set loadtest.scenario in the config")
	}

	scenario, err := loadScenario(scenarioPath)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	target := opts.Target
	if target == "" {
		target = scenario.Target
	}
	if target == "" {
		return fmt.Errorf("no target: pass --target or set target in the scenario")
	}

	bucket := opts.Bucket
	if bucket == "" && cfg.LoadTest != nil {
		bucket = cfg.LoadTest.ReportBucket
	}

	// AWS access is only needed to resolve in-cluster targets and to
	// archive reports. A plain URL without a bucket runs credential-free.
	needsCluster := strings.HasPrefix(target, "service:")
	var cloud cloudClient
	if needsCluster || bucket != "" {
		cloud, err = newCloudClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize AWS access: %w", err)
		}
	}

	var resolver loadtest.ServiceResolver
	if needsCluster {
		initKubeLogging(newLogger(false))
		cluster, err := cloud.GetCluster(ctx, cfg.Name)
		if err != nil {
			return fmt.Errorf("failed to look up cluster: %w", err)
		}
		if cluster == nil {
			return fmt.Errorf("cluster %s does not exist, run 'ekstack apply' first", cfg.Name)
		}
		kubeClient, err := newClusterKubeClient(cloud.SDKConfig(), cluster)
		if err != nil {
			return fmt.Errorf("failed to connect to cluster: %w", err)
		}
		resolver = kubeClient
	}

	baseURL, err := loadtest.ResolveTarget(ctx, target, resolver)
	if err != nil {
		return err
	}

	host, port, err := loadtest.TargetHostPort(baseURL)
	if err != nil {
		return err
	}
	log.Printf("Waiting for %s to accept connections", baseURL)
	if err := waitForTarget(ctx, host, port, targetProbeTimeout); err != nil {
		return fmt.Errorf("target %s is unreachable: %w", baseURL, err)
	}

	metricsAddr := opts.MetricsAddr
	if metricsAddr == "" && cfg.LoadTest != nil {
		metricsAddr = cfg.LoadTest.MetricsAddr
	}
	var collector *loadtest.Collector
	if metricsAddr != "" {
		collector = loadtest.NewCollector()
		if err := collector.Start(metricsAddr); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = collector.Shutdown(shutdownCtx)
		}()
		log.Printf("Serving metrics on http://%s/metrics", collector.Addr())
	}

	report, err := newLoadTestRunner(scenario, baseURL, collector).Run(ctx)
	if err != nil {
		return fmt.Errorf("load test failed to run: %w", err)
	}

	fmt.Println()
	fmt.Print(report.Text())

	if err := archiveReport(ctx, report, opts.OutputPath, bucket, cloud); err != nil {
		return err
	}

	if !report.Passed {
		return fmt.Errorf("load test failed: %s", strings.Join(report.FailedFlows(), ", "))
	}
	return nil
}

// archiveReport writes the JSON artifact locally and, when a bucket is
// configured, uploads it under reports/.
func archiveReport(ctx context.Context, report *loadtest.Report, outputPath, bucket string, cloud cloudClient) error {
	data, err := report.JSON()
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if outputPath == "" {
		outputPath = report.ArtifactName()
	}
	if err := writeReportFile(outputPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.Printf("Report written to %s", outputPath)

	if bucket == "" {
		return nil
	}

	uploader := newReportUploader(cloud)
	if err := uploader.EnsureBucket(ctx, bucket); err != nil {
		return fmt.Errorf("failed to ensure report bucket: %w", err)
	}
	key := "reports/" + report.ArtifactName()
	if err := uploader.Upload(ctx, bucket, key, "application/json", data); err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}
	log.Printf("Report archived to s3://%s/%s", bucket, key)
	return nil
}
