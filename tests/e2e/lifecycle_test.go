//go:build e2e

package e2e

import (
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ibraheemcisse/ekstack/cmd/ekstack/handlers"
	"github.com/ibraheemcisse/ekstack/internal/kube"
	"github.com/ibraheemcisse/ekstack/internal/util/naming"
)

var _ = Describe("EKS platform lifecycle", Ordered, func() {
	// Polling cadence for AWS state checks. Apply already waits for
	// resources internally, so these only absorb eventual consistency.
	const (
		awsTimeout  = 5 * time.Minute
		awsInterval = 15 * time.Second
	)

	It("provisions the platform", func() {
		if e2eCfg.ReusePlatform {
			Skip("EKSTACK_E2E_REUSE_PLATFORM is set")
		}

		By(fmt.Sprintf("applying %s in %s", cfg.Name, cfg.Region))
		err := handlers.Apply(ctx, handlers.ApplyOptions{
			ConfigPath: e2eCfg.ConfigPath,
			Plain:      true,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("reports the control plane active", func() {
		Eventually(func() string {
			cluster, err := cloud.GetCluster(ctx, cfg.Name)
			if err != nil || cluster == nil {
				return ""
			}
			return cluster.Status
		}, awsTimeout, awsInterval).Should(Equal("ACTIVE"))
	})

	It("stood up the network", func() {
		network, err := cloud.GetNetwork(ctx, cfg.Name)
		Expect(err).NotTo(HaveOccurred())
		Expect(network).NotTo(BeNil())
		Expect(network.VPC.ID).NotTo(BeEmpty())
		Expect(len(network.PublicSubnets)).To(BeNumerically(">=", 2))
		Expect(len(network.PrivateSubnets)).To(BeNumerically(">=", 2))
	})

	It("activated every node group", func() {
		groups, err := cloud.ListNodeGroups(ctx, cfg.Name)
		Expect(err).NotTo(HaveOccurred())
		Expect(groups).To(HaveLen(len(cfg.NodeGroups)))
		for _, group := range groups {
			Expect(group.Status).To(Equal("ACTIVE"), "node group %s", group.Name)
		}
	})

	It("brought the database up", func() {
		if !cfg.HasDatabase() {
			Skip("no database configured")
		}
		Eventually(func() bool {
			db, err := cloud.GetDatabase(ctx, naming.DBInstance(cfg.Name))
			if err != nil || db == nil {
				return false
			}
			return db.Ready()
		}, awsTimeout, awsInterval).Should(BeTrue(), "database never became available")
	})

	It("reaches the cluster and sees ready nodes", func() {
		cluster, err := cloud.GetCluster(ctx, cfg.Name)
		Expect(err).NotTo(HaveOccurred())
		Expect(cluster).NotTo(BeNil())

		kubeClient, err := kube.NewForCluster(cloud.SDKConfig(), cluster)
		Expect(err).NotTo(HaveOccurred())

		want := 0
		for _, group := range cfg.NodeGroups {
			want += group.Min
		}
		Eventually(func() int {
			ready, _, err := kubeClient.NodesReady(ctx)
			if err != nil {
				return 0
			}
			return ready
		}, awsTimeout, awsInterval).Should(BeNumerically(">=", want))
	})

	It("applies cleanly a second time", func() {
		if e2eCfg.ReusePlatform {
			Skip("EKSTACK_E2E_REUSE_PLATFORM is set")
		}

		By("rerunning apply against the standing platform")
		err := handlers.Apply(ctx, handlers.ApplyOptions{
			ConfigPath: e2eCfg.ConfigPath,
			Plain:      true,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("renders the platform status", func() {
		err := handlers.Status(ctx, handlers.StatusOptions{
			ConfigPath: e2eCfg.ConfigPath,
			JSON:       true,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("passes the configured load test scenario", func() {
		if e2eCfg.SkipLoadTest {
			Skip("EKSTACK_E2E_SKIP_LOADTEST is set")
		}
		if cfg.LoadTest == nil || cfg.LoadTest.Scenario == "" {
			Skip("no load test scenario configured")
		}

		err := handlers.LoadTest(ctx, handlers.LoadTestOptions{
			ConfigPath: e2eCfg.ConfigPath,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("destroys the platform", func() {
		if e2eCfg.KeepPlatform {
			Skip("EKSTACK_E2E_KEEP_PLATFORM is set")
		}

		By(fmt.Sprintf("destroying %s", cfg.Name))
		err := handlers.Destroy(ctx, e2eCfg.ConfigPath, true)
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() bool {
			cluster, err := cloud.GetCluster(ctx, cfg.Name)
			return err == nil && cluster == nil
		}, awsTimeout, awsInterval).Should(BeTrue(), "cluster still present after destroy")
	})
})
