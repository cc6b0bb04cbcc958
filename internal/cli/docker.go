package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckhand-sh/deckhand/internal/config"
	"github.com/deckhand-sh/deckhand/internal/dockerutil"
	"github.com/deckhand-sh/deckhand/internal/output"
	"github.com/deckhand-sh/deckhand/internal/template"
)

var (
	containerPort string
	connectTLS    bool
)

var dockerCmd = &cobra.Command{
	Use:   "docker",
	Short: "Wire Docker containers into the proxy",
}

var dockerConnectCmd = &cobra.Command{
	Use:   "connect <container> <domain>",
	Short: "Expose a container through the proxy",
	Long: `Create a proxy site for a running container's published port.

The container must publish a host port (docker run -p). When it publishes
more than one, pick the container port with --port.

Examples:
  deckhand docker connect webapp app.example.com
  deckhand docker connect webapp app.example.com --port 8080 --tls`,
	Args: cobra.ExactArgs(2),
	RunE: runDockerConnect,
}

var dockerListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List running containers",
	RunE:    runDockerList,
}

func init() {
	dockerConnectCmd.Flags().StringVar(&containerPort, "port", "", "Container port to proxy to (when multiple are published)")
	dockerConnectCmd.Flags().BoolVar(&connectTLS, "tls", false, "Serve over TLS (certificate must exist; see cert issue)")
	dockerConnectCmd.Flags().BoolVar(&noReload, "no-reload", false, "Don't reload the proxy")

	dockerCmd.AddCommand(dockerConnectCmd)
	dockerCmd.AddCommand(dockerListCmd)
	rootCmd.AddCommand(dockerCmd)
}

func newDockerClient() *dockerutil.Client {
	return dockerutil.NewClient(deps.Executor)
}

func runDockerConnect(cmd *cobra.Command, args []string) error {
	container, domain := args[0], args[1]

	if err := validateDomain(domain); err != nil {
		return err
	}

	docker := newDockerClient()

	hostPort, err := docker.ResolvePort(container, containerPort)
	if err != nil {
		return err
	}

	if policy, err := docker.RestartPolicy(container); err == nil && policy == "no" {
		output.Warn("Container %s has no restart policy; it will not survive a reboot (docker update --restart unless-stopped %s)", container, container)
	}

	cfg, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	if _, exists := cfg.Sites[domain]; exists {
		return fmt.Errorf("site %s already exists", domain)
	}

	site := &config.Site{
		Domain:    domain,
		Type:      config.TypeContainer,
		Container: container,
		Upstream:  fmt.Sprintf("http://127.0.0.1:%s", hostPort),
		TLS:       connectTLS,
		Enabled:   true,
		CreatedAt: time.Now(),
	}
	if site.TLS {
		live := filepath.Join(certLiveDir(), domain)
		site.TLSCert = filepath.Join(live, "fullchain.pem")
		site.TLSKey = filepath.Join(live, "privkey.pem")
	}

	configContent, err := template.Render(drv.Name(), site)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	if dryRun {
		return outputDryRun(&DryRunResult{
			Domain: domain,
			Operations: []DryRunOperation{
				{
					Action:  "create_site",
					Target:  domain,
					Details: fmt.Sprintf("Proxy to container %s on %s", container, site.Upstream),
				},
				{Action: "test_config", Target: drv.Name()},
				{Action: "reload_server", Target: drv.Name()},
			},
			ConfigPreview: configContent,
		})
	}

	if err := requireRoot(); err != nil {
		return err
	}

	output.Info("Connecting container %s to %s (upstream %s)...", container, domain, site.Upstream)
	if err := drv.Add(site, configContent); err != nil {
		return fmt.Errorf("failed to add site: %w", err)
	}
	if err := drv.Enable(domain); err != nil {
		_ = drv.Remove(domain)
		return fmt.Errorf("failed to enable site: %w", err)
	}

	rollback := func() error {
		output.Info("Rolling back changes...")
		if err := drv.Disable(domain); err != nil {
			output.Warn("Rollback disable failed: %v", err)
		}
		return drv.Remove(domain)
	}

	if err := testAndReload(drv, !noReload, rollback); err != nil {
		return err
	}

	cfg.Sites[domain] = site
	if err := saveConfig(cfg); err != nil {
		output.Warn("Site created but config save failed: %v", err)
	}

	return outputResult(
		map[string]interface{}{
			"success":   true,
			"domain":    domain,
			"container": container,
			"upstream":  site.Upstream,
		},
		"Container %s now served at %s", container, domain,
	)
}

func runDockerList(cmd *cobra.Command, args []string) error {
	containers, err := newDockerClient().ListRunning()
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(containers)
	}

	if len(containers) == 0 {
		output.Info("No running containers")
		return nil
	}

	headers := []string{"NAME", "IMAGE", "PORTS", "STATUS"}
	rows := make([][]string, 0, len(containers))
	for _, ct := range containers {
		rows = append(rows, []string{ct.Names, ct.Image, ct.Ports, ct.Status})
	}
	output.Table(headers, rows)
	return nil
}
