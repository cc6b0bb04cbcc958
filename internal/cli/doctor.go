package cli

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deckhand-sh/deckhand/internal/certbot"
	"github.com/deckhand-sh/deckhand/internal/config"
	"github.com/deckhand-sh/deckhand/internal/firewall"
	"github.com/deckhand-sh/deckhand/internal/output"
	"github.com/deckhand-sh/deckhand/internal/proxy"
	"github.com/deckhand-sh/deckhand/internal/service"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system status and diagnose issues",
	Long: `Run diagnostic checks on the system and site configuration.

Checks:
  - Proxy installation (nginx, caddy)
  - Certbot installation (when using the certbot backend)
  - Docker daemon availability
  - Firewall (ufw) and fail2ban status
  - Configuration file validity
  - Per-site config, symlink, and certificate state

Examples:
  deckhand doctor
  deckhand doctor --json`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// CheckResult represents a single diagnostic check result
type CheckResult struct {
	Status  string `json:"status"` // "success", "warning", "error"
	Message string `json:"message"`
}

// SiteStatus represents the status of a single site
type SiteStatus struct {
	Domain  string        `json:"domain"`
	Enabled bool          `json:"enabled"`
	Checks  []CheckResult `json:"checks"`
}

// DoctorReport contains all diagnostic results
type DoctorReport struct {
	SystemRequirements []CheckResult `json:"system_requirements"`
	Configuration      []CheckResult `json:"configuration"`
	Sites              []SiteStatus  `json:"sites"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	report := &DoctorReport{}
	report.SystemRequirements = checkSystemRequirements(cfg)
	report.Configuration = checkConfiguration(drv)
	report.Sites = checkSites(drv, cfg)

	if jsonOutput {
		return output.JSON(report)
	}

	displayDoctorResults(report)
	return nil
}

func checkSystemRequirements(cfg *config.Config) []CheckResult {
	exec := deps.Executor
	results := []CheckResult{}

	// Version extraction patterns
	versionPatterns := map[string]*regexp.Regexp{
		"nginx": regexp.MustCompile(`nginx/(\d+\.\d+\.\d+)`),
		"caddy": regexp.MustCompile(`v?(\d+\.\d+\.\d+)`),
	}

	proxies := []struct {
		name        string
		binary      string
		versionFlag string
		optional    bool
	}{
		{"Nginx", "nginx", "-v", cfg.Driver != "nginx"},
		{"Caddy", "caddy", "version", cfg.Driver != "caddy"},
	}

	for _, p := range proxies {
		if _, err := exec.LookPath(p.binary); err == nil {
			versionOutput, err := exec.Execute(p.binary, p.versionFlag)
			version := "unknown"
			if err == nil {
				if matches := versionPatterns[p.binary].FindStringSubmatch(string(versionOutput)); len(matches) >= 2 {
					version = matches[1]
				}
			}
			results = append(results, CheckResult{
				Status:  "success",
				Message: fmt.Sprintf("%s installed (%s)", p.name, version),
			})
		} else {
			status := "error"
			suffix := ""
			if p.optional {
				status = "warning"
				suffix = " (optional)"
			}
			results = append(results, CheckResult{
				Status:  status,
				Message: fmt.Sprintf("%s not installed%s", p.name, suffix),
			})
		}
	}

	// Certbot only matters for the certbot backend
	if certbot.IsInstalled() {
		results = append(results, CheckResult{Status: "success", Message: "Certbot installed"})
	} else {
		status := "warning"
		if cfg.ACME.Backend == config.BackendCertbot {
			status = "error"
		}
		results = append(results, CheckResult{Status: status, Message: "Certbot not installed"})
	}

	// Docker, needed only when container sites exist
	hasContainerSites := false
	for _, site := range cfg.Sites {
		if site.Type == config.TypeContainer {
			hasContainerSites = true
			break
		}
	}
	if newDockerClient().IsAvailable() {
		results = append(results, CheckResult{Status: "success", Message: "Docker daemon reachable"})
	} else {
		status := "warning"
		if hasContainerSites {
			status = "error"
		}
		results = append(results, CheckResult{Status: status, Message: "Docker daemon not reachable"})
	}

	// Firewall
	fw := firewall.New(exec)
	if !fw.IsInstalled() {
		results = append(results, CheckResult{Status: "warning", Message: "ufw not installed"})
	} else if active, err := fw.IsActive(); err == nil && active {
		results = append(results, CheckResult{Status: "success", Message: "Firewall active"})
	} else {
		results = append(results, CheckResult{Status: "warning", Message: "Firewall inactive (run: deckhand fw baseline)"})
	}

	// fail2ban
	hardener := service.NewHardener(exec, "")
	if !hardener.IsInstalled() {
		results = append(results, CheckResult{Status: "warning", Message: "fail2ban not installed"})
	} else if jails, err := hardener.JailStatus(); err == nil && len(jails) > 0 {
		results = append(results, CheckResult{
			Status:  "success",
			Message: fmt.Sprintf("fail2ban active (jails: %s)", strings.Join(jails, ", ")),
		})
	} else {
		results = append(results, CheckResult{Status: "warning", Message: "fail2ban installed but no jails active (run: deckhand service harden)"})
	}

	return results
}

func checkConfiguration(drv proxy.Driver) []CheckResult {
	results := []CheckResult{}

	configPath, pathErr := config.Path()
	if pathErr == nil {
		if _, err := os.Stat(configPath); err == nil {
			displayPath := strings.Replace(configPath, os.Getenv("HOME"), "~", 1)
			results = append(results, CheckResult{
				Status:  "success",
				Message: fmt.Sprintf("Config file exists (%s)", displayPath),
			})
		} else {
			results = append(results, CheckResult{
				Status:  "warning",
				Message: "Config file not found (defaults in use)",
			})
		}
	} else {
		results = append(results, CheckResult{
			Status:  "error",
			Message: "Could not determine config path",
		})
	}

	if err := drv.Test(); err == nil {
		results = append(results, CheckResult{
			Status:  "success",
			Message: fmt.Sprintf("%s config syntax OK", capitalize(drv.Name())),
		})
	} else {
		results = append(results, CheckResult{
			Status:  "error",
			Message: fmt.Sprintf("%s config syntax error", capitalize(drv.Name())),
		})
	}

	return results
}

func checkSites(drv proxy.Driver, cfg *config.Config) []SiteStatus {
	statuses := []SiteStatus{}

	for domain, site := range cfg.Sites {
		status := SiteStatus{
			Domain:  domain,
			Enabled: false,
			Checks:  []CheckResult{},
		}

		if enabled, err := drv.IsEnabled(domain); err == nil {
			status.Enabled = enabled
		}

		allOK := true

		if status.Enabled != site.Enabled {
			status.Checks = append(status.Checks, CheckResult{
				Status:  "warning",
				Message: fmt.Sprintf("enabled mismatch (config: %v, actual: %v)", site.Enabled, status.Enabled),
			})
			allOK = false
		}

		if site.Root != "" {
			if _, err := os.Stat(site.Root); os.IsNotExist(err) {
				status.Checks = append(status.Checks, CheckResult{
					Status:  "warning",
					Message: "root directory missing",
				})
				allOK = false
			}
		}

		if site.TLS {
			if site.TLSCert != "" {
				if _, err := os.Stat(site.TLSCert); os.IsNotExist(err) {
					status.Checks = append(status.Checks, CheckResult{
						Status:  "error",
						Message: "TLS certificate missing (run: deckhand cert issue " + domain + ")",
					})
					allOK = false
				}
			}
			if site.TLSKey != "" {
				if _, err := os.Stat(site.TLSKey); os.IsNotExist(err) {
					status.Checks = append(status.Checks, CheckResult{
						Status:  "error",
						Message: "TLS key missing",
					})
					allOK = false
				}
			}
		}

		if site.Type == config.TypeContainer && site.Container != "" {
			docker := newDockerClient()
			if running, err := docker.IsRunning(site.Container); err == nil && !running {
				status.Checks = append(status.Checks, CheckResult{
					Status:  "error",
					Message: fmt.Sprintf("container %s not running", site.Container),
				})
				allOK = false
			}
			if policy, err := docker.RestartPolicy(site.Container); err == nil && policy == "no" {
				status.Checks = append(status.Checks, CheckResult{
					Status:  "warning",
					Message: fmt.Sprintf("container %s has no restart policy (docker update --restart unless-stopped %s)", site.Container, site.Container),
				})
				allOK = false
			}
		}

		if allOK {
			statusText := "disabled"
			if status.Enabled {
				statusText = "enabled"
			}
			status.Checks = append(status.Checks, CheckResult{
				Status:  "success",
				Message: fmt.Sprintf("%s, config valid", statusText),
			})
		}

		statuses = append(statuses, status)
	}

	return statuses
}

func displayDoctorResults(report *DoctorReport) {
	output.Print("Checking system requirements...")
	for _, check := range report.SystemRequirements {
		displayCheck(check)
	}
	output.Print("")

	output.Print("Checking configuration...")
	for _, check := range report.Configuration {
		displayCheck(check)
	}
	output.Print("")

	if len(report.Sites) > 0 {
		output.Print("Checking sites...")
		for _, site := range report.Sites {
			if len(site.Checks) > 0 {
				mainCheck := site.Checks[len(site.Checks)-1]
				switch mainCheck.Status {
				case "success":
					output.Success("%s - %s", site.Domain, mainCheck.Message)
				case "warning":
					output.Warn("%s - %s", site.Domain, mainCheck.Message)
				case "error":
					output.Error("%s - %s", site.Domain, mainCheck.Message)
				}
			}
		}
	} else {
		output.Print("No sites configured")
	}
}

func displayCheck(check CheckResult) {
	switch check.Status {
	case "success":
		output.Success("%s", check.Message)
	case "warning":
		output.Warn("%s", check.Message)
	case "error":
		output.Error("%s", check.Message)
	}
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
