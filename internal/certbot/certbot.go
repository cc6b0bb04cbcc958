// Package certbot wraps the certbot CLI as one of the certificate backends.
// The native ACME client in internal/acme is the default; certbot remains
// for hosts that already manage renewals through it.
package certbot

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/deckhand-sh/deckhand/internal/executor"
)

// Cert represents an issued certificate's on-disk artifacts
type Cert struct {
	Domain   string
	CertPath string
	KeyPath  string
}

// letsencryptDir is the base directory for certbot-managed certificates
const letsencryptDir = "/etc/letsencrypt/live"

// cmdExecutor is the command executor (can be replaced for testing)
var cmdExecutor executor.CommandExecutor = executor.NewSystemExecutor()

// SetExecutor allows tests to inject a mock executor
func SetExecutor(exec executor.CommandExecutor) {
	cmdExecutor = exec
}

// ResetExecutor resets the executor to the default system executor
func ResetExecutor() {
	cmdExecutor = executor.NewSystemExecutor()
}

// IsInstalled checks if certbot is installed
func IsInstalled() bool {
	_, err := cmdExecutor.LookPath("certbot")
	return err == nil
}

// run executes certbot with the given arguments
func run(args []string) error {
	if !IsInstalled() {
		return fmt.Errorf("certbot is not installed. Install it with: apt install certbot")
	}

	output, err := cmdExecutor.Execute("certbot", args...)
	if err != nil {
		return fmt.Errorf("certbot failed: %s", string(output))
	}
	return nil
}

// CertPaths returns the certificate paths for a domain
func CertPaths(domain string) *Cert {
	return &Cert{
		Domain:   domain,
		CertPath: filepath.Join(letsencryptDir, domain, "fullchain.pem"),
		KeyPath:  filepath.Join(letsencryptDir, domain, "privkey.pem"),
	}
}

// Issue obtains a certificate using webroot mode. The proxy keeps serving
// while certbot drops challenge files under the webroot.
func Issue(domains []string, email, webroot string) (*Cert, error) {
	args := []string{
		"certonly",
		"--webroot",
		"-w", webroot,
	}
	for _, d := range domains {
		args = append(args, "-d", d)
	}
	args = append(args,
		"--email", email,
		"--agree-tos",
		"--non-interactive",
	)

	if err := run(args); err != nil {
		return nil, err
	}

	return CertPaths(domains[0]), nil
}

// IssueStandalone obtains a certificate using standalone mode.
// Port 80 must be free; used before the proxy is configured.
func IssueStandalone(domains []string, email string) (*Cert, error) {
	args := []string{
		"certonly",
		"--standalone",
	}
	for _, d := range domains {
		args = append(args, "-d", d)
	}
	args = append(args,
		"--email", email,
		"--agree-tos",
		"--non-interactive",
	)

	if err := run(args); err != nil {
		return nil, err
	}

	return CertPaths(domains[0]), nil
}

// Renew renews a specific certificate
func Renew(domain string) error {
	args := []string{
		"renew",
		"--cert-name", domain,
		"--non-interactive",
	}
	return run(args)
}

// RenewAll renews all certificates
func RenewAll() error {
	return run([]string{"renew", "--non-interactive"})
}

// Delete removes a certificate
func Delete(domain string) error {
	args := []string{
		"delete",
		"--cert-name", domain,
		"--non-interactive",
	}
	return run(args)
}

// List returns all certbot-managed certificate names
func List() ([]string, error) {
	if !IsInstalled() {
		return nil, fmt.Errorf("certbot is not installed")
	}

	output, err := cmdExecutor.Execute("certbot", "certificates")
	if err != nil {
		return nil, fmt.Errorf("certbot certificates failed: %s", string(output))
	}

	// Parse output to extract certificate names
	var domains []string
	for _, line := range strings.Split(string(output), "\n") {
		if strings.Contains(line, "Certificate Name:") {
			parts := strings.Split(line, ":")
			if len(parts) >= 2 {
				domains = append(domains, strings.TrimSpace(parts[1]))
			}
		}
	}

	return domains, nil
}
