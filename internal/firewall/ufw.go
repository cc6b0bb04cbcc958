package firewall

import (
	"fmt"
	"strings"

	"github.com/deckhand-sh/deckhand/internal/errors"
	"github.com/deckhand-sh/deckhand/internal/executor"
	"github.com/deckhand-sh/deckhand/internal/logger"
)

// Rule is one parsed entry from ufw status.
type Rule struct {
	Target string `json:"target"` // port/proto or app profile name
	Action string `json:"action"` // ALLOW or DENY
	From   string `json:"from"`
}

// UFW drives the ufw command line tool.
type UFW struct {
	exec executor.CommandExecutor
}

// New creates a UFW adapter using the given executor.
func New(exec executor.CommandExecutor) *UFW {
	return &UFW{exec: exec}
}

// IsInstalled reports whether ufw is available on PATH.
func (u *UFW) IsInstalled() bool {
	_, err := u.exec.LookPath("ufw")
	return err == nil
}

// IsActive reports whether the firewall is enabled.
func (u *UFW) IsActive() (bool, error) {
	out, err := u.exec.Execute("ufw", "status")
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeFirewall, "failed to read firewall status", err)
	}
	return strings.Contains(string(out), "Status: active"), nil
}

// Enable turns the firewall on. --force skips the interactive prompt that
// warns about disrupting existing ssh connections.
func (u *UFW) Enable() error {
	out, err := u.exec.Execute("ufw", "--force", "enable")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFirewall, fmt.Sprintf("failed to enable firewall: %s", strings.TrimSpace(string(out))), err)
	}
	logger.Info("firewall enabled")
	return nil
}

// Disable turns the firewall off.
func (u *UFW) Disable() error {
	out, err := u.exec.Execute("ufw", "disable")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFirewall, fmt.Sprintf("failed to disable firewall: %s", strings.TrimSpace(string(out))), err)
	}
	return nil
}

// Allow opens a port/proto pair ("443/tcp") or an app profile ("OpenSSH").
// Allowing a rule that already exists is a no-op; ufw reports "Skipping".
func (u *UFW) Allow(target string) error {
	return u.rule("allow", target)
}

// Deny blocks a port/proto pair or app profile.
func (u *UFW) Deny(target string) error {
	return u.rule("deny", target)
}

// Delete removes an allow or deny rule.
func (u *UFW) Delete(action, target string) error {
	if action != "allow" && action != "deny" {
		return errors.Validation(fmt.Sprintf("invalid rule action: %s", action))
	}
	out, err := u.exec.Execute("ufw", "delete", action, target)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFirewall, fmt.Sprintf("failed to delete rule %s %s: %s", action, target, strings.TrimSpace(string(out))), err)
	}
	return nil
}

func (u *UFW) rule(action, target string) error {
	if target == "" {
		return errors.Validation("firewall rule target cannot be empty")
	}
	out, err := u.exec.Execute("ufw", action, target)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFirewall, fmt.Sprintf("failed to %s %s: %s", action, target, strings.TrimSpace(string(out))), err)
	}
	if strings.Contains(string(out), "Skipping") {
		logger.DebugKV("rule already present", "action", action, "target", target)
	}
	return nil
}

// Status returns the parsed rule list and whether the firewall is active.
func (u *UFW) Status() ([]Rule, bool, error) {
	out, err := u.exec.Execute("ufw", "status")
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeFirewall, "failed to read firewall status", err)
	}
	active := strings.Contains(string(out), "Status: active")
	return parseStatus(string(out)), active, nil
}

// Baseline applies the standard server posture: default deny incoming,
// allow outgoing, allow OpenSSH plus the given service ports, then enable.
// Allows go in before enable so the active ssh session is never cut off.
func (u *UFW) Baseline(ports []string) error {
	if out, err := u.exec.Execute("ufw", "default", "deny", "incoming"); err != nil {
		return errors.Wrap(errors.ErrCodeFirewall, fmt.Sprintf("failed to set default policy: %s", strings.TrimSpace(string(out))), err)
	}
	if out, err := u.exec.Execute("ufw", "default", "allow", "outgoing"); err != nil {
		return errors.Wrap(errors.ErrCodeFirewall, fmt.Sprintf("failed to set default policy: %s", strings.TrimSpace(string(out))), err)
	}

	if err := u.Allow("OpenSSH"); err != nil {
		return err
	}
	for _, port := range ports {
		if err := u.Allow(port); err != nil {
			return err
		}
	}

	return u.Enable()
}

// parseStatus extracts rules from ufw status output. The v6 duplicates
// ufw prints for each rule are collapsed into the v4 entry.
func parseStatus(out string) []Rule {
	var rules []Rule
	inRules := false

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "--") {
			inRules = true
			continue
		}
		if !inRules || line == "" {
			continue
		}

		// v6 entries duplicate the v4 rule
		if strings.Contains(line, "(v6)") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}

		target := fields[0]
		// app profiles can contain spaces ("Nginx Full ALLOW Anywhere")
		actionIdx := 1
		for actionIdx < len(fields)-1 && fields[actionIdx] != "ALLOW" && fields[actionIdx] != "DENY" {
			target += " " + fields[actionIdx]
			actionIdx++
		}
		action := fields[actionIdx]

		fromIdx := actionIdx + 1
		if fromIdx < len(fields) && (fields[fromIdx] == "IN" || fields[fromIdx] == "OUT") {
			fromIdx++
		}
		from := "Anywhere"
		if fromIdx < len(fields) {
			from = strings.Join(fields[fromIdx:], " ")
		}

		rules = append(rules, Rule{Target: target, Action: action, From: from})
	}
	return rules
}
