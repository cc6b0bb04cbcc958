package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deckhand-sh/deckhand/internal/errors"
	"github.com/deckhand-sh/deckhand/internal/executor"
	"github.com/deckhand-sh/deckhand/internal/logger"
	"github.com/deckhand-sh/deckhand/internal/template"
)

const jailFileName = "deckhand.conf"

// Hardener installs the brute-force protection jails (sshd plus nginx
// auth/botsearch) and reloads fail2ban.
type Hardener struct {
	exec    executor.CommandExecutor
	jailDir string
}

// NewHardener creates a Hardener writing into the given jail.d directory.
func NewHardener(exec executor.CommandExecutor, jailDir string) *Hardener {
	return &Hardener{exec: exec, jailDir: jailDir}
}

// IsInstalled reports whether fail2ban-client is on PATH.
func (h *Hardener) IsInstalled() bool {
	_, err := h.exec.LookPath("fail2ban-client")
	return err == nil
}

// JailPath returns where the jail file is (or would be) written.
func (h *Hardener) JailPath() string {
	return filepath.Join(h.jailDir, jailFileName)
}

// WriteJail writes the jail drop-in. Overwrites a previous version.
func (h *Hardener) WriteJail() (string, error) {
	if h.jailDir == "" {
		return "", errors.Wrap(errors.ErrCodeService, "no fail2ban jail directory on this platform", nil)
	}

	content, err := template.Fail2banJail("jail")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to load jail template", err)
	}

	if err := os.MkdirAll(h.jailDir, 0755); err != nil {
		return "", errors.Wrap(errors.ErrCodeService, "failed to create jail directory", err)
	}

	path := h.JailPath()
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", errors.Wrap(errors.ErrCodeService, "failed to write jail file", err)
	}

	logger.InfoKV("jail file written", "path", path)
	return path, nil
}

// Reload tells fail2ban to pick up the new jails.
func (h *Hardener) Reload() error {
	out, err := h.exec.Execute("fail2ban-client", "reload")
	if err != nil {
		return errors.Wrap(errors.ErrCodeService,
			fmt.Sprintf("failed to reload fail2ban: %s", strings.TrimSpace(string(out))), err)
	}
	return nil
}

// JailStatus returns the names of the active jails.
func (h *Hardener) JailStatus() ([]string, error) {
	out, err := h.exec.Execute("fail2ban-client", "status")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeService, "failed to read fail2ban status", err)
	}

	// `- Jail list:	sshd, nginx-http-auth
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, "Jail list:") {
			continue
		}
		_, list, _ := strings.Cut(line, "Jail list:")
		var jails []string
		for _, j := range strings.Split(list, ",") {
			if j = strings.TrimSpace(j); j != "" {
				jails = append(jails, j)
			}
		}
		return jails, nil
	}
	return nil, nil
}
