package service

import (
	"context"
	"fmt"
	"strings"

	sddbus "github.com/coreos/go-systemd/v22/dbus"

	"github.com/deckhand-sh/deckhand/internal/errors"
	"github.com/deckhand-sh/deckhand/internal/executor"
	"github.com/deckhand-sh/deckhand/internal/logger"
)

// UnitStatus describes one systemd unit.
type UnitStatus struct {
	Name        string `json:"name"`
	LoadState   string `json:"load_state"`
	ActiveState string `json:"active_state"`
	SubState    string `json:"sub_state"`
}

// systemdConn is the slice of go-systemd's dbus connection we use.
// Narrowed to an interface so tests can fake the bus.
type systemdConn interface {
	ListUnitsByNamesContext(ctx context.Context, units []string) ([]sddbus.UnitStatus, error)
	RestartUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	EnableUnitFilesContext(ctx context.Context, files []string, runtime bool, force bool) (bool, []sddbus.EnableUnitFileChange, error)
	Close()
}

// Supervisor manages systemd units over dbus, falling back to the
// systemctl binary when the system bus is unreachable (containers,
// macOS with launchd-managed services).
type Supervisor struct {
	exec executor.CommandExecutor
	conn systemdConn
}

// NewSupervisor connects to the systemd system bus when possible.
func NewSupervisor(exec executor.CommandExecutor) *Supervisor {
	s := &Supervisor{exec: exec}
	if conn, err := sddbus.NewSystemConnectionContext(context.Background()); err == nil {
		s.conn = conn
	} else {
		logger.DebugKV("systemd dbus unavailable, using systemctl", "error", err)
	}
	return s
}

// Close releases the dbus connection if one was established.
func (s *Supervisor) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

// Status returns the state of a unit. The ".service" suffix is optional.
func (s *Supervisor) Status(ctx context.Context, unit string) (*UnitStatus, error) {
	unit = normalizeUnit(unit)

	if s.conn != nil {
		units, err := s.conn.ListUnitsByNamesContext(ctx, []string{unit})
		if err != nil {
			return nil, errors.WrapResource(errors.ErrCodeService, unit, "failed to query unit", err)
		}
		if len(units) == 0 {
			return nil, &errors.OpError{Code: errors.ErrCodeNotFound, Message: "unit not found", Resource: unit}
		}
		u := units[0]
		return &UnitStatus{
			Name:        u.Name,
			LoadState:   u.LoadState,
			ActiveState: u.ActiveState,
			SubState:    u.SubState,
		}, nil
	}

	out, err := s.exec.ExecuteContext(ctx, "systemctl", "show", unit,
		"--property=LoadState,ActiveState,SubState", "--no-pager")
	if err != nil {
		return nil, errors.WrapResource(errors.ErrCodeService, unit, "failed to query unit", err)
	}

	status := &UnitStatus{Name: unit}
	for _, line := range strings.Split(string(out), "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), "=")
		if !found {
			continue
		}
		switch key {
		case "LoadState":
			status.LoadState = value
		case "ActiveState":
			status.ActiveState = value
		case "SubState":
			status.SubState = value
		}
	}
	if status.LoadState == "not-found" {
		return nil, &errors.OpError{Code: errors.ErrCodeNotFound, Message: "unit not found", Resource: unit}
	}
	return status, nil
}

// IsActive reports whether the unit is in the active state.
func (s *Supervisor) IsActive(ctx context.Context, unit string) (bool, error) {
	status, err := s.Status(ctx, unit)
	if err != nil {
		return false, err
	}
	return status.ActiveState == "active", nil
}

// Restart restarts a unit and waits for the job to finish.
func (s *Supervisor) Restart(ctx context.Context, unit string) error {
	unit = normalizeUnit(unit)

	if s.conn != nil {
		ch := make(chan string, 1)
		if _, err := s.conn.RestartUnitContext(ctx, unit, "replace", ch); err != nil {
			return errors.WrapResource(errors.ErrCodeService, unit, "failed to restart unit", err)
		}
		select {
		case result := <-ch:
			if result != "done" {
				return errors.WrapResource(errors.ErrCodeService, unit,
					fmt.Sprintf("restart job finished with result %q", result), nil)
			}
		case <-ctx.Done():
			return errors.WrapResource(errors.ErrCodeService, unit, "restart timed out", ctx.Err())
		}
		logger.InfoKV("unit restarted", "unit", unit)
		return nil
	}

	out, err := s.exec.ExecuteContext(ctx, "systemctl", "restart", unit)
	if err != nil {
		return errors.WrapResource(errors.ErrCodeService, unit,
			fmt.Sprintf("failed to restart unit: %s", strings.TrimSpace(string(out))), err)
	}
	return nil
}

// Enable marks a unit to start at boot.
func (s *Supervisor) Enable(ctx context.Context, unit string) error {
	unit = normalizeUnit(unit)

	if s.conn != nil {
		if _, _, err := s.conn.EnableUnitFilesContext(ctx, []string{unit}, false, true); err != nil {
			return errors.WrapResource(errors.ErrCodeService, unit, "failed to enable unit", err)
		}
		return nil
	}

	out, err := s.exec.ExecuteContext(ctx, "systemctl", "enable", unit)
	if err != nil {
		return errors.WrapResource(errors.ErrCodeService, unit,
			fmt.Sprintf("failed to enable unit: %s", strings.TrimSpace(string(out))), err)
	}
	return nil
}

// Logs streams a unit's journal to the terminal. Blocks until the pager
// exits when follow is set.
func (s *Supervisor) Logs(unit string, follow bool, lines int) error {
	unit = normalizeUnit(unit)

	args := []string{"-u", unit, "--no-pager"}
	if lines > 0 {
		args = append(args, "-n", fmt.Sprintf("%d", lines))
	}
	if follow {
		args = append(args, "-f")
	}
	if err := s.exec.ExecuteInteractive("journalctl", args...); err != nil {
		return errors.WrapResource(errors.ErrCodeService, unit, "failed to read journal", err)
	}
	return nil
}

// normalizeUnit appends .service when no unit type suffix is present.
func normalizeUnit(unit string) string {
	if strings.Contains(unit, ".") {
		return unit
	}
	return unit + ".service"
}
