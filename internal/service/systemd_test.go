package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	sddbus "github.com/coreos/go-systemd/v22/dbus"

	"github.com/deckhand-sh/deckhand/internal/errors"
	"github.com/deckhand-sh/deckhand/internal/executor"
)

// fakeConn fakes the systemd dbus connection.
type fakeConn struct {
	units         map[string]sddbus.UnitStatus
	restartResult string
	restartErr    error
	restarted     []string
	enabled       []string
}

func (f *fakeConn) ListUnitsByNamesContext(ctx context.Context, units []string) ([]sddbus.UnitStatus, error) {
	var out []sddbus.UnitStatus
	for _, name := range units {
		if u, ok := f.units[name]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeConn) RestartUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error) {
	if f.restartErr != nil {
		return 0, f.restartErr
	}
	f.restarted = append(f.restarted, name)
	result := f.restartResult
	if result == "" {
		result = "done"
	}
	ch <- result
	return 1, nil
}

func (f *fakeConn) EnableUnitFilesContext(ctx context.Context, files []string, runtime bool, force bool) (bool, []sddbus.EnableUnitFileChange, error) {
	f.enabled = append(f.enabled, files...)
	return false, nil, nil
}

func (f *fakeConn) Close() {}

func TestStatusViaDbus(t *testing.T) {
	conn := &fakeConn{units: map[string]sddbus.UnitStatus{
		"nginx.service": {Name: "nginx.service", LoadState: "loaded", ActiveState: "active", SubState: "running"},
	}}
	s := &Supervisor{conn: conn}

	status, err := s.Status(context.Background(), "nginx")
	if err != nil {
		t.Fatal(err)
	}
	if status.ActiveState != "active" || status.SubState != "running" {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestStatusUnknownUnit(t *testing.T) {
	s := &Supervisor{conn: &fakeConn{units: map[string]sddbus.UnitStatus{}}}

	_, err := s.Status(context.Background(), "ghost")
	var opErr *errors.OpError
	if !errors.As(err, &opErr) || opErr.Code != errors.ErrCodeNotFound {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestStatusSystemctlFallback(t *testing.T) {
	mock := &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			return []byte("LoadState=loaded\nActiveState=inactive\nSubState=dead\n"), nil
		},
	}
	s := &Supervisor{exec: mock}

	status, err := s.Status(context.Background(), "nginx")
	if err != nil {
		t.Fatal(err)
	}
	if status.ActiveState != "inactive" || status.LoadState != "loaded" {
		t.Errorf("unexpected status: %+v", status)
	}
	if mock.Calls[0].Name != "systemctl" {
		t.Errorf("expected systemctl fallback, got %s", mock.Calls[0].Name)
	}
}

func TestStatusSystemctlNotFound(t *testing.T) {
	mock := &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			return []byte("LoadState=not-found\nActiveState=inactive\nSubState=dead\n"), nil
		},
	}
	s := &Supervisor{exec: mock}

	_, err := s.Status(context.Background(), "ghost")
	var opErr *errors.OpError
	if !errors.As(err, &opErr) || opErr.Code != errors.ErrCodeNotFound {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestIsActive(t *testing.T) {
	conn := &fakeConn{units: map[string]sddbus.UnitStatus{
		"nginx.service": {Name: "nginx.service", LoadState: "loaded", ActiveState: "active"},
		"caddy.service": {Name: "caddy.service", LoadState: "loaded", ActiveState: "failed"},
	}}
	s := &Supervisor{conn: conn}

	active, err := s.IsActive(context.Background(), "nginx")
	if err != nil || !active {
		t.Errorf("nginx should be active: %v %v", active, err)
	}
	active, err = s.IsActive(context.Background(), "caddy")
	if err != nil || active {
		t.Errorf("caddy should not be active: %v %v", active, err)
	}
}

func TestRestartViaDbus(t *testing.T) {
	conn := &fakeConn{}
	s := &Supervisor{conn: conn}

	if err := s.Restart(context.Background(), "nginx"); err != nil {
		t.Fatal(err)
	}
	if len(conn.restarted) != 1 || conn.restarted[0] != "nginx.service" {
		t.Errorf("unexpected restarts: %v", conn.restarted)
	}
}

func TestRestartJobFailed(t *testing.T) {
	s := &Supervisor{conn: &fakeConn{restartResult: "failed"}}

	err := s.Restart(context.Background(), "nginx")
	if err == nil {
		t.Fatal("expected error for failed job")
	}
	if !strings.Contains(err.Error(), "failed") {
		t.Errorf("error should name the job result: %v", err)
	}
}

func TestRestartSystemctlFallback(t *testing.T) {
	mock := &executor.MockExecutor{}
	s := &Supervisor{exec: mock}

	if err := s.Restart(context.Background(), "nginx"); err != nil {
		t.Fatal(err)
	}
	call := mock.Calls[0]
	if call.Name != "systemctl" || call.Args[0] != "restart" || call.Args[1] != "nginx.service" {
		t.Errorf("unexpected command: %s %v", call.Name, call.Args)
	}
}

func TestRestartSystemctlFailure(t *testing.T) {
	mock := &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			return []byte("Job for nginx.service failed"), fmt.Errorf("exit status 1")
		},
	}
	s := &Supervisor{exec: mock}

	err := s.Restart(context.Background(), "nginx")
	var opErr *errors.OpError
	if !errors.As(err, &opErr) || opErr.Code != errors.ErrCodeService {
		t.Errorf("expected service-coded error, got %v", err)
	}
}

func TestEnable(t *testing.T) {
	conn := &fakeConn{}
	s := &Supervisor{conn: conn}

	if err := s.Enable(context.Background(), "fail2ban"); err != nil {
		t.Fatal(err)
	}
	if len(conn.enabled) != 1 || conn.enabled[0] != "fail2ban.service" {
		t.Errorf("unexpected enables: %v", conn.enabled)
	}
}

func TestLogs(t *testing.T) {
	mock := &executor.MockExecutor{}
	s := &Supervisor{exec: mock}

	if err := s.Logs("nginx", true, 100); err != nil {
		t.Fatal(err)
	}
	call := mock.Calls[0]
	if call.Name != "journalctl" {
		t.Fatalf("expected journalctl, got %s", call.Name)
	}
	joined := strings.Join(call.Args, " ")
	if !strings.Contains(joined, "-u nginx.service") {
		t.Errorf("missing unit arg: %s", joined)
	}
	if !strings.Contains(joined, "-n 100") || !strings.Contains(joined, "-f") {
		t.Errorf("missing line/follow args: %s", joined)
	}
}

func TestNormalizeUnit(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"nginx", "nginx.service"},
		{"nginx.service", "nginx.service"},
		{"docker.socket", "docker.socket"},
	}
	for _, tt := range tests {
		if got := normalizeUnit(tt.in); got != tt.want {
			t.Errorf("normalizeUnit(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
