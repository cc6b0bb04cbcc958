package dockerutil

import (
	"fmt"
	"testing"

	"github.com/deckhand-sh/deckhand/internal/errors"
	"github.com/deckhand-sh/deckhand/internal/executor"
)

const inspectWebapp = `{
	"Name": "/webapp",
	"State": {"Running": true},
	"HostConfig": {"RestartPolicy": {"Name": "unless-stopped"}},
	"NetworkSettings": {
		"Ports": {
			"8080/tcp": [{"HostIp": "0.0.0.0", "HostPort": "3000"}]
		}
	}
}`

const inspectMultiPort = `{
	"Name": "/multi",
	"State": {"Running": true},
	"HostConfig": {"RestartPolicy": {"Name": ""}},
	"NetworkSettings": {
		"Ports": {
			"8080/tcp": [{"HostIp": "0.0.0.0", "HostPort": "3000"}],
			"9090/tcp": [{"HostIp": "0.0.0.0", "HostPort": "3001"}]
		}
	}
}`

const inspectNoPorts = `{
	"Name": "/isolated",
	"State": {"Running": true},
	"HostConfig": {"RestartPolicy": {"Name": "always"}},
	"NetworkSettings": {"Ports": {"8080/tcp": null}}
}`

func inspectExecutor(output string) *executor.MockExecutor {
	return &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			return []byte(output), nil
		},
	}
}

func TestListRunning(t *testing.T) {
	psOutput := `{"ID":"abc123","Names":"webapp","Image":"ghcr.io/acme/webapp:1.4","Ports":"0.0.0.0:3000->8080/tcp","Status":"Up 2 days"}
{"ID":"def456","Names":"redis","Image":"redis:7","Ports":"","Status":"Up 5 hours"}
`
	c := NewClient(inspectExecutor(psOutput))
	containers, err := c.ListRunning()
	if err != nil {
		t.Fatal(err)
	}
	if len(containers) != 2 {
		t.Fatalf("expected 2 containers, got %d", len(containers))
	}
	if containers[0].Names != "webapp" || containers[0].ID != "abc123" {
		t.Errorf("unexpected container: %+v", containers[0])
	}
}

func TestListRunningDaemonDown(t *testing.T) {
	mock := &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			return []byte("Cannot connect to the Docker daemon"), fmt.Errorf("exit status 1")
		},
	}
	_, err := NewClient(mock).ListRunning()
	if !errors.Is(err, errors.ErrDockerUnavailable) {
		t.Errorf("expected docker-unavailable error, got %v", err)
	}
}

func TestResolvePort(t *testing.T) {
	tests := []struct {
		name          string
		inspect       string
		containerPort string
		want          string
		wantErr       bool
	}{
		{"single port implicit", inspectWebapp, "", "3000", false},
		{"explicit port", inspectWebapp, "8080", "3000", false},
		{"explicit with proto", inspectWebapp, "8080/tcp", "3000", false},
		{"wrong port", inspectWebapp, "9999", "", true},
		{"multiple ports need explicit", inspectMultiPort, "", "", true},
		{"multiple ports explicit", inspectMultiPort, "9090", "3001", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(inspectExecutor(tt.inspect))
			got, err := c.ResolvePort("webapp", tt.containerPort)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ResolvePort() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolvePortNonePublished(t *testing.T) {
	c := NewClient(inspectExecutor(inspectNoPorts))
	_, err := c.ResolvePort("isolated", "")
	if !errors.Is(err, errors.ErrNoPublishedPort) {
		t.Errorf("expected no-published-port error, got %v", err)
	}
}

func TestResolvePortMissingContainer(t *testing.T) {
	mock := &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			return []byte("Error: No such object: ghost"), fmt.Errorf("exit status 1")
		},
	}
	_, err := NewClient(mock).ResolvePort("ghost", "")
	var opErr *errors.OpError
	if !errors.As(err, &opErr) || opErr.Code != errors.ErrCodeNotFound {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestRestartPolicy(t *testing.T) {
	tests := []struct {
		name    string
		inspect string
		want    string
	}{
		{"unless-stopped", inspectWebapp, "unless-stopped"},
		{"empty means no", inspectMultiPort, "no"},
		{"always", inspectNoPorts, "always"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(inspectExecutor(tt.inspect))
			got, err := c.RestartPolicy("webapp")
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("RestartPolicy() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIsRunning(t *testing.T) {
	t.Run("running", func(t *testing.T) {
		running, err := NewClient(inspectExecutor(inspectWebapp)).IsRunning("webapp")
		if err != nil {
			t.Fatal(err)
		}
		if !running {
			t.Error("expected running")
		}
	})

	t.Run("missing container", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				return []byte("Error: No such container: ghost"), fmt.Errorf("exit status 1")
			},
		}
		running, err := NewClient(mock).IsRunning("ghost")
		if err != nil {
			t.Fatalf("missing container should not be an error: %v", err)
		}
		if running {
			t.Error("expected not running")
		}
	})
}

func TestIsAvailable(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		if !NewClient(&executor.MockExecutor{}).IsAvailable() {
			t.Error("expected available")
		}
	})

	t.Run("binary missing", func(t *testing.T) {
		mock := &executor.MockExecutor{
			LookPathFunc: func(file string) (string, error) {
				return "", fmt.Errorf("not found")
			},
		}
		if NewClient(mock).IsAvailable() {
			t.Error("expected unavailable")
		}
	})
}
