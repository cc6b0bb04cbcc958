package dockerutil

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deckhand-sh/deckhand/internal/errors"
	"github.com/deckhand-sh/deckhand/internal/executor"
	"github.com/deckhand-sh/deckhand/internal/logger"
)

// Container is one row from docker ps.
type Container struct {
	ID     string `json:"ID"`
	Names  string `json:"Names"`
	Image  string `json:"Image"`
	Ports  string `json:"Ports"`
	Status string `json:"Status"`
}

// PortBinding is a container port published on the host.
type PortBinding struct {
	ContainerPort string `json:"container_port"` // "8080/tcp"
	HostIP        string `json:"host_ip"`
	HostPort      string `json:"host_port"`
}

// Client drives the docker command line tool.
type Client struct {
	exec executor.CommandExecutor
}

// NewClient creates a docker adapter using the given executor.
func NewClient(exec executor.CommandExecutor) *Client {
	return &Client{exec: exec}
}

// IsAvailable reports whether the docker binary exists and the daemon answers.
func (c *Client) IsAvailable() bool {
	if _, err := c.exec.LookPath("docker"); err != nil {
		return false
	}
	_, err := c.exec.Execute("docker", "version", "--format", "{{.Server.Version}}")
	return err == nil
}

// ListRunning returns the running containers.
func (c *Client) ListRunning() ([]Container, error) {
	out, err := c.exec.Execute("docker", "ps", "--format", "{{json .}}")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDocker, "failed to list containers", errors.ErrDockerUnavailable)
	}

	var containers []Container
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		var ct Container
		if err := json.Unmarshal([]byte(line), &ct); err != nil {
			logger.WarnKV("skipping unparseable ps line", "error", err)
			continue
		}
		containers = append(containers, ct)
	}
	return containers, nil
}

// inspectInfo carries the fields we care about from docker inspect.
type inspectInfo struct {
	Name  string `json:"Name"`
	State struct {
		Running bool `json:"Running"`
	} `json:"State"`
	HostConfig struct {
		RestartPolicy struct {
			Name string `json:"Name"`
		} `json:"RestartPolicy"`
	} `json:"HostConfig"`
	NetworkSettings struct {
		Ports map[string][]struct {
			HostIP   string `json:"HostIp"`
			HostPort string `json:"HostPort"`
		} `json:"Ports"`
	} `json:"NetworkSettings"`
}

func (c *Client) inspect(container string) (*inspectInfo, error) {
	out, err := c.exec.Execute("docker", "inspect", "--format", "{{json .}}", container)
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if strings.Contains(msg, "No such object") || strings.Contains(msg, "No such container") {
			return nil, &errors.OpError{Code: errors.ErrCodeNotFound, Message: "container not found", Resource: container}
		}
		return nil, errors.WrapResource(errors.ErrCodeDocker, container, "failed to inspect container", err)
	}

	var info inspectInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, errors.WrapResource(errors.ErrCodeDocker, container, "failed to parse inspect output", err)
	}
	return &info, nil
}

// PublishedPorts returns the host port bindings of a container.
func (c *Client) PublishedPorts(container string) ([]PortBinding, error) {
	info, err := c.inspect(container)
	if err != nil {
		return nil, err
	}

	var bindings []PortBinding
	for port, hosts := range info.NetworkSettings.Ports {
		for _, h := range hosts {
			if h.HostPort == "" {
				continue
			}
			bindings = append(bindings, PortBinding{
				ContainerPort: port,
				HostIP:        h.HostIP,
				HostPort:      h.HostPort,
			})
		}
	}
	return bindings, nil
}

// ResolvePort finds the host port a container publishes. When containerPort
// is empty the container must publish exactly one port; otherwise the
// binding for that container port ("8080" or "8080/tcp") is returned.
func (c *Client) ResolvePort(container, containerPort string) (string, error) {
	bindings, err := c.PublishedPorts(container)
	if err != nil {
		return "", err
	}
	if len(bindings) == 0 {
		return "", errors.WrapResource(errors.ErrCodeDocker, container,
			"container publishes no ports; restart it with -p <host>:<container>", errors.ErrNoPublishedPort)
	}

	if containerPort == "" {
		if len(bindings) > 1 {
			return "", errors.Validation(fmt.Sprintf("container %s publishes %d ports; pass the container port explicitly", container, len(bindings)))
		}
		return bindings[0].HostPort, nil
	}

	if !strings.Contains(containerPort, "/") {
		containerPort += "/tcp"
	}
	for _, b := range bindings {
		if b.ContainerPort == containerPort {
			return b.HostPort, nil
		}
	}
	return "", &errors.OpError{Code: errors.ErrCodeNotFound, Message: "container does not publish that port", Resource: containerPort}
}

// RestartPolicy returns the container's restart policy name ("no",
// "always", "unless-stopped", "on-failure").
func (c *Client) RestartPolicy(container string) (string, error) {
	info, err := c.inspect(container)
	if err != nil {
		return "", err
	}
	policy := info.HostConfig.RestartPolicy.Name
	if policy == "" {
		policy = "no"
	}
	return policy, nil
}

// IsRunning reports whether the container exists and is running.
func (c *Client) IsRunning(container string) (bool, error) {
	info, err := c.inspect(container)
	if err != nil {
		var opErr *errors.OpError
		if errors.As(err, &opErr) && opErr.Code == errors.ErrCodeNotFound {
			return false, nil
		}
		return false, err
	}
	return info.State.Running, nil
}
