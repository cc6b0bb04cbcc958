package config

import "time"

// Site represents a managed virtual host.
type Site struct {
	Domain     string    `yaml:"domain"`
	Type       string    `yaml:"type"` // static, proxy, container, redirect
	Aliases    []string  `yaml:"aliases,omitempty"`
	Root       string    `yaml:"root,omitempty"`
	Upstream   string    `yaml:"upstream,omitempty"`    // proxy target, e.g. http://127.0.0.1:3000
	Container  string    `yaml:"container,omitempty"`   // docker container backing a container site
	RedirectTo string    `yaml:"redirect_to,omitempty"` // target URL for redirect sites
	TLS        bool      `yaml:"tls"`
	TLSCert    string    `yaml:"tls_cert,omitempty"`
	TLSKey     string    `yaml:"tls_key,omitempty"`
	Enabled    bool      `yaml:"enabled"`
	CreatedAt  time.Time `yaml:"created_at"`
}

// Site type constants
const (
	TypeStatic    = "static"
	TypeProxy     = "proxy"
	TypeContainer = "container"
	TypeRedirect  = "redirect"
)

// ValidTypes returns all valid site types
func ValidTypes() []string {
	return []string{TypeStatic, TypeProxy, TypeContainer, TypeRedirect}
}

// IsValidType checks if the given type is valid
func IsValidType(t string) bool {
	for _, valid := range ValidTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// ServerNames returns the domain plus aliases, in declaration order.
func (s *Site) ServerNames() []string {
	names := make([]string, 0, len(s.Aliases)+1)
	names = append(names, s.Domain)
	names = append(names, s.Aliases...)
	return names
}
