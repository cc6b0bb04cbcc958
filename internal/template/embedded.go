package template

import (
	"embed"
	"fmt"
)

//go:embed nginx/*.tmpl
var nginxTemplates embed.FS

//go:embed caddy/*.tmpl
var caddyTemplates embed.FS

//go:embed fail2ban/*.tmpl
var fail2banTemplates embed.FS

// templateFS returns the embed.FS for the given driver
func templateFS(driverName string) (embed.FS, error) {
	switch driverName {
	case "nginx":
		return nginxTemplates, nil
	case "caddy":
		return caddyTemplates, nil
	default:
		return embed.FS{}, fmt.Errorf("unknown driver: %s", driverName)
	}
}

// Fail2banJail returns the raw jail template content by name (e.g. "jail").
func Fail2banJail(name string) ([]byte, error) {
	return fail2banTemplates.ReadFile(fmt.Sprintf("fail2ban/%s.tmpl", name))
}
