package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/deckhand-sh/deckhand/internal/config"
)

// Data contains data for rendering vhost templates
type Data struct {
	Domain      string
	ServerNames string // space-separated domain plus aliases
	HostList    string // comma-separated for caddy address lines
	Root        string
	Upstream    string
	RedirectTo  string
	TLS         bool
	TLSCert     string
	TLSKey      string
	ACMEWebroot string
}

// defaultACMEWebroot serves HTTP-01 challenge files during issuance
const defaultACMEWebroot = "/var/www/letsencrypt"

// Render renders a vhost config for the given site and driver
func Render(driverName string, site *config.Site) (string, error) {
	// Container sites proxy to their resolved upstream, same template
	siteType := site.Type
	if siteType == config.TypeContainer {
		siteType = config.TypeProxy
	}

	tmplPath := fmt.Sprintf("%s/%s.tmpl", driverName, siteType)

	fs, err := templateFS(driverName)
	if err != nil {
		return "", err
	}

	content, err := fs.ReadFile(tmplPath)
	if err != nil {
		return "", fmt.Errorf("template not found: %s/%s", driverName, siteType)
	}

	tmpl, err := template.New(siteType).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	names := site.ServerNames()
	data := Data{
		Domain:      site.Domain,
		ServerNames: strings.Join(names, " "),
		HostList:    strings.Join(names, ", "),
		Root:        site.Root,
		Upstream:    site.Upstream,
		RedirectTo:  site.RedirectTo,
		TLS:         site.TLS,
		TLSCert:     site.TLSCert,
		TLSKey:      site.TLSKey,
		ACMEWebroot: defaultACMEWebroot,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}

	return buf.String(), nil
}

// ACMEWebroot returns the webroot directory used for HTTP-01 challenges.
func ACMEWebroot() string {
	return defaultACMEWebroot
}
