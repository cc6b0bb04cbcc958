// Package config manages the deckhand configuration file and site registry.
//
// Configuration lives at ~/.config/deckhand/config.yaml. Every value can be
// overridden by a DECKHAND_* environment variable; the DNS API token is only
// ever read from the environment so it cannot leak into the YAML file.
//
// The site registry is deckhand's own record of what it manages. The
// authoritative state (rendered proxy configs, certificates, firewall rules)
// always lives with the external tools; the registry exists so commands can
// re-render configs and report drift.
package config
