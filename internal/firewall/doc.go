// Package firewall wraps the ufw command line tool: rule management,
// status parsing, and a baseline posture for freshly provisioned hosts.
package firewall
