// Package service supervises the host daemons the proxy stack depends on:
// systemd unit state and restarts (dbus first, systemctl fallback),
// journal access, and fail2ban hardening.
package service
