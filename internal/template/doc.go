// Package template renders vhost configuration from templates embedded in
// the binary. Templates are organized per driver (nginx/, caddy/) and per
// site type; container sites share the proxy template since by render time
// the container's published port has already been resolved to an upstream.
package template
