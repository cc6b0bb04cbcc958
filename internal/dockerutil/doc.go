// Package dockerutil adapts the docker command line tool: listing running
// containers, resolving published host ports, and restart-policy checks.
// Only existing containers are touched; running them is out of scope.
package dockerutil
