// Package dns manages records in the configured zone through a provider
// API, bridges that provider into lego's DNS-01 challenge flow, and checks
// record propagation against the zone's authoritative nameservers.
package dns
