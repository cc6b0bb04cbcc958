// Package acme implements the native certificate backend on top of lego.
//
// The issuer keeps its ACME account key and issued certificates under a
// state directory using the letsencrypt live/<domain>/fullchain.pem layout,
// so rendered proxy configs do not care which backend produced a
// certificate. Challenge modes: HTTP-01 against a shared webroot (the proxy
// keeps running), HTTP-01 standalone (issuer binds port 80 itself), and
// DNS-01 through the provider bridge in internal/dns.
package acme
