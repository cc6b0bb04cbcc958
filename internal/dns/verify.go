package dns

import (
	"context"
	"fmt"
	"strings"

	miekgdns "github.com/miekg/dns"

	"github.com/deckhand-sh/deckhand/internal/logger"
)

// NSResult reports what one authoritative nameserver returned for a record.
type NSResult struct {
	Nameserver string   `json:"nameserver"`
	Found      bool     `json:"found"`
	Values     []string `json:"values,omitempty"`
	Err        string   `json:"error,omitempty"`
}

// Verifier checks record propagation by querying the zone's authoritative
// nameservers directly, bypassing caches.
type Verifier struct {
	resolver string // host:port of the recursive resolver used for NS lookup
	client   *miekgdns.Client

	// exchange is replaceable in tests
	exchange func(ctx context.Context, msg *miekgdns.Msg, addr string) (*miekgdns.Msg, error)
}

// NewVerifier builds a Verifier using the system resolver for NS discovery.
func NewVerifier() *Verifier {
	resolver := "127.0.0.53:53"
	if cfg, err := miekgdns.ClientConfigFromFile("/etc/resolv.conf"); err == nil && len(cfg.Servers) > 0 {
		resolver = cfg.Servers[0] + ":" + cfg.Port
	}

	v := &Verifier{
		resolver: resolver,
		client:   new(miekgdns.Client),
	}
	v.exchange = func(ctx context.Context, msg *miekgdns.Msg, addr string) (*miekgdns.Msg, error) {
		resp, _, err := v.client.ExchangeContext(ctx, msg, addr)
		return resp, err
	}
	return v
}

// Nameservers returns the NS set for a zone.
func (v *Verifier) Nameservers(ctx context.Context, zone string) ([]string, error) {
	msg := new(miekgdns.Msg)
	msg.SetQuestion(miekgdns.Fqdn(zone), miekgdns.TypeNS)

	resp, err := v.exchange(ctx, msg, v.resolver)
	if err != nil {
		return nil, fmt.Errorf("ns lookup for %s: %w", zone, err)
	}

	var servers []string
	for _, ans := range resp.Answer {
		if ns, ok := ans.(*miekgdns.NS); ok {
			servers = append(servers, strings.TrimSuffix(ns.Ns, "."))
		}
	}
	if len(servers) == 0 {
		return nil, fmt.Errorf("no nameservers found for zone %s", zone)
	}
	return servers, nil
}

// Verify queries every authoritative nameserver of the zone for the record
// and reports per-server results. A record is propagated when every server
// returns the expected content.
func (v *Verifier) Verify(ctx context.Context, zone string, rec Record) ([]NSResult, bool, error) {
	servers, err := v.Nameservers(ctx, zone)
	if err != nil {
		return nil, false, err
	}

	fqdn := rec.Name + "." + zone
	if rec.Name == "@" || rec.Name == "" {
		fqdn = zone
	}

	qtype, ok := map[string]uint16{
		"A":     miekgdns.TypeA,
		"AAAA":  miekgdns.TypeAAAA,
		"CNAME": miekgdns.TypeCNAME,
		"TXT":   miekgdns.TypeTXT,
	}[strings.ToUpper(rec.Type)]
	if !ok {
		return nil, false, fmt.Errorf("unsupported record type: %s", rec.Type)
	}

	results := make([]NSResult, 0, len(servers))
	allGood := true

	for _, server := range servers {
		result := NSResult{Nameserver: server}

		msg := new(miekgdns.Msg)
		msg.SetQuestion(miekgdns.Fqdn(fqdn), qtype)
		msg.RecursionDesired = false

		resp, err := v.exchange(ctx, msg, server+":53")
		if err != nil {
			result.Err = err.Error()
			allGood = false
			results = append(results, result)
			continue
		}

		for _, ans := range resp.Answer {
			switch rr := ans.(type) {
			case *miekgdns.A:
				result.Values = append(result.Values, rr.A.String())
			case *miekgdns.AAAA:
				result.Values = append(result.Values, rr.AAAA.String())
			case *miekgdns.CNAME:
				result.Values = append(result.Values, strings.TrimSuffix(rr.Target, "."))
			case *miekgdns.TXT:
				result.Values = append(result.Values, strings.Join(rr.Txt, ""))
			}
		}

		for _, val := range result.Values {
			if val == strings.TrimSuffix(rec.Content, ".") {
				result.Found = true
				break
			}
		}
		if !result.Found {
			allGood = false
		}

		logger.DebugKV("propagation check", "ns", server, "found", result.Found)
		results = append(results, result)
	}

	return results, allGood, nil
}
