package dns

import (
	"context"
	"strings"
	"time"

	"github.com/go-acme/lego/v4/challenge/dns01"

	"github.com/deckhand-sh/deckhand/internal/logger"
)

// challengeTTL is deliberately short; the record only needs to live for
// one validation round trip.
const challengeTTL = 120

// ChallengeProvider bridges a Provider into lego's DNS-01 challenge
// interface. Present writes the _acme-challenge TXT record through the
// provider API; CleanUp removes it again, also when validation failed.
type ChallengeProvider struct {
	provider Provider
	timeout  time.Duration
}

// NewChallengeProvider wraps a record provider for DNS-01 solving.
func NewChallengeProvider(p Provider) *ChallengeProvider {
	return &ChallengeProvider{
		provider: p,
		timeout:  2 * time.Minute,
	}
}

// Present creates the challenge TXT record.
func (c *ChallengeProvider) Present(domain, token, keyAuth string) error {
	info := dns01.GetChallengeInfo(domain, keyAuth)

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	name := c.relativeName(info.EffectiveFQDN)
	logger.InfoKV("presenting dns-01 challenge", "record", name, "zone", c.provider.Zone())

	return c.provider.Set(ctx, Record{
		Type:    "TXT",
		Name:    name,
		Content: info.Value,
		TTL:     challengeTTL,
	})
}

// CleanUp deletes the challenge TXT record.
func (c *ChallengeProvider) CleanUp(domain, token, keyAuth string) error {
	info := dns01.GetChallengeInfo(domain, keyAuth)

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	return c.provider.Delete(ctx, c.relativeName(info.EffectiveFQDN), "TXT")
}

// Timeout tells lego how long to wait for propagation before validating.
func (c *ChallengeProvider) Timeout() (timeout, interval time.Duration) {
	return 5 * time.Minute, 10 * time.Second
}

// relativeName strips the zone suffix and trailing dot from a challenge
// FQDN, since the provider API addresses records relative to the zone.
func (c *ChallengeProvider) relativeName(fqdn string) string {
	name := strings.TrimSuffix(fqdn, ".")
	zone := c.provider.Zone()
	if name == zone {
		return "@"
	}
	return strings.TrimSuffix(name, "."+zone)
}
