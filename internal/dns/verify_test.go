package dns

import (
	"context"
	"errors"
	"net"
	"testing"

	miekgdns "github.com/miekg/dns"
)

func fakeVerifier(exchange func(ctx context.Context, msg *miekgdns.Msg, addr string) (*miekgdns.Msg, error)) *Verifier {
	return &Verifier{
		resolver: "127.0.0.1:53",
		client:   new(miekgdns.Client),
		exchange: exchange,
	}
}

func nsAnswer(zone string, servers ...string) *miekgdns.Msg {
	msg := new(miekgdns.Msg)
	for _, s := range servers {
		msg.Answer = append(msg.Answer, &miekgdns.NS{
			Hdr: miekgdns.RR_Header{Name: miekgdns.Fqdn(zone), Rrtype: miekgdns.TypeNS},
			Ns:  miekgdns.Fqdn(s),
		})
	}
	return msg
}

func aAnswer(fqdn, ip string) *miekgdns.Msg {
	msg := new(miekgdns.Msg)
	msg.Answer = append(msg.Answer, &miekgdns.A{
		Hdr: miekgdns.RR_Header{Name: miekgdns.Fqdn(fqdn), Rrtype: miekgdns.TypeA},
		A:   net.ParseIP(ip),
	})
	return msg
}

func TestNameservers(t *testing.T) {
	v := fakeVerifier(func(ctx context.Context, msg *miekgdns.Msg, addr string) (*miekgdns.Msg, error) {
		return nsAnswer("example.com", "ns1.example.net", "ns2.example.net"), nil
	})

	servers, err := v.Nameservers(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Nameservers failed: %v", err)
	}
	if len(servers) != 2 || servers[0] != "ns1.example.net" {
		t.Errorf("unexpected servers: %v", servers)
	}
}

func TestNameserversEmpty(t *testing.T) {
	v := fakeVerifier(func(ctx context.Context, msg *miekgdns.Msg, addr string) (*miekgdns.Msg, error) {
		return new(miekgdns.Msg), nil
	})
	if _, err := v.Nameservers(context.Background(), "example.com"); err == nil {
		t.Error("expected error when zone has no NS records")
	}
}

func TestVerifyPropagated(t *testing.T) {
	v := fakeVerifier(func(ctx context.Context, msg *miekgdns.Msg, addr string) (*miekgdns.Msg, error) {
		if msg.Question[0].Qtype == miekgdns.TypeNS {
			return nsAnswer("example.com", "ns1.example.net", "ns2.example.net"), nil
		}
		if msg.RecursionDesired {
			t.Error("authoritative queries must not request recursion")
		}
		return aAnswer("www.example.com", "203.0.113.7"), nil
	})

	rec := Record{Type: "A", Name: "www", Content: "203.0.113.7"}
	results, allGood, err := v.Verify(context.Background(), "example.com", rec)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !allGood {
		t.Error("expected record to be reported as propagated")
	}
	if len(results) != 2 {
		t.Fatalf("expected a result per nameserver, got %d", len(results))
	}
	for _, r := range results {
		if !r.Found {
			t.Errorf("nameserver %s should have found the record", r.Nameserver)
		}
	}
}

func TestVerifyPartialPropagation(t *testing.T) {
	v := fakeVerifier(func(ctx context.Context, msg *miekgdns.Msg, addr string) (*miekgdns.Msg, error) {
		if msg.Question[0].Qtype == miekgdns.TypeNS {
			return nsAnswer("example.com", "ns1.example.net", "ns2.example.net"), nil
		}
		if addr == "ns1.example.net:53" {
			return aAnswer("www.example.com", "203.0.113.7"), nil
		}
		// ns2 still serves the stale address
		return aAnswer("www.example.com", "198.51.100.1"), nil
	})

	rec := Record{Type: "A", Name: "www", Content: "203.0.113.7"}
	results, allGood, err := v.Verify(context.Background(), "example.com", rec)
	if err != nil {
		t.Fatal(err)
	}
	if allGood {
		t.Error("partial propagation must not report allGood")
	}
	found := 0
	for _, r := range results {
		if r.Found {
			found++
		}
	}
	if found != 1 {
		t.Errorf("expected exactly one server with the record, got %d", found)
	}
}

func TestVerifyServerUnreachable(t *testing.T) {
	v := fakeVerifier(func(ctx context.Context, msg *miekgdns.Msg, addr string) (*miekgdns.Msg, error) {
		if msg.Question[0].Qtype == miekgdns.TypeNS {
			return nsAnswer("example.com", "ns1.example.net"), nil
		}
		return nil, errors.New("i/o timeout")
	})

	results, allGood, err := v.Verify(context.Background(), "example.com", Record{Type: "A", Name: "www", Content: "203.0.113.7"})
	if err != nil {
		t.Fatal(err)
	}
	if allGood {
		t.Error("unreachable server must not report allGood")
	}
	if results[0].Err == "" {
		t.Error("expected per-server error to be recorded")
	}
}

func TestVerifyApexAndTXT(t *testing.T) {
	var queried string
	v := fakeVerifier(func(ctx context.Context, msg *miekgdns.Msg, addr string) (*miekgdns.Msg, error) {
		if msg.Question[0].Qtype == miekgdns.TypeNS {
			return nsAnswer("example.com", "ns1.example.net"), nil
		}
		queried = msg.Question[0].Name
		resp := new(miekgdns.Msg)
		resp.Answer = append(resp.Answer, &miekgdns.TXT{
			Hdr: miekgdns.RR_Header{Name: msg.Question[0].Name, Rrtype: miekgdns.TypeTXT},
			Txt: []string{"v=spf1 ", "-all"},
		})
		return resp, nil
	})

	rec := Record{Type: "TXT", Name: "@", Content: "v=spf1 -all"}
	_, allGood, err := v.Verify(context.Background(), "example.com", rec)
	if err != nil {
		t.Fatal(err)
	}
	if queried != "example.com." {
		t.Errorf("apex record should query the zone itself, queried %s", queried)
	}
	if !allGood {
		t.Error("split TXT strings should be joined before comparison")
	}
}

func TestVerifyUnsupportedType(t *testing.T) {
	v := fakeVerifier(func(ctx context.Context, msg *miekgdns.Msg, addr string) (*miekgdns.Msg, error) {
		return nsAnswer("example.com", "ns1.example.net"), nil
	})
	if _, _, err := v.Verify(context.Background(), "example.com", Record{Type: "MX", Name: "@", Content: "mail"}); err == nil {
		t.Error("expected error for unsupported record type")
	}
}
