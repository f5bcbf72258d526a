package proxy

import (
	"net/http"
	"net/netip"
	"testing"
)

func FuzzParseAddr_RoundTrip(f *testing.F) {
	for _, seed := range []string{
		"192.0.2.60",
		"192.0.2.60:8080",
		"[2001:db8:cafe::17]:4711",
		"[2001:db8:cafe::17]",
		"2001:db8:cafe::17",
		"_hidden",
		"unknown",
		"",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		addr, ok := parseAddr(raw)
		if !ok {
			return
		}

		again, ok := parseAddr(addr.String())
		if !ok {
			t.Fatalf("round-trip parse failed for %q (%q)", raw, addr.String())
		}
		if again != addr {
			t.Fatalf("round-trip mismatch for %q: %v != %v", raw, again, addr)
		}
	})
}

func FuzzResolve(f *testing.F) {
	for _, seed := range []struct {
		fwd, xff, host string
	}{
		{"for=192.0.2.60;proto=https;by=203.0.113.43;host=example.com", "1.1.1.1", "a.com"},
		{`for="[2001:db8:cafe::17]:4711", for=10.0.0.1`, "8.8.8.8, 10.0.0.2", "a.com, b.com:80"},
		{"for=;;;,,,", ",,", ","},
		{`for="`, "[", ":"},
	} {
		f.Add(seed.fwd, seed.xff, seed.host)
	}

	cfg := NewLocalTrustConfig()
	cfg.TrustXForwardedHost()
	cfg.TrustXForwardedProto()
	cfg.TrustXForwardedBy()

	trustedPeer := netip.MustParseAddr("10.0.0.1")
	untrustedPeer := netip.MustParseAddr("203.0.113.1")

	f.Fuzz(func(t *testing.T, fwd, xffValue, host string) {
		p := &RequestParts{
			Host: "origin.example.com",
			Header: http.Header{
				forwarded:       {fwd},
				xff:             {xffValue},
				xForwardedHost:  {host},
				xForwardedProto: {host},
				xForwardedBy:    {host},
			},
		}
		info := p.Information()

		got := Resolve(untrustedPeer, info, cfg)
		if got.IP() != untrustedPeer {
			t.Fatalf("untrusted peer resolved to %v", got.IP())
		}
		if h, _ := got.HostWithPort(); h != "origin.example.com" {
			t.Fatalf("untrusted peer resolved host %q", h)
		}

		got = Resolve(trustedPeer, info, cfg)
		if !got.IP().IsValid() {
			t.Fatalf("invalid address resolved for %q / %q", fwd, xffValue)
		}
		if got.Source() != SourcePeer && cfg.IsTrusted(got.IP()) {
			t.Fatalf("trusted proxy %v resolved as client", got.IP())
		}
		_, _ = got.Port()

		if again := Resolve(trustedPeer, info, cfg); again != got {
			t.Fatalf("resolution is not deterministic: %v != %v", again, got)
		}
	})
}
