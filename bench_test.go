package proxy

import (
	"net/http"
	"net/netip"
	"testing"
)

func BenchmarkResolve_UntrustedPeer(b *testing.B) {
	cfg := NewLocalTrustConfig()
	r := &http.Request{Host: "example.com", Header: http.Header{xff: {"1.1.1.1"}}}
	peer := netip.MustParseAddr("8.8.8.8")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if Resolve(peer, FromHTTP(r), cfg).IP() != peer {
			b.Fatal("unexpected address")
		}
	}
}

func BenchmarkResolve_XForwardedFor(b *testing.B) {
	cfg := NewLocalTrustConfig()
	r := &http.Request{Host: "example.com", Header: http.Header{xff: {"1.1.1.1, 10.0.0.2, 10.0.0.3"}}}
	peer := netip.MustParseAddr("10.0.0.1")
	want := netip.MustParseAddr("1.1.1.1")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if Resolve(peer, FromHTTP(r), cfg).IP() != want {
			b.Fatal("unexpected address")
		}
	}
}

func BenchmarkResolve_Forwarded(b *testing.B) {
	cfg := NewLocalTrustConfig()
	r := &http.Request{Host: "example.com", Header: http.Header{
		forwarded: {`for=192.0.2.60;proto=https;host=example.com, for="[fd00::2]:8080";proto=http`},
	}}
	peer := netip.MustParseAddr("10.0.0.1")
	want := netip.MustParseAddr("192.0.2.60")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if Resolve(peer, FromHTTP(r), cfg).IP() != want {
			b.Fatal("unexpected address")
		}
	}
}
