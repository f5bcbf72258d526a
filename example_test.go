package proxy_test

import (
	"fmt"
	"net/http"
	"net/netip"

	proxy "github.com/roadrunner-server/proxy_ip_parser/v5"
)

func ExampleResolve() {
	config := proxy.NewLocalTrustConfig()

	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Forwarded", "for=1.2.3.4; proto=https; by=myproxy; host=mydomain.com:8080")

	trusted := proxy.Resolve(netip.MustParseAddr("127.0.0.1"), proxy.FromHTTP(r), config)

	scheme, _ := trusted.Scheme()
	host, _ := trusted.Host()
	port, _ := trusted.Port()
	fmt.Println(scheme, host, port, trusted.IP())
	// Output: https mydomain.com 8080 1.2.3.4
}

func ExampleTrustConfig_AddTrustedNetwork() {
	config := proxy.NewLocalTrustConfig()
	if err := config.AddTrustedNetwork("168.10.0.0/16"); err != nil {
		panic(err)
	}
	config.TrustXForwardedHost()

	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 168.10.4.2")
	r.Header.Set("X-Forwarded-Host", "shop.example.com")

	trusted := proxy.Resolve(netip.MustParseAddr("10.1.1.1"), proxy.FromHTTP(r), config)

	host, _ := trusted.Host()
	fmt.Println(trusted.IP(), host, trusted.Source())
	// Output: 203.0.113.7 shop.example.com x_forwarded_for
}

func ExampleTrustConfig_AddTrustedNetwork_invalid() {
	config := proxy.NewTrustConfig()

	err := config.AddTrustedNetwork("10.0.0.0/40")
	fmt.Println(err != nil)
	// Output: true
}
