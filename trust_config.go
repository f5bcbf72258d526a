package proxy

import (
	"net/netip"
	"strings"
)

// localNetworks are trusted by NewLocalTrustConfig: loopback and private ranges for IPv4 and IPv6.
var localNetworks = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fd00::/8"),
}

// TrustConfig holds the networks allowed to assert forwarding information and
// the forwarding headers they are allowed to assert.
//
// A TrustConfig is built once, before the first resolution, and is then only
// read. It does no locking, so it must not be modified while requests are
// being resolved against it.
type TrustConfig struct {
	networks []netip.Prefix

	forwarded       bool
	xForwardedFor   bool
	xForwardedHost  bool
	xForwardedProto bool
	xForwardedBy    bool
}

// NewTrustConfig returns a config which trusts no network and no header.
func NewTrustConfig() *TrustConfig {
	return &TrustConfig{}
}

// NewLocalTrustConfig returns a config trusting loopback and private networks,
// with the Forwarded and X-Forwarded-For headers trusted.
func NewLocalTrustConfig() *TrustConfig {
	networks := make([]netip.Prefix, len(localNetworks))
	copy(networks, localNetworks)

	return &TrustConfig{
		networks:      networks,
		forwarded:     true,
		xForwardedFor: true,
	}
}

// AddTrustedNetwork trusts a CIDR (10.0.0.0/8) or a single address (10.0.0.1).
// A single address is stored as a /32 or /128 prefix.
func (c *TrustConfig) AddTrustedNetwork(spec string) error {
	s := strings.TrimSpace(spec)

	prefix, err := netip.ParsePrefix(s)
	if err == nil {
		c.networks = append(c.networks, prefix.Masked())
		return nil
	}

	addr, addrErr := netip.ParseAddr(s)
	if addrErr != nil {
		return &ParseError{Spec: spec, Err: err}
	}

	addr = normalizeAddr(addr)
	c.networks = append(c.networks, netip.PrefixFrom(addr, addr.BitLen()))

	return nil
}

// IsTrusted reports whether addr belongs to one of the trusted networks.
func (c *TrustConfig) IsTrusted(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}

	addr = normalizeAddr(addr)
	for i := 0; i < len(c.networks); i++ {
		if c.networks[i].Contains(addr) {
			return true
		}
	}

	return false
}

// normalizeAddr drops the zone and unmaps IPv4-mapped IPv6 addresses.
// Prefixes never contain zoned addresses.
func normalizeAddr(addr netip.Addr) netip.Addr {
	return addr.WithZone("").Unmap()
}

// TrustedNetworks returns a copy of the trusted networks.
func (c *TrustConfig) TrustedNetworks() []netip.Prefix {
	networks := make([]netip.Prefix, len(c.networks))
	copy(networks, c.networks)
	return networks
}

func (c *TrustConfig) TrustForwarded() {
	c.forwarded = true
}

func (c *TrustConfig) TrustXForwardedFor() {
	c.xForwardedFor = true
}

func (c *TrustConfig) TrustXForwardedHost() {
	c.xForwardedHost = true
}

func (c *TrustConfig) TrustXForwardedProto() {
	c.xForwardedProto = true
}

func (c *TrustConfig) TrustXForwardedBy() {
	c.xForwardedBy = true
}

func (c *TrustConfig) ForwardedTrusted() bool {
	return c.forwarded
}

func (c *TrustConfig) XForwardedForTrusted() bool {
	return c.xForwardedFor
}

func (c *TrustConfig) XForwardedHostTrusted() bool {
	return c.xForwardedHost
}

func (c *TrustConfig) XForwardedProtoTrusted() bool {
	return c.xForwardedProto
}

func (c *TrustConfig) XForwardedByTrusted() bool {
	return c.xForwardedBy
}
