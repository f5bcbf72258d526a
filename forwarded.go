package proxy

import (
	"net/netip"
	"strings"
)

// forwardedHop is one element of a Forwarded header, e.g.
// for=192.0.2.60;proto=https;by=203.0.113.43;host=example.com
type forwardedHop struct {
	host  optional
	proto optional
	by    optional
	// invalid when the element has no for= parameter holding an address
	addr netip.Addr
}

// https://datatracker.ietf.org/doc/html/rfc7239#section-4
// A proxy appends its element after a comma or adds a new header line at the
// end, so the closest hop is the last element of the last line. walkForwarded
// walks elements from there and returns the first one which does not name a
// trusted proxy in its for= parameter. ok is false when every element names a
// trusted proxy.
func walkForwarded(values []string, cfg *TrustConfig) (forwardedHop, bool) {
	elements := splitValues(values, false)
	for i := len(elements) - 1; i >= 0; i-- {
		hop, trusted := parseForwardedElement(elements[i], cfg)
		if trusted {
			continue
		}

		return hop, true
	}

	return forwardedHop{}, false
}

// parseForwardedElement reads the parameters of one element. trusted is
// reported as soon as a for= parameter names a trusted proxy; the element is
// then discarded as a whole, including parameters already read.
func parseForwardedElement(element string, cfg *TrustConfig) (hop forwardedHop, trusted bool) {
	for _, pair := range strings.Split(element, ";") {
		key, value, _ := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		value = unquote(value)

		switch strings.ToLower(key) {
		case "for":
			addr, ok := parseAddr(value)
			if !ok {
				// obfuscated identifiers, "unknown", garbage
				continue
			}

			if cfg.IsTrusted(addr) {
				return forwardedHop{}, true
			}

			hop.addr = addr
		case "proto":
			hop.proto = some(value)
		case "host":
			hop.host = some(value)
		case "by":
			hop.by = some(value)
		}
	}

	return hop, false
}

// walkForwardedFor returns the rightmost X-Forwarded-For address which is not
// a trusted proxy. The walk stops with no address on the first value which is
// not an address.
func walkForwardedFor(values []string, cfg *TrustConfig) (netip.Addr, bool) {
	addrs := splitValues(values, true)
	for i := len(addrs) - 1; i >= 0; i-- {
		addr, ok := parseAddr(addrs[i])
		if !ok {
			return netip.Addr{}, false
		}

		if cfg.IsTrusted(addr) {
			continue
		}

		return addr, true
	}

	return netip.Addr{}, false
}

// lastValue returns the last comma separated value across all header lines.
func lastValue(values []string) optional {
	if len(values) == 0 {
		return optional{}
	}

	last := values[len(values)-1]
	if i := strings.LastIndexByte(last, ','); i >= 0 {
		last = last[i+1:]
	}

	return some(strings.TrimSpace(last))
}

// splitValues flattens header lines into their comma separated values.
func splitValues(values []string, trim bool) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if trim {
				part = strings.TrimSpace(part)
			}
			out = append(out, part)
		}
	}

	return out
}

// unquote trims whitespace then one surrounding quote on each side.
func unquote(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, `"`)
	return strings.TrimSuffix(v, `"`)
}

// parseAddr parses a node address with the port and IPv6 brackets removed:
// 192.0.2.60, 192.0.2.60:8080, [2001:db8:cafe::17], [2001:db8:cafe::17]:4711
// and the unbracketed 2001:db8:cafe::17 seen in X-Forwarded-For.
func parseAddr(v string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(bareAddress(v))
	if err != nil {
		return netip.Addr{}, false
	}

	return normalizeAddr(addr), true
}

func bareAddress(v string) string {
	if rest, ok := strings.CutPrefix(v, "["); ok {
		host, _, _ := strings.Cut(rest, "]")
		return host
	}

	// a single colon is an IPv4 address or a name followed by a port
	if strings.Count(v, ":") == 1 {
		host, _, _ := strings.Cut(v, ":")
		return host
	}

	return v
}
