package proxy

import (
	"net/netip"
	"strconv"
	"strings"
)

// IPSource tells where the resolved client address comes from.
type IPSource string

const (
	// SourceUntrustedPeer is the peer address of a peer which is not a trusted
	// proxy. Headers were not read.
	SourceUntrustedPeer IPSource = "untrusted_peer"
	// SourcePeer is the address of a trusted peer when no trusted header named a client.
	SourcePeer          IPSource = "peer"
	SourceForwarded     IPSource = "forwarded"
	SourceXForwardedFor IPSource = "x_forwarded_for"
)

type optional struct {
	value string
	ok    bool
}

func some(v string) optional {
	return optional{value: v, ok: true}
}

func optionalOf(v string, ok bool) optional {
	return optional{value: v, ok: ok}
}

func (o optional) get() (string, bool) {
	return o.value, o.ok
}

// Trusted is the client information of a request, given a TrustConfig.
//
// Values held by Trusted only come from the request itself or from headers
// set by trusted proxies.
type Trusted struct {
	host   optional
	scheme optional
	by     optional
	ip     netip.Addr
	source IPSource
}

// Resolve computes the trusted client information of req, received from peer.
//
// Headers are only read when peer is a trusted proxy and the header itself is
// trusted by cfg. The Forwarded header is read first, then X-Forwarded-For for
// the address and the other X-Forwarded-* headers for the fields still missing.
// Whatever remains unknown falls back to the request host and scheme and to the
// peer address. Malformed header values are skipped, Resolve never fails.
func Resolve(peer netip.Addr, req RequestInformation, cfg *TrustConfig) Trusted {
	peer = normalizeAddr(peer)

	if !cfg.IsTrusted(peer) {
		// headers may have been forged by the peer itself
		return Trusted{
			host:   optionalOf(defaultHost(req)),
			scheme: optionalOf(defaultScheme(req)),
			ip:     peer,
			source: SourceUntrustedPeer,
		}
	}

	var t Trusted

	if cfg.forwarded {
		if hop, ok := walkForwarded(req.Forwarded(), cfg); ok {
			t.host = hop.host
			t.scheme = hop.proto
			t.by = hop.by
			if hop.addr.IsValid() {
				t.ip = hop.addr
				t.source = SourceForwarded
			}
		}
	}

	if !t.ip.IsValid() && cfg.xForwardedFor {
		if addr, ok := walkForwardedFor(req.XForwardedFor(), cfg); ok {
			t.ip = addr
			t.source = SourceXForwardedFor
		}
	}

	if !t.host.ok && cfg.xForwardedHost {
		t.host = lastValue(req.XForwardedHost())
	}

	if !t.scheme.ok && cfg.xForwardedProto {
		t.scheme = lastValue(req.XForwardedProto())
	}

	if !t.by.ok && cfg.xForwardedBy {
		t.by = lastValue(req.XForwardedBy())
	}

	if !t.host.ok {
		t.host = optionalOf(defaultHost(req))
	}

	if !t.scheme.ok {
		t.scheme = optionalOf(defaultScheme(req))
	}

	if !t.ip.IsValid() {
		t.ip = peer
		t.source = SourcePeer
	}

	return t
}

// Scheme of the request, e.g. https.
func (t Trusted) Scheme() (string, bool) {
	return t.scheme.get()
}

// HostWithPort returns the host of the request, with its port when one was given.
func (t Trusted) HostWithPort() (string, bool) {
	return t.host.get()
}

// Host returns the host of the request without the port.
func (t Trusted) Host() (string, bool) {
	host, ok := t.host.get()
	if !ok {
		return "", false
	}

	host, _ = splitHostPort(host)
	return host, true
}

// Port returns the port given with the host, if any.
func (t Trusted) Port() (uint16, bool) {
	host, ok := t.host.get()
	if !ok {
		return 0, false
	}

	_, port := splitHostPort(host)
	if port == "" {
		return 0, false
	}

	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return 0, false
	}

	return uint16(p), true
}

// By identifies the proxy which received the request from the client.
func (t Trusted) By() (string, bool) {
	return t.by.get()
}

// IP is the first untrusted address on the way back from the peer, which
// should be the real client address in most cases.
func (t Trusted) IP() netip.Addr {
	return t.ip
}

func (t Trusted) Source() IPSource {
	return t.source
}

func (t Trusted) String() string {
	var sb strings.Builder
	sb.WriteString("ip=")
	sb.WriteString(t.ip.String())
	if host, ok := t.host.get(); ok {
		sb.WriteString(" host=")
		sb.WriteString(host)
	}
	if scheme, ok := t.scheme.get(); ok {
		sb.WriteString(" scheme=")
		sb.WriteString(scheme)
	}
	if by, ok := t.by.get(); ok {
		sb.WriteString(" by=")
		sb.WriteString(by)
	}
	sb.WriteString(" source=")
	sb.WriteString(string(t.source))

	return sb.String()
}

// splitHostPort splits example.com:8080 and [2001:db8::1]:8080. Unlike
// net.SplitHostPort it accepts a missing port.
func splitHostPort(hostport string) (host, port string) {
	if strings.HasPrefix(hostport, "[") {
		end := strings.IndexByte(hostport, ']')
		if end < 0 {
			return hostport, ""
		}

		host = hostport[:end+1]
		port, _ = strings.CutPrefix(hostport[end+1:], ":")
		return host, port
	}

	host, port, _ = strings.Cut(hostport, ":")
	// the port is the segment after the first colon only
	port, _, _ = strings.Cut(port, ":")
	return host, port
}
