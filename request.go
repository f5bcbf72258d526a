package proxy

import (
	"net/http"
)

const (
	forwarded       string = "Forwarded"
	xff             string = "X-Forwarded-For"
	xForwardedHost  string = "X-Forwarded-Host"
	xForwardedProto string = "X-Forwarded-Proto"
	xForwardedBy    string = "X-Forwarded-By"
)

// RequestInformation is the view of a request needed to resolve trusted data.
//
// Header methods return one entry per received header line, in the order they
// were received, without splitting on commas.
type RequestInformation interface {
	// HostHeaderAllowed reports whether the Host header should be preferred
	// over the URI authority. It is true below HTTP/2.
	HostHeaderAllowed() bool
	HostHeader() (string, bool)
	Authority() (string, bool)
	Scheme() (string, bool)

	Forwarded() []string
	XForwardedFor() []string
	XForwardedHost() []string
	XForwardedProto() []string
	XForwardedBy() []string
}

// defaultHost is the host of the request when no trusted header provides one.
func defaultHost(req RequestInformation) (string, bool) {
	if req.HostHeaderAllowed() {
		if host, ok := req.HostHeader(); ok {
			return host, true
		}
	}

	return req.Authority()
}

func defaultScheme(req RequestInformation) (string, bool) {
	return req.Scheme()
}

// FromHTTP adapts a net/http request.
func FromHTTP(r *http.Request) RequestInformation {
	return httpRequest{r: r}
}

type httpRequest struct {
	r *http.Request
}

func (h httpRequest) HostHeaderAllowed() bool {
	// zero ProtoMajor is a hand built request, treated as HTTP/1.1
	return h.r.ProtoMajor < 2
}

func (h httpRequest) HostHeader() (string, bool) {
	return h.r.Host, h.r.Host != ""
}

func (h httpRequest) Authority() (string, bool) {
	if h.r.URL != nil && h.r.URL.Host != "" {
		return h.r.URL.Host, true
	}

	// the server stores :authority in Host for HTTP/2 requests
	if h.r.ProtoMajor >= 2 && h.r.Host != "" {
		return h.r.Host, true
	}

	return "", false
}

func (h httpRequest) Scheme() (string, bool) {
	if h.r.URL != nil && h.r.URL.Scheme != "" {
		return h.r.URL.Scheme, true
	}

	if h.r.TLS != nil {
		return "https", true
	}

	return "", false
}

func (h httpRequest) Forwarded() []string {
	return h.r.Header.Values(forwarded)
}

func (h httpRequest) XForwardedFor() []string {
	return h.r.Header.Values(xff)
}

func (h httpRequest) XForwardedHost() []string {
	return h.r.Header.Values(xForwardedHost)
}

func (h httpRequest) XForwardedProto() []string {
	return h.r.Header.Values(xForwardedProto)
}

func (h httpRequest) XForwardedBy() []string {
	return h.r.Header.Values(xForwardedBy)
}

// RequestParts carries request data for callers not built on net/http.
// Empty strings are treated as absent.
type RequestParts struct {
	// ProtoMajor is the HTTP major version, 0 is treated as 1.
	ProtoMajor int
	Host       string
	Authority  string
	Scheme     string
	Header     http.Header
}

// Information returns the RequestInformation view of p.
func (p *RequestParts) Information() RequestInformation {
	return partsRequest{p: p}
}

type partsRequest struct {
	p *RequestParts
}

func (r partsRequest) HostHeaderAllowed() bool {
	return r.p.ProtoMajor < 2
}

func (r partsRequest) HostHeader() (string, bool) {
	return r.p.Host, r.p.Host != ""
}

func (r partsRequest) Authority() (string, bool) {
	return r.p.Authority, r.p.Authority != ""
}

func (r partsRequest) Scheme() (string, bool) {
	return r.p.Scheme, r.p.Scheme != ""
}

func (r partsRequest) Forwarded() []string {
	return r.p.Header.Values(forwarded)
}

func (r partsRequest) XForwardedFor() []string {
	return r.p.Header.Values(xff)
}

func (r partsRequest) XForwardedHost() []string {
	return r.p.Header.Values(xForwardedHost)
}

func (r partsRequest) XForwardedProto() []string {
	return r.p.Header.Values(xForwardedProto)
}

func (r partsRequest) XForwardedBy() []string {
	return r.p.Header.Values(xForwardedBy)
}
