package proxy

import (
	"net/http"
	"net/netip"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/roadrunner-server/errors"
	"github.com/roadrunner-server/sdk/v4/utils"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	name       string = "proxy_ip_parser"
	configKey  string = "http.trusted_subnets"
	headersKey string = "http.trusted_headers"
)

type Configurer interface {
	// UnmarshalKey takes a single key and unmarshal it into a Struct.
	UnmarshalKey(name string, out any) error
	// Has checks if config section exists.
	Has(name string) bool
}

type Plugin struct {
	cfg     *Config
	log     *zap.Logger
	trusted *TrustConfig
	stats   *statsExporter
	prop    propagation.TextMapPropagator
}

func (p *Plugin) Init(cfg Configurer, l *zap.Logger) error {
	const op = errors.Op("proxy_ip_parser_init")

	if !cfg.Has(configKey) {
		return errors.E(errors.Disabled)
	}

	p.cfg = &Config{}
	err := cfg.UnmarshalKey(configKey, &p.cfg.TrustedSubnets)
	if err != nil {
		return errors.E(op, err)
	}

	if len(p.cfg.TrustedSubnets) == 0 {
		return errors.E(errors.Disabled)
	}

	if cfg.Has(headersKey) {
		err = cfg.UnmarshalKey(headersKey, &p.cfg.TrustedHeaders)
		if err != nil {
			return errors.E(op, err)
		}
	}

	p.cfg.InitDefaults()

	p.trusted, err = p.cfg.TrustConfig()
	if err != nil {
		return errors.E(op, err)
	}

	p.log = &zap.Logger{}
	*p.log = *l

	p.stats = newStatsExporter()
	p.prop = propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})

	p.log.Debug("trusted proxies configured",
		zap.Strings("subnets", p.cfg.TrustedSubnets),
		zap.Strings("headers", p.cfg.TrustedHeaders),
	)

	return nil
}

func (p *Plugin) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if val, ok := r.Context().Value(utils.OtelTracerNameKey).(string); ok {
			tp := trace.SpanFromContext(r.Context()).TracerProvider()
			ctx, span := tp.Tracer(val).Start(r.Context(), name, trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()

			p.prop.Inject(ctx, propagation.HeaderCarrier(r.Header))
			r = r.WithContext(ctx)
		}

		peer, ok := peerAddr(r.RemoteAddr)
		if !ok {
			p.stats.badRemoteAddr.Inc()
			p.log.Warn("unable to parse remote address", zap.String("remote_addr", r.RemoteAddr))
			http.Error(w, "invalid remote address", http.StatusBadRequest)
			return
		}

		t := Resolve(peer, FromHTTP(r), p.trusted)
		p.stats.resolved(t.Source())

		r = r.WithContext(WithTrusted(r.Context(), t))
		switch t.Source() {
		case SourceForwarded, SourceXForwardedFor:
			r.RemoteAddr = t.IP().String()
		}

		if host, ok := t.HostWithPort(); ok {
			r.Host = host
		}

		if ce := p.log.Check(zap.DebugLevel, "client resolved"); ce != nil {
			scheme, _ := t.Scheme()
			by, _ := t.By()
			ce.Write(
				zap.Stringer("peer", peer),
				zap.Stringer("ip", t.IP()),
				zap.String("source", string(t.Source())),
				zap.String("host", r.Host),
				zap.String("scheme", scheme),
				zap.String("by", by),
			)
		}

		next.ServeHTTP(w, r)
	})
}

func (p *Plugin) Name() string {
	return name
}

// MetricsCollector implements the metrics plugin collector interface.
func (p *Plugin) MetricsCollector() []prometheus.Collector {
	return p.stats.collectors()
}

// peerAddr parses RemoteAddr, with or without a port.
func peerAddr(remoteAddr string) (netip.Addr, bool) {
	addrPort, err := netip.ParseAddrPort(remoteAddr)
	if err == nil {
		return normalizeAddr(addrPort.Addr()), true
	}

	addr, err := netip.ParseAddr(remoteAddr)
	if err == nil {
		return normalizeAddr(addr), true
	}

	return netip.Addr{}, false
}
