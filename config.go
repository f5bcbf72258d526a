package proxy

import (
	"strings"

	"github.com/roadrunner-server/errors"
)

const (
	headerForwarded       string = "forwarded"
	headerXForwardedFor   string = "x-forwarded-for"
	headerXForwardedHost  string = "x-forwarded-host"
	headerXForwardedProto string = "x-forwarded-proto"
	headerXForwardedBy    string = "x-forwarded-by"
)

type Config struct {
	// TrustedSubnets declare IP subnets (or single addresses) which are allowed to set forwarding headers
	TrustedSubnets []string `mapstructure:"trusted_subnets"`
	// TrustedHeaders declare which forwarding headers are read from trusted subnets
	TrustedHeaders []string `mapstructure:"trusted_headers"`
}

func (c *Config) InitDefaults() {
	if len(c.TrustedHeaders) == 0 {
		c.TrustedHeaders = []string{headerForwarded, headerXForwardedFor}
	}
}

// TrustConfig builds the resolver configuration.
func (c *Config) TrustConfig() (*TrustConfig, error) {
	const op = errors.Op("proxy_ip_parser_trust_config")

	tc := NewTrustConfig()
	for i := 0; i < len(c.TrustedSubnets); i++ {
		err := tc.AddTrustedNetwork(c.TrustedSubnets[i])
		if err != nil {
			return nil, errors.E(op, err)
		}
	}

	for _, h := range c.TrustedHeaders {
		switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), "_", "-") {
		case headerForwarded:
			tc.TrustForwarded()
		case headerXForwardedFor:
			tc.TrustXForwardedFor()
		case headerXForwardedHost:
			tc.TrustXForwardedHost()
		case headerXForwardedProto:
			tc.TrustXForwardedProto()
		case headerXForwardedBy:
			tc.TrustXForwardedBy()
		default:
			return nil, errors.E(op, errors.Str("unsupported trusted header: "+h))
		}
	}

	return tc, nil
}
