package doctor

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// ResolverCheck verifies DNS resolution works for the configured domains.
// The DNS timing sub-probe needs at least one of them to resolve.
type ResolverCheck struct {
	Domains []string

	// lookup is swapped out in tests.
	lookup func(ctx context.Context, domain string) error
}

// NewResolverCheck builds a check using the system resolver.
func NewResolverCheck(domains []string) *ResolverCheck {
	return &ResolverCheck{
		Domains: domains,
		lookup: func(ctx context.Context, domain string) error {
			_, err := net.DefaultResolver.LookupHost(ctx, domain)
			return err
		},
	}
}

func (c *ResolverCheck) Name() string     { return "dns_resolution" }
func (c *ResolverCheck) Category() string { return "NETWORK" }

func (c *ResolverCheck) Run() CheckResult {
	if len(c.Domains) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No DNS domains configured",
			Suggestion: "Add domains under probes.dns_domains in .hostbench.yaml",
		}
	}

	var failed []string
	for _, domain := range c.Domains {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := c.lookup(ctx, domain)
		cancel()
		if err != nil {
			failed = append(failed, domain)
		}
	}

	switch {
	case len(failed) == 0:
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("All %d DNS domains resolve", len(c.Domains)),
		}
	case len(failed) < len(c.Domains):
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Some DNS domains don't resolve: " + strings.Join(failed, ", "),
			Suggestion: "The DNS sub-probe averages over the domains that do resolve.",
		}
	default:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "No DNS domains resolve",
			Suggestion: "Check /etc/resolv.conf and outbound connectivity.",
		}
	}
}
