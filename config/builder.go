package config

import (
	"sort"

	"github.com/jpalmerr/opwatch"
	"github.com/jpalmerr/opwatch/lrohttp"
)

// BuildClient converts parsed configuration into an SDK [lrohttp.Client].
func BuildClient(cfg *Config) (*lrohttp.Client, error) {
	var opts []lrohttp.ClientOption

	if cfg.RequestTimeout != 0 {
		opts = append(opts, lrohttp.WithRequestTimeout(cfg.RequestTimeout.Duration()))
	}

	if len(cfg.Headers) > 0 {
		opts = append(opts, lrohttp.WithHeaders(mapToKeyValuePairs(cfg.Headers)...))
	}

	return lrohttp.NewClient(cfg.APIBase, opts...)
}

// BuildPolicy converts parsed configuration into an [opwatch.PollPolicy].
func BuildPolicy(cfg *Config) opwatch.PollPolicy {
	jitter := true
	if cfg.Poll.Jitter != nil {
		jitter = *cfg.Poll.Jitter
	}

	timeout := opwatch.NoTimeout
	if !cfg.Poll.Timeout.Unbounded() {
		timeout = cfg.Poll.Timeout.Duration()
	}

	return opwatch.PollPolicy{
		InitialDelay: cfg.Poll.InitialDelay.Duration(),
		MaxDelay:     cfg.Poll.MaxDelay.Duration(),
		Multiplier:   cfg.Poll.Multiplier,
		Jitter:       jitter,
		Timeout:      timeout,
	}
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
