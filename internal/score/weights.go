package score

import (
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// HostWeights maps lowercase host to a credibility weight in [0, 15].
type HostWeights map[string]int

// For returns the weight for host, zero when absent. Lookup is
// case-insensitive.
func (w HostWeights) For(host string) int {
	if w == nil {
		return 0
	}
	return w[strings.ToLower(host)]
}

// LoadHostWeights reads the host-weight mapping from a YAML (or JSON, which
// YAML subsumes) file. A missing or malformed file degrades to an empty
// mapping; the scoring engine must never fail over configuration.
func LoadHostWeights(path string) HostWeights {
	if path == "" {
		return HostWeights{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Debug().Str("path", path).Err(err).Msg("host weights unavailable, scoring without credibility table")
		return HostWeights{}
	}
	var raw map[string]int
	if err := yaml.Unmarshal(data, &raw); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("host weights malformed, scoring without credibility table")
		return HostWeights{}
	}
	weights := make(HostWeights, len(raw))
	for host, weight := range raw {
		weights[strings.ToLower(host)] = weight
	}
	return weights
}
