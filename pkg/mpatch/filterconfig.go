package mpatch

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FilterConfig is the YAML shape callers use to select predicates:
//
//	default: apply
//	predicates:
//	  - kind: comment-only-hunks
//	  - kind: pattern
//	    pattern: "DEBUG"
//	    action: suppress
//	  - kind: max-distance
//	    max-distance: 3
type FilterConfig struct {
	// Default decides changes every predicate abstained on: "apply" (the
	// default) or "suppress".
	Default    string            `yaml:"default"`
	Predicates []PredicateConfig `yaml:"predicates"`
}

// PredicateConfig selects one built-in predicate kind with its parameters.
type PredicateConfig struct {
	Kind        string   `yaml:"kind"`
	Action      string   `yaml:"action"`
	Pattern     string   `yaml:"pattern"`
	Markers     []string `yaml:"markers"`
	MaxDistance int      `yaml:"max-distance"`
}

// ParseFilterConfig decodes a YAML filter configuration into a runnable
// chain.
func ParseFilterConfig(data []byte) (*FilterChain, error) {
	var cfg FilterConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("filter config: %w", err)
	}
	return cfg.Chain()
}

// Chain resolves the configuration into a FilterChain, rejecting unknown
// predicate kinds and actions.
func (cfg *FilterConfig) Chain() (*FilterChain, error) {
	chain := &FilterChain{}
	switch cfg.Default {
	case "", "apply":
		chain.Default = VerdictKeep
	case "suppress":
		chain.Default = VerdictSuppress
	default:
		return nil, fmt.Errorf("filter config: unknown default %q (want apply or suppress)", cfg.Default)
	}

	for i, pc := range cfg.Predicates {
		action, err := parseAction(pc.Action)
		if err != nil {
			return nil, fmt.Errorf("filter config: predicate %d: %w", i, err)
		}
		switch pc.Kind {
		case "comment-lines":
			chain.Predicates = append(chain.Predicates, CommentLinePredicate{Markers: pc.Markers, Action: action})
		case "comment-only-hunks":
			chain.Predicates = append(chain.Predicates, CommentOnlyHunkPredicate{Markers: pc.Markers})
		case "pattern":
			if pc.Pattern == "" {
				return nil, fmt.Errorf("filter config: predicate %d: pattern must not be empty", i)
			}
			chain.Predicates = append(chain.Predicates, PatternPredicate{Pattern: pc.Pattern, Action: action})
		case "max-distance":
			if pc.MaxDistance < 0 {
				return nil, fmt.Errorf("filter config: predicate %d: max-distance must not be negative", i)
			}
			chain.Predicates = append(chain.Predicates, DistancePredicate{MaxDistance: pc.MaxDistance})
		default:
			return nil, fmt.Errorf("filter config: predicate %d: unknown kind %q", i, pc.Kind)
		}
	}
	return chain, nil
}

func parseAction(action string) (Verdict, error) {
	switch action {
	case "", "suppress":
		return VerdictSuppress, nil
	case "apply":
		return VerdictKeep, nil
	default:
		return VerdictAbstain, fmt.Errorf("unknown action %q (want apply or suppress)", action)
	}
}
