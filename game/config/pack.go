package config

import (
	"encoding/json"
	"fmt"
)

// Route is a fixed start/end pairing inside a pack.
type Route struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RoutePack configures a set of playable routes. A pack either lists fixed
// routes, or sets par bounds for random pairing from the dataset, or both;
// fixed routes are preferred when present.
type RoutePack struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Routes      []Route `json:"routes,omitempty"`

	// Random-selection bounds on the par of a generated route.
	MinPar int `json:"min_par"`
	MaxPar int `json:"max_par"`

	TimeLimitSeconds int `json:"time_limit_seconds"`
	MaxHints         int `json:"max_hints"`
}

// Selection limits that keep generated rounds playable.
const (
	MinAllowedPar = 1
	MaxAllowedPar = 12
	MaxPackHints  = 10
)

// ParsePack decodes and validates a pack from its JSON form.
func ParsePack(data []byte) (*RoutePack, error) {
	var pack RoutePack
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse pack: %w", err)
	}
	if err := ValidatePack(&pack); err != nil {
		return nil, err
	}
	return &pack, nil
}

// ValidatePack validates a route pack for correctness and playability.
func ValidatePack(pack *RoutePack) error {
	if pack == nil {
		return fmt.Errorf("pack validation: pack cannot be nil")
	}
	if pack.Name == "" {
		return fmt.Errorf("pack validation: name is required")
	}
	if pack.Description == "" {
		return fmt.Errorf("pack validation: description is required")
	}

	if len(pack.Routes) == 0 {
		if pack.MinPar < MinAllowedPar || pack.MinPar > MaxAllowedPar {
			return fmt.Errorf("pack validation: min_par must be between %d and %d, got %d",
				MinAllowedPar, MaxAllowedPar, pack.MinPar)
		}
		if pack.MaxPar < pack.MinPar || pack.MaxPar > MaxAllowedPar {
			return fmt.Errorf("pack validation: max_par must be between min_par (%d) and %d, got %d",
				pack.MinPar, MaxAllowedPar, pack.MaxPar)
		}
	}

	for i, route := range pack.Routes {
		if route.Start == "" || route.End == "" {
			return fmt.Errorf("pack validation: route %d must name both start and end", i+1)
		}
		if route.Start == route.End {
			return fmt.Errorf("pack validation: route %d starts and ends at %s", i+1, route.Start)
		}
	}

	if pack.TimeLimitSeconds < 0 {
		return fmt.Errorf("pack validation: time_limit_seconds cannot be negative, got %d", pack.TimeLimitSeconds)
	}
	if pack.MaxHints < 1 || pack.MaxHints > MaxPackHints {
		return fmt.Errorf("pack validation: max_hints must be between 1 and %d, got %d", MaxPackHints, pack.MaxHints)
	}

	return nil
}
