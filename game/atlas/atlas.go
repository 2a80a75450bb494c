package atlas

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/worldwalk/georoutes/game/engine"
)

var (
	ErrDatasetNotFound = errors.New("borders dataset not found")
	ErrEmptyDataset    = errors.New("borders dataset is empty")
)

// Atlas is the geography data provider: it owns the border adjacency map and
// the master country list. Country names are used verbatim and
// case-sensitively; alias resolution happens upstream, before names reach
// the engine.
type Atlas struct {
	borders   engine.Borders
	countries []string
}

// New wraps an in-memory border map. The map is used as-is, so callers must
// not mutate it afterwards.
func New(borders engine.Borders) *Atlas {
	countries := make([]string, 0, len(borders))
	for country := range borders {
		countries = append(countries, country)
	}
	sort.Strings(countries)

	return &Atlas{borders: borders, countries: countries}
}

// Load reads a borders dataset from a JSON file mapping country name to
// neighbor list.
func Load(path string) (*Atlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
		}
		return nil, fmt.Errorf("failed to read borders dataset: %w", err)
	}

	var borders engine.Borders
	if err := json.Unmarshal(data, &borders); err != nil {
		return nil, fmt.Errorf("failed to parse borders dataset: %w", err)
	}
	if len(borders) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, path)
	}

	return New(borders), nil
}

// Borders returns the raw adjacency map consumed by the engine.
func (a *Atlas) Borders() engine.Borders {
	return a.borders
}

// Countries returns the master country list in sorted order.
func (a *Atlas) Countries() []string {
	return a.countries
}

// Count returns the number of countries in the dataset.
func (a *Atlas) Count() int {
	return len(a.countries)
}

// Has reports whether the dataset knows the given country.
func (a *Atlas) Has(country string) bool {
	_, ok := a.borders[country]
	return ok
}

// Neighbors returns the bordering countries for the given country, or nil if
// it is unknown.
func (a *Atlas) Neighbors(country string) []string {
	return a.borders[country]
}

// WarningKind classifies a data-quality finding.
type WarningKind string

const (
	WarnAsymmetric WarningKind = "asymmetric_edge"
	WarnDangling   WarningKind = "dangling_reference"
	WarnSelfBorder WarningKind = "self_border"
	WarnDuplicate  WarningKind = "duplicate_neighbor"
	WarnIsolated   WarningKind = "isolated_country"
)

// Warning describes a single data-quality issue in the dataset. Warnings are
// advisory: the engine behaves correctly on imperfect data, it just plays
// worse, so loading never fails on them.
type Warning struct {
	Kind     WarningKind
	Country  string
	Neighbor string
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnAsymmetric:
		return fmt.Sprintf("%s lists %s as a neighbor but not vice versa", w.Country, w.Neighbor)
	case WarnDangling:
		return fmt.Sprintf("%s lists unknown country %s as a neighbor", w.Country, w.Neighbor)
	case WarnSelfBorder:
		return fmt.Sprintf("%s lists itself as a neighbor", w.Country)
	case WarnDuplicate:
		return fmt.Sprintf("%s lists %s more than once", w.Country, w.Neighbor)
	case WarnIsolated:
		return fmt.Sprintf("%s has no neighbors", w.Country)
	default:
		return fmt.Sprintf("%s: %s/%s", w.Kind, w.Country, w.Neighbor)
	}
}

// Check audits the dataset and returns every issue found, in country order.
// The border relation is expected to be symmetric; nothing enforces that, so
// asymmetric edges are the most important finding here.
func (a *Atlas) Check() []Warning {
	var warnings []Warning

	for _, country := range a.countries {
		neighbors := a.borders[country]
		if len(neighbors) == 0 {
			warnings = append(warnings, Warning{Kind: WarnIsolated, Country: country})
			continue
		}

		seen := make(map[string]bool, len(neighbors))
		for _, neighbor := range neighbors {
			if neighbor == country {
				warnings = append(warnings, Warning{Kind: WarnSelfBorder, Country: country})
				continue
			}
			if seen[neighbor] {
				warnings = append(warnings, Warning{Kind: WarnDuplicate, Country: country, Neighbor: neighbor})
				continue
			}
			seen[neighbor] = true

			reverse, known := a.borders[neighbor]
			if !known {
				warnings = append(warnings, Warning{Kind: WarnDangling, Country: country, Neighbor: neighbor})
				continue
			}
			if !contains(reverse, country) {
				warnings = append(warnings, Warning{Kind: WarnAsymmetric, Country: country, Neighbor: neighbor})
			}
		}
	}

	return warnings
}

// Components groups countries into connected components, treating edges as
// undirected. Useful for spotting landmasses the route picker should not
// pair across.
func (a *Atlas) Components() [][]string {
	visited := make(map[string]bool, len(a.countries))
	var components [][]string

	for _, root := range a.countries {
		if visited[root] {
			continue
		}

		var component []string
		queue := []string{root}
		visited[root] = true

		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			component = append(component, current)

			for _, neighbor := range a.borders[current] {
				if _, known := a.borders[neighbor]; !known || visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
			// Fold in reverse edges so an asymmetric dataset still groups
			// into sensible landmasses.
			for _, other := range a.countries {
				if !visited[other] && contains(a.borders[other], current) {
					visited[other] = true
					queue = append(queue, other)
				}
			}
		}

		sort.Strings(component)
		components = append(components, component)
	}

	sort.Slice(components, func(i, j int) bool {
		if len(components[i]) != len(components[j]) {
			return len(components[i]) > len(components[j])
		}
		return components[i][0] < components[j][0]
	})
	return components
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
