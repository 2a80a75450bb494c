// Command validate provides a small CLI that validates the borders dataset
// and the route pack JSON files in the ../configs directory. It checks:
//   - JSON structure of the borders dataset
//   - Dataset quality: asymmetric edges, dangling neighbors, self-borders,
//     duplicates, isolated countries
//   - Connected components (routes can only exist within one component)
//   - Route pack structure and par/hint/time bounds
//   - Fixed routes: both countries exist, destination reachable, par within
//     the pack's declared bounds
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/worldwalk/georoutes/game/atlas"
	"github.com/worldwalk/georoutes/game/config"
	"github.com/worldwalk/georoutes/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateBorders loads the dataset and audits it. Warnings are reported as
// information, not errors: an asymmetric or isolated dataset still plays,
// just worse.
func validateBorders(path string) (*atlas.Atlas, ValidationResult) {
	result := ValidationResult{
		File:   filepath.Base(path),
		Valid:  true,
		Errors: []string{},
	}

	world, err := atlas.Load(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to load dataset: %v", err))
		return nil, result
	}

	warnings := world.Check()
	byKind := map[atlas.WarningKind]int{}
	for _, w := range warnings {
		byKind[w.Kind]++
	}

	components := world.Components()
	largest := 0
	if len(components) > 0 {
		largest = len(components[0])
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Countries: %d", world.Count()))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Components: %d (largest: %d)", len(components), largest))

	if len(warnings) == 0 {
		result.Errors = append(result.Errors, "✓ No dataset warnings")
		return world, result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("⚠ Warnings: %d", len(warnings)))
	for _, kind := range []atlas.WarningKind{atlas.WarnAsymmetric, atlas.WarnDangling, atlas.WarnSelfBorder, atlas.WarnDuplicate, atlas.WarnIsolated} {
		if n := byKind[kind]; n > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("⚠ %s: %d", kind, n))
		}
	}

	// Dangling neighbors are the only warning worth failing on: a route can
	// dead-end into a country that does not exist.
	if byKind[atlas.WarnDangling] > 0 {
		result.Valid = false
		for _, w := range warnings {
			if w.Kind == atlas.WarnDangling {
				result.Errors = append(result.Errors, "  "+w.String())
			}
		}
	}

	return world, result
}

// validatePack loads and validates a single route pack JSON file against the
// dataset.
func validatePack(path string, world *atlas.Atlas) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(path),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	pack, err := config.ParsePack(data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid pack: %v", err))
		return result
	}

	playable := 0
	for i, route := range pack.Routes {
		label := fmt.Sprintf("Route %d (%s → %s)", i+1, route.Start, route.End)

		if !world.Has(route.Start) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: unknown country %q", label, route.Start))
			continue
		}
		if !world.Has(route.End) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: unknown country %q", label, route.End))
			continue
		}
		if route.Start == route.End {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: start and end are the same", label))
			continue
		}

		path := engine.FindShortestPath(world.Borders(), route.Start, route.End)
		if path == nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: destination unreachable", label))
			continue
		}

		par := len(path) - 2
		if par < pack.MinPar || par > pack.MaxPar {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: par %d outside pack bounds [%d,%d]", label, par, pack.MinPar, pack.MaxPar))
			continue
		}

		playable++
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", pack.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Par bounds: [%d,%d]", pack.MinPar, pack.MaxPar))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Hints: %d, Time limit: %ds", pack.MaxHints, pack.TimeLimitSeconds))
		if len(pack.Routes) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Fixed routes: %d playable", playable))
		} else {
			result.Errors = append(result.Errors, "✓ Random routes within par bounds")
		}
	}

	return result
}

func printResult(result ValidationResult) bool {
	fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

	if result.Valid {
		fmt.Println("✅ VALID")
		for _, info := range result.Errors {
			fmt.Println("  " + info)
		}
		return true
	}

	fmt.Println("❌ INVALID")
	for _, err := range result.Errors {
		if !strings.HasPrefix(err, "✓") {
			fmt.Println("  ❌ " + err)
		}
	}
	return false
}

// main validates the borders dataset and every pack in the configs
// directory, printing a concise report and exiting with non-zero status if
// anything is invalid.
func main() {
	bordersPath := flag.String("borders", "../data/borders.json", "path to borders dataset")
	packDir := flag.String("packs", "../configs", "directory of route pack JSON files")
	flag.Parse()

	world, bordersResult := validateBorders(*bordersPath)
	allValid := printResult(bordersResult)

	if world != nil {
		files, err := filepath.Glob(filepath.Join(*packDir, "*.json"))
		if err != nil {
			fmt.Printf("Error finding pack files: %v\n", err)
			os.Exit(1)
		}

		for _, file := range files {
			if !printResult(validatePack(file, world)) {
				allValid = false
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ Dataset and packs are valid!")
	} else {
		fmt.Println("❌ Some files have errors")
		os.Exit(1)
	}
}
