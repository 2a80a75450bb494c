// Command analyze prints quick, human-readable heuristics about the borders
// dataset and the route packs in the configs directory. It summarizes country
// counts, border-degree distribution, connected components, and the par
// spread available to the route picker, and highlights fixed routes that are
// unreachable or unusually long.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/worldwalk/georoutes/game/atlas"
	"github.com/worldwalk/georoutes/game/config"
	"github.com/worldwalk/georoutes/game/engine"
)

func main() {
	bordersPath := flag.String("borders", "data/borders.json", "path to borders dataset")
	packDir := flag.String("packs", "configs", "directory of route pack JSON files")
	flag.Parse()

	fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(*bordersPath))
	world := analyzeDataset(*bordersPath)
	if world == nil {
		return
	}

	files, err := filepath.Glob(filepath.Join(*packDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding pack files: %v\n", err)
		return
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzePack(file, world)
	}
}

func analyzeDataset(path string) *atlas.Atlas {
	world, err := atlas.Load(path)
	if err != nil {
		fmt.Printf("Error loading dataset: %v\n", err)
		return nil
	}

	fmt.Printf("Countries: %d\n", world.Count())

	minDeg, maxDeg, avgDeg := degreeStats(world)
	fmt.Printf("Borders per country: min %d, max %d, avg %.1f\n", minDeg, maxDeg, avgDeg)

	fmt.Println("Most connected:")
	for _, country := range topConnected(world, 5) {
		fmt.Printf("   %s (%d borders)\n", country, len(world.Neighbors(country)))
	}

	components := world.Components()
	fmt.Printf("Connected components: %d\n", len(components))
	for i, component := range components {
		if i >= 5 {
			fmt.Printf("   ... and %d more\n", len(components)-5)
			break
		}
		fmt.Printf("   %d countries (e.g. %s)\n", len(component), component[0])
	}

	histogram := parHistogram(world)
	if len(histogram) > 0 {
		fmt.Println("Par distribution over reachable pairs:")
		pars := make([]int, 0, len(histogram))
		for par := range histogram {
			pars = append(pars, par)
		}
		sort.Ints(pars)
		for _, par := range pars {
			fmt.Printf("   par %2d: %d pairs\n", par, histogram[par])
		}
	}

	return world
}

func analyzePack(path string, world *atlas.Atlas) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	pack, err := config.ParsePack(data)
	if err != nil {
		fmt.Printf("Error parsing pack: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", pack.Name)
	fmt.Printf("Max Hints: %d\n", pack.MaxHints)
	if pack.TimeLimitSeconds > 0 {
		fmt.Printf("Time Limit: %ds\n", pack.TimeLimitSeconds)
	} else {
		fmt.Println("Time Limit: none")
	}

	if len(pack.Routes) == 0 {
		candidates := 0
		for par, count := range parHistogram(world) {
			if par >= pack.MinPar && par <= pack.MaxPar {
				candidates += count
			}
		}
		fmt.Printf("Random routes, par %d-%d: %d candidate pairs\n", pack.MinPar, pack.MaxPar, candidates)
		if candidates == 0 {
			fmt.Println("⚠️  WARNING: no country pair in the dataset fits the par bounds!")
		}
		return
	}

	fmt.Printf("Fixed routes: %d\n", len(pack.Routes))
	for i, route := range pack.Routes {
		path := engine.FindShortestPath(world.Borders(), route.Start, route.End)
		if path == nil {
			fmt.Printf("   ⚠️  %d. %s → %s: unreachable!\n", i+1, route.Start, route.End)
			continue
		}
		fmt.Printf("   %d. %s → %s (par %d)\n", i+1, route.Start, route.End, len(path)-2)
	}
}

// degreeStats reports the minimum, maximum, and average number of borders
// per country.
func degreeStats(world *atlas.Atlas) (minDeg, maxDeg int, avgDeg float64) {
	countries := world.Countries()
	if len(countries) == 0 {
		return 0, 0, 0
	}

	minDeg = len(world.Neighbors(countries[0]))
	total := 0
	for _, country := range countries {
		deg := len(world.Neighbors(country))
		total += deg
		if deg < minDeg {
			minDeg = deg
		}
		if deg > maxDeg {
			maxDeg = deg
		}
	}
	return minDeg, maxDeg, float64(total) / float64(len(countries))
}

// topConnected returns up to n countries sorted by border count, most
// connected first. Ties break alphabetically.
func topConnected(world *atlas.Atlas, n int) []string {
	countries := world.Countries()
	sort.Slice(countries, func(i, j int) bool {
		di, dj := len(world.Neighbors(countries[i])), len(world.Neighbors(countries[j]))
		if di != dj {
			return di > dj
		}
		return countries[i] < countries[j]
	})
	if n > len(countries) {
		n = len(countries)
	}
	return countries[:n]
}

// parHistogram counts unordered reachable country pairs by par, the number
// of intermediate countries on the shortest route between them.
func parHistogram(world *atlas.Atlas) map[int]int {
	histogram := make(map[int]int)
	for _, start := range world.Countries() {
		for end, dist := range bfsDistances(world, start) {
			if end <= start || dist < 1 {
				continue
			}
			histogram[dist-1]++
		}
	}
	return histogram
}

// bfsDistances returns the hop count from start to every reachable country.
func bfsDistances(world *atlas.Atlas, start string) map[string]int {
	dist := map[string]int{start: 0}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range world.Neighbors(current) {
			if !world.Has(neighbor) {
				continue
			}
			if _, seen := dist[neighbor]; seen {
				continue
			}
			dist[neighbor] = dist[current] + 1
			queue = append(queue, neighbor)
		}
	}
	return dist
}
