package engine

// FindShortestPath returns the shortest sequence of countries connecting
// start to end, inclusive of both endpoints, or nil when no path exists.
//
// The search is a plain breadth-first walk over the unweighted border graph.
// Parent pointers are tracked instead of whole path prefixes, and the path is
// reconstructed once the destination is reached; because neighbors are
// expanded in adjacency-list order, the returned path matches what a
// prefix-queue BFS would produce. Among multiple shortest paths the winner is
// therefore determined by neighbor ordering in the dataset; callers that
// need a stable "canonical" route must canonicalize the dataset first.
func FindShortestPath(borders Borders, start, end string) []string {
	if start == end {
		return []string{start}
	}

	visited := map[string]bool{start: true}
	parent := make(map[string]string)
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range borders[current] {
			if visited[neighbor] {
				continue
			}
			visited[neighbor] = true
			parent[neighbor] = current

			if neighbor == end {
				return reconstructPath(parent, start, end)
			}
			queue = append(queue, neighbor)
		}
	}

	return nil
}

// reconstructPath walks parent pointers back from end to start and reverses
// the result.
func reconstructPath(parent map[string]string, start, end string) []string {
	path := []string{end}
	for current := end; current != start; {
		current = parent[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// DivergenceIndex returns the length of the longest common prefix of the
// player's path and the optimal path. A player whose path is a strict prefix
// of the optimal path has divergence index equal to their path length.
func DivergenceIndex(currentPath, optimalPath []string) int {
	n := 0
	for n < len(currentPath) && n < len(optimalPath) && currentPath[n] == optimalPath[n] {
		n++
	}
	return n
}
