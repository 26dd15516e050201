package main

// up, down, right, left
var neighbourOffsets = [4]Point{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}

// Frontier returns the cells 4-adjacent to any member that are not members
// themselves and lie strictly inside (0, dim) on both axes. The result is
// sorted so that picking by index is reproducible.
func Frontier(members map[Point]struct{}, dim int) []Point {
	seen := make(map[Point]struct{}, 4*len(members))
	frontier := make([]Point, 0, 4*len(members))
	for m := range members {
		for _, off := range neighbourOffsets {
			n := Point{X: m.X + off.X, Y: m.Y + off.Y}
			if !insideGrid(n, dim) {
				continue
			}
			if _, ok := members[n]; ok {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			frontier = append(frontier, n)
		}
	}
	sortPoints(frontier)
	return frontier
}

// boundary cells 0 and dim are never grown into, only seeds may sit there
func insideGrid(p Point, dim int) bool {
	return p.X > 0 && p.X < dim && p.Y > 0 && p.Y < dim
}
