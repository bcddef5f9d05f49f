// Package mapcolor instantiates the constraint core for coloring
// planar maps.
//
// A map arrives as an adjacency list from region names to the
// names of the regions they border (how the list gets built,
// from survey data or geometry, is somebody else's problem).
// Coloring assigns each region one color from a palette so that
// no two bordering regions match.  Region names are sorted
// before solving, so the same map always colors the same way.
package mapcolor

import (
	"fmt"
	"sort"

	"github.com/ancientHacker/crux.go/csp"
)

// DefaultPalette holds the six colors maps are colored with when
// the client doesn't pick a palette.
var DefaultPalette = []string{
	"#e31a93", "#ffff00", "#1f78b4", "#33a02c", "#e31a1c", "#ff7f00",
}

/*

Maps

*/

// An Adjacency maps each region name to the names of its
// bordering regions.
type Adjacency map[string][]string

// A Map holds a validated adjacency list plus the palette its
// regions are colored from.  Region names and colors are kept
// sorted, so domains iterate in lexicographic color order and
// solving is deterministic.
type Map struct {
	regions   []string       // sorted region names
	index     map[string]int // region name to 1-based variable
	neighbors [][]string     // per region, sorted and deduped; index 0 unused
	palette   []string       // sorted and deduped
}

// New creates a Map from an adjacency list and a palette.  A nil
// or empty palette means DefaultPalette.  Gives an error if the
// adjacency isn't a well-formed undirected map: every mentioned
// neighbor must itself be a region, no region borders itself,
// and bordering is mutual.
func New(adj Adjacency, palette []string) (*Map, error) {
	if len(adj) == 0 {
		return nil, fmt.Errorf("map has no regions")
	}
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	m := &Map{
		regions: make([]string, 0, len(adj)),
		index:   make(map[string]int, len(adj)),
		palette: sortedUnique(palette),
	}
	for region := range adj {
		m.regions = append(m.regions, region)
	}
	sort.Strings(m.regions)
	for i, region := range m.regions {
		m.index[region] = i + 1 // 1-based indexing
	}
	m.neighbors = make([][]string, len(m.regions)+1)
	for _, region := range m.regions {
		ns := sortedUnique(adj[region])
		for _, n := range ns {
			if n == region {
				return nil, fmt.Errorf("region %q borders itself", region)
			}
			if _, ok := m.index[n]; !ok {
				return nil, fmt.Errorf("region %q borders unknown region %q", region, n)
			}
		}
		m.neighbors[m.index[region]] = ns
	}
	// bordering must be mutual
	for _, region := range m.regions {
		for _, n := range m.neighbors[m.index[region]] {
			if !containsRegion(m.neighbors[m.index[n]], region) {
				return nil, fmt.Errorf("region %q borders %q but not the reverse", region, n)
			}
		}
	}
	return m, nil
}

// Regions returns the map's region names, sorted.
func (m *Map) Regions() []string {
	return append([]string(nil), m.regions...)
}

// Neighbors returns the sorted borders of one region, or nil for
// an unknown region name.
func (m *Map) Neighbors(region string) []string {
	i, ok := m.index[region]
	if !ok {
		return nil
	}
	return append([]string(nil), m.neighbors[i]...)
}

// Palette returns the map's colors, sorted.
func (m *Map) Palette() []string {
	return append([]string(nil), m.palette...)
}

// sortedUnique returns a sorted copy of the strings with
// duplicates removed.
func sortedUnique(strs []string) []string {
	out := append([]string(nil), strs...)
	sort.Strings(out)
	w := 0
	for i, s := range out {
		if i == 0 || s != out[i-1] {
			out[w] = s
			w++
		}
	}
	return out[:w]
}

func containsRegion(sorted []string, region string) bool {
	i := sort.SearchStrings(sorted, region)
	return i < len(sorted) && sorted[i] == region
}

/*

Coloring

*/

// A Result reports the outcome of coloring one map: the region
// to color assignment when a coloring was found, and the
// diagnostic counters for the search either way.
type Result struct {
	Solved      bool              `json:"solved"`
	Colors      map[string]string `json:"colors,omitempty"`
	Assignments int               `json:"assignments"`
	Backtracks  int               `json:"backtracks"`
	ElapsedUs   int64             `json:"elapsedMicroseconds"`
}

// Solve searches for a coloring of the map using the given
// options and reports the Result.  A map that needs more colors
// than the palette holds reports infeasible.
func (m *Map) Solve(opts csp.Options) Result {
	prob := csp.NewProblem(len(m.regions))
	for _, region := range m.regions {
		i := m.index[region]
		prob.SetDomain(i, domainValues(len(m.palette))...)
		for _, n := range m.neighbors[i] {
			if j := m.index[n]; j > i {
				prob.Connect(i, j)
			}
		}
	}
	r := prob.Solve(opts)
	result := Result{
		Solved:      r.Solved,
		Assignments: r.Assignments,
		Backtracks:  r.Backtracks,
		ElapsedUs:   r.Elapsed.Microseconds(),
	}
	if r.Solved {
		result.Colors = make(map[string]string, len(m.regions))
		for _, region := range m.regions {
			result.Colors[region] = m.palette[r.Values[m.index[region]]-1]
		}
	}
	return result
}

// domainValues gives 1..count, the positions in the sorted
// palette.
func domainValues(count int) []int {
	vals := make([]int, count)
	for i := range vals {
		vals[i] = i + 1
	}
	return vals
}
