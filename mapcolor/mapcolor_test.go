package mapcolor

import (
	"reflect"
	"sort"
	"testing"

	"github.com/ancientHacker/crux.go/csp"
)

/*

Test Maps

*/

// australiaAdjacency is the usual textbook map: the mainland
// states and territories of Australia, plus unbordered Tasmania.
var australiaAdjacency = Adjacency{
	"Western Australia":            {"Northern Territory", "South Australia"},
	"Northern Territory":           {"Western Australia", "South Australia", "Queensland"},
	"South Australia":              {"Western Australia", "Northern Territory", "Queensland", "New South Wales", "Victoria"},
	"Queensland":                   {"Northern Territory", "South Australia", "New South Wales"},
	"New South Wales":              {"Queensland", "South Australia", "Victoria", "Australian Capital Territory"},
	"Victoria":                     {"South Australia", "New South Wales"},
	"Tasmania":                     {},
	"Australian Capital Territory": {"New South Wales"},
}

// diamondAdjacency is a four-region cycle with one chord, so it
// needs three colors.
var diamondAdjacency = Adjacency{
	"east":  {"north", "south"},
	"north": {"east", "west", "south"},
	"south": {"north", "east", "west"},
	"west":  {"north", "south"},
}

var allOptions = []csp.Options{
	{Selector: csp.StaticOrder, ForwardCheck: false},
	{Selector: csp.StaticOrder, ForwardCheck: true},
	{Selector: csp.MinRemaining, ForwardCheck: false},
	{Selector: csp.MinRemaining, ForwardCheck: true},
}

// checkColoring verifies no two bordering regions share a color
// and every color comes from the palette.
func checkColoring(t *testing.T, m *Map, colors map[string]string) {
	t.Helper()
	if len(colors) != len(m.Regions()) {
		t.Fatalf("coloring has %d regions, map has %d", len(colors), len(m.Regions()))
	}
	palette := m.Palette()
	for _, region := range m.Regions() {
		color := colors[region]
		if i := sort.SearchStrings(palette, color); i >= len(palette) || palette[i] != color {
			t.Errorf("region %q got color %q, not in the palette", region, color)
		}
		for _, n := range m.Neighbors(region) {
			if colors[n] == color {
				t.Errorf("bordering regions %q and %q share color %q", region, n, color)
			}
		}
	}
}

/*

construction

*/

func TestNewValidMap(t *testing.T) {
	m, e := New(australiaAdjacency, nil)
	if e != nil {
		t.Fatalf("Failed to create map: %v", e)
	}
	if got := len(m.Regions()); got != len(australiaAdjacency) {
		t.Errorf("map has %d regions, want %d", got, len(australiaAdjacency))
	}
	if !sort.StringsAreSorted(m.Regions()) {
		t.Errorf("region names aren't sorted: %v", m.Regions())
	}
	if !sort.StringsAreSorted(m.Palette()) {
		t.Errorf("palette isn't sorted: %v", m.Palette())
	}
	if len(m.Palette()) != len(DefaultPalette) {
		t.Errorf("nil palette didn't default: %v", m.Palette())
	}
	ns := m.Neighbors("South Australia")
	if len(ns) != 5 || !sort.StringsAreSorted(ns) {
		t.Errorf("bad neighbor list: %v", ns)
	}
	if m.Neighbors("Atlantis") != nil {
		t.Errorf("unknown region has neighbors")
	}
}

func TestNewDedupes(t *testing.T) {
	m, e := New(Adjacency{
		"a": {"b", "b"},
		"b": {"a"},
	}, []string{"red", "blue", "red"})
	if e != nil {
		t.Fatalf("Failed to create map: %v", e)
	}
	if ns := m.Neighbors("a"); !reflect.DeepEqual(ns, []string{"b"}) {
		t.Errorf("neighbors not deduped: %v", ns)
	}
	if p := m.Palette(); !reflect.DeepEqual(p, []string{"blue", "red"}) {
		t.Errorf("palette not deduped and sorted: %v", p)
	}
}

func TestNewRejectsMalformedMaps(t *testing.T) {
	if _, e := New(nil, nil); e == nil {
		t.Errorf("accepted an empty map")
	}
	if _, e := New(Adjacency{"a": {"a"}}, nil); e == nil {
		t.Errorf("accepted a self-bordering region")
	}
	if _, e := New(Adjacency{"a": {"b"}}, nil); e == nil {
		t.Errorf("accepted a border to an unknown region")
	}
	oneWay := Adjacency{"a": {"b"}, "b": {}}
	if _, e := New(oneWay, nil); e == nil {
		t.Errorf("accepted a one-way border")
	}
}

/*

coloring

*/

func TestColorAustralia(t *testing.T) {
	m, e := New(australiaAdjacency, nil)
	if e != nil {
		t.Fatalf("Failed to create map: %v", e)
	}
	for _, opts := range allOptions {
		r := m.Solve(opts)
		if !r.Solved {
			t.Fatalf("%+v: no coloring found", opts)
		}
		checkColoring(t, m, r.Colors)
		if r.Assignments < len(m.Regions()) {
			t.Errorf("%+v: colored with %d assignments", opts, r.Assignments)
		}
	}
}

func TestColorAustraliaThreeColors(t *testing.T) {
	m, e := New(australiaAdjacency, []string{"red", "green", "blue"})
	if e != nil {
		t.Fatalf("Failed to create map: %v", e)
	}
	r := m.Solve(csp.Options{})
	if !r.Solved {
		t.Fatalf("Australia needs only three colors")
	}
	checkColoring(t, m, r.Colors)
}

func TestColorsAreLexicographicallyFirst(t *testing.T) {
	// one isolated region always gets the first color in sorted
	// palette order
	m, e := New(Adjacency{"only": {}}, []string{"red", "blue"})
	if e != nil {
		t.Fatalf("Failed to create map: %v", e)
	}
	r := m.Solve(csp.Options{})
	if !r.Solved || r.Colors["only"] != "blue" {
		t.Errorf("wrong color for lone region: %+v", r)
	}
}

func TestDiamondNeedsThreeColors(t *testing.T) {
	for _, opts := range allOptions {
		m, e := New(diamondAdjacency, []string{"red", "blue"})
		if e != nil {
			t.Fatalf("Failed to create map: %v", e)
		}
		if r := m.Solve(opts); r.Solved {
			t.Errorf("%+v: two-colored a map that needs three", opts)
		}
		m, e = New(diamondAdjacency, []string{"red", "blue", "green"})
		if e != nil {
			t.Fatalf("Failed to create map: %v", e)
		}
		r := m.Solve(opts)
		if !r.Solved {
			t.Fatalf("%+v: no three-coloring found", opts)
		}
		checkColoring(t, m, r.Colors)
	}
}

func TestOptimizationsAgree(t *testing.T) {
	m, e := New(australiaAdjacency, nil)
	if e != nil {
		t.Fatalf("Failed to create map: %v", e)
	}
	plain := m.Solve(csp.Options{Selector: csp.StaticOrder})
	checked := m.Solve(csp.Options{Selector: csp.StaticOrder, ForwardCheck: true})
	if !reflect.DeepEqual(plain.Colors, checked.Colors) {
		t.Errorf("forward checking changed the coloring")
	}
}
