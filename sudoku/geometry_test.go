package sudoku

import (
	"testing"
)

func TestSquarePuzzleMapping(t *testing.T) {
	for _, slen := range []int{4, 9, 16} {
		m, err := squarePuzzleMapping(slen * slen)
		if err != nil {
			t.Fatalf("side length %d: %v", slen, err)
		}
		if m.sidelen != slen || m.scount != slen*slen {
			t.Errorf("side length %d: got %d squares of side %d", slen, m.scount, m.sidelen)
		}
		if len(m.gdescs) != 3*slen {
			t.Errorf("side length %d: %d groups, want %d", slen, len(m.gdescs), 3*slen)
		}
		for _, gd := range m.gdescs {
			if len(gd.indices) != slen {
				t.Errorf("%v has %d squares, want %d", gd.id, len(gd.indices), slen)
			}
		}
		// each square's peers: the rest of its row, column, and
		// tile, with the tile overlaps counted once
		want := 3*(slen-1) - 2*(m.tilelen-1)
		for i := 1; i <= m.scount; i++ {
			if len(m.peers[i]) != want {
				t.Fatalf("side length %d: square %d has %d peers, want %d",
					slen, i, len(m.peers[i]), want)
			}
		}
	}
}

func TestSquarePuzzleMappingIsMemoized(t *testing.T) {
	m1, err := squarePuzzleMapping(81)
	if err != nil {
		t.Fatalf("Failed to get 9x9 mapping: %v", err)
	}
	m2, err := squarePuzzleMapping(81)
	if err != nil {
		t.Fatalf("Failed to get 9x9 mapping: %v", err)
	}
	if m1 != m2 {
		t.Errorf("same shape gave different mappings")
	}
}

func TestSquarePuzzleMappingErrors(t *testing.T) {
	cases := []struct {
		psize     int
		attribute ErrorAttribute
		condition ErrorCondition
	}{
		{10, PuzzleSizeAttribute, NonSquareCondition},
		{1, SideLengthAttribute, TooSmallCondition},
		{4, SideLengthAttribute, TooSmallCondition},
		{25, SideLengthAttribute, NonSquareCondition},
		{65536, SideLengthAttribute, TooLargeCondition}, // 256^2
	}
	for _, c := range cases {
		_, e := squarePuzzleMapping(c.psize)
		if e == nil {
			t.Errorf("puzzle size %d: no error", c.psize)
			continue
		}
		err, ok := e.(Error)
		if !ok {
			t.Errorf("puzzle size %d: not an Error: %v", c.psize, e)
			continue
		}
		if err.Attribute != c.attribute || err.Condition != c.condition {
			t.Errorf("puzzle size %d: wrong error: %+v", c.psize, err)
		}
	}
}

func TestGroupIDString(t *testing.T) {
	m, err := squarePuzzleMapping(81)
	if err != nil {
		t.Fatalf("Failed to get 9x9 mapping: %v", err)
	}
	seen := make(map[string]bool)
	for _, gd := range m.gdescs {
		s := gd.id.String()
		if s == "" {
			t.Errorf("group %+v has empty print form", gd.id)
		}
		if seen[s] {
			t.Errorf("duplicate group print form %q", s)
		}
		seen[s] = true
	}
}
