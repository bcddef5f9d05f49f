package sudoku

import (
	"fmt"
)

/*

Puzzle Geometry

A puzzle's geometry determines which squares constrain each
other: every row, every column, and every non-overlapping square
tile is a group whose squares must all differ.  From the groups
we precompute, for every square, the flat list of its peers -
the distinct other squares that share at least one group with
it.  The peer lists are what the constraint core consumes.

*/

// A GroupID names a row, column, or tile of constrained squares.
// The numbering for each type of group is 1-based and follows
// English reading order.
type GroupID struct {
	Gtype string `json:"gtype"`
	Index int    `json:"index"`
}

// GType (group type) constants.
const (
	GtypeRow  = "row"
	GtypeCol  = "column"
	GtypeTile = "tile"
)

// Group IDs implement Stringer
func (gid GroupID) String() string {
	if gid.Gtype == "" {
		return fmt.Sprintf("<group> %d", gid.Index)
	}
	return fmt.Sprintf("%s %d", gid.Gtype, gid.Index)
}

// A group descriptor identifies a group and enumerates the
// indices of its squares.
type groupDescriptor struct {
	id      GroupID
	indices []int
}

// A puzzleMapping summarizes the geometry parameters of a
// puzzle: the side length, the square count, the groups, and the
// per-square peer lists derived from the groups.
type puzzleMapping struct {
	sidelen int
	tilelen int
	scount  int
	gdescs  []groupDescriptor
	peers   [][]int
}

// squarePuzzleMaps is where we memoize computed puzzle maps for
// each side length we've encountered, to avoid computing them
// more than once.
var squarePuzzleMaps = make(map[int]*puzzleMapping)

// Find the integer square root of val, if it exists.
func findIntSquareRoot(val int) (int, bool) {
	var i int
	for i = 1; i*i <= val; i++ {
		if i*i == val {
			return i, true
		}
	}
	return i - 1, false
}

func computeSquarePuzzleMapping(slen, tlen int) *puzzleMapping {
	gcount := slen * 3
	scount := slen * slen
	gs := make([]groupDescriptor, 0, gcount)
	for i := 0; i < slen; i++ {
		// row i + 1
		row := make([]int, slen)
		for ri := 0; ri < slen; ri++ {
			row[ri] = slen*i + ri + 1 // 1-based indexes
		}
		gs = append(gs, groupDescriptor{GroupID{GtypeRow, i + 1}, row})
		// column i + 1
		col := make([]int, slen)
		for ci := 0; ci < slen; ci++ {
			col[ci] = slen*ci + i + 1
		}
		gs = append(gs, groupDescriptor{GroupID{GtypeCol, i + 1}, col})
		// tile i + 1
		tile := make([]int, slen)
		baserow, basecol := tlen*(i/tlen), tlen*(i%tlen)
		for tri := 0; tri < tlen; tri++ {
			for tci := 0; tci < tlen; tci++ {
				tile[tri*tlen+tci] = slen*(baserow+tri) + (basecol + tci) + 1
			}
		}
		gs = append(gs, groupDescriptor{GroupID{GtypeTile, i + 1}, tile})
	}

	// map each square to its three containing groups, then
	// derive the peer lists: every other square sharing a group,
	// each listed once, in ascending order.
	ixmap := make([][]int, scount+1) // 1-based indexing
	for gi := range gs {
		for _, si := range gs[gi].indices {
			ixmap[si] = append(ixmap[si], gi)
		}
	}
	peers := make([][]int, scount+1)
	seen := make([]bool, scount+1)
	for i := 1; i <= scount; i++ {
		for _, gi := range ixmap[i] {
			for _, si := range gs[gi].indices {
				seen[si] = true
			}
		}
		seen[i] = false
		list := make([]int, 0, 3*(slen-1)-2*(tlen-1))
		for j := 1; j <= scount; j++ {
			if seen[j] {
				list = append(list, j)
				seen[j] = false
			}
		}
		peers[i] = list
	}
	return &puzzleMapping{slen, tlen, scount, gs, peers}
}

// squarePuzzleMapping returns the puzzle map for a puzzle with
// the given number of squares.  This computes (first time) and
// then returns (thereafter) the map.  Returns an error if the
// puzzle is not square or the side length is out of range or not
// itself a perfect square.
func squarePuzzleMapping(psize int) (*puzzleMapping, error) {
	sidelen, ok := findIntSquareRoot(psize)
	if !ok {
		return nil, formatError(PuzzleSizeAttribute, psize, NonSquareCondition, 0)
	}
	min, max := 4, 225
	if sidelen < min {
		return nil, formatError(SideLengthAttribute, sidelen, TooSmallCondition, min)
	}
	if sidelen > max {
		return nil, formatError(SideLengthAttribute, sidelen, TooLargeCondition, max)
	}
	tilelen, ok := findIntSquareRoot(sidelen)
	if !ok {
		return nil, formatError(SideLengthAttribute, sidelen, NonSquareCondition, 0)
	}
	pm, ok := squarePuzzleMaps[sidelen]
	if ok {
		return pm, nil
	}
	pm = computeSquarePuzzleMapping(sidelen, tilelen)
	squarePuzzleMaps[sidelen] = pm
	return pm, nil
}

/*

Errors

*/

func formatError(attr ErrorAttribute, val int, cond ErrorCondition, limit int) Error {
	err := Error{
		Scope:     GeometryScope,
		Attribute: attr,
		Condition: cond,
		Values:    ErrorData{val},
	}
	if cond == TooSmallCondition || cond == TooLargeCondition {
		err.Values = append(err.Values, limit)
	}
	return err
}
