// Package sudoku instantiates the constraint core for Sudoku
// puzzles.
//
// In this package, puzzles are made of squares which are either
// empty (represented with a 0 value) or have a given value
// between 1 and the side length of the puzzle (inclusive).  The
// squares are designated by indices that start at 1 and increase
// left-to-right, top-to-bottom (English reading order).  The
// usual puzzle is 9x9, but any side length that is a perfect
// square works the same way (4x4 puzzles make handy test cases).
//
// A puzzle with given values that already conflict (the same
// value twice in one row, column, or tile) is never solvable;
// such a puzzle can be created and inspected, but solving it
// reports infeasible without touching any square.
package sudoku

import (
	"github.com/ancientHacker/crux.go/csp"
)

/*

Puzzles

*/

// A Puzzle holds the given values of one Sudoku puzzle plus the
// geometry mapping for its size.  Puzzles are immutable once
// created: solving returns a fresh value grid and leaves the
// givens alone.
type Puzzle struct {
	mapping *puzzleMapping
	givens  []int // 1-based; 0 means an empty square
	errors  []Error
}

// New creates a Puzzle from the given values, one for each
// square in reading order.  Input values of 0 mean an empty
// square.  Gives an error if the value list isn't a supported
// puzzle shape, or if any value is out of range for the shape.
//
// Conflicting given values are not an error here: they make an
// unsolvable puzzle, which Errors reports and Solve refuses.
func New(values []int) (*Puzzle, error) {
	mapping, err := squarePuzzleMapping(len(values))
	if err != nil {
		return nil, err
	}
	givens := make([]int, mapping.scount+1) // 1-based indexing
	for i, val := range values {
		if val < 0 || val > mapping.sidelen {
			return nil, rangeError(ValueAttribute, val, 0, mapping.sidelen)
		}
		givens[i+1] = val
	}
	p := &Puzzle{mapping: mapping, givens: givens}
	p.errors = p.findConflicts()
	return p, nil
}

// findConflicts walks every group looking for a value given to
// more than one of its squares, the way groups are checked at
// construction in any Sudoku model: one pass per group,
// remembering where each value was seen.
func (p *Puzzle) findConflicts() []Error {
	var errs []Error
	for _, gd := range p.mapping.gdescs {
		where := make([]int, p.mapping.sidelen+1) // 1-based values
		for _, i := range gd.indices {
			if v := p.givens[i]; v != 0 {
				if where[v] != 0 {
					errs = append(errs, groupError(gd.id, v))
				}
				where[v] = i
			}
		}
	}
	return errs
}

// SideLength returns the puzzle's side length.
func (p *Puzzle) SideLength() int {
	return p.mapping.sidelen
}

// Values returns a copy of the given values in reading order,
// in the same shape New accepts.
func (p *Puzzle) Values() []int {
	return append([]int(nil), p.givens[1:]...)
}

// Errors returns the conflicts among the puzzle's given values,
// if any.  A puzzle with conflicts can't be solved.
func (p *Puzzle) Errors() []Error {
	return append([]Error(nil), p.errors...)
}

/*

Solving

*/

// A Result reports the outcome of solving one puzzle: the full
// value grid when a solution was found, and the diagnostic
// counters for the search either way.
type Result struct {
	Solved      bool  `json:"solved"`
	Values      []int `json:"values,omitempty"` // reading order, all squares filled
	Assignments int   `json:"assignments"`
	Backtracks  int   `json:"backtracks"`
	ElapsedUs   int64 `json:"elapsedMicroseconds"`
}

// Solve searches for a completion of the puzzle using the given
// options and reports the Result.  Givens are carried into the
// solution unchanged.  A puzzle whose givens conflict reports
// infeasible immediately.
func (p *Puzzle) Solve(opts csp.Options) Result {
	if len(p.errors) > 0 {
		return Result{}
	}
	r := p.problem().Solve(opts)
	result := Result{
		Solved:      r.Solved,
		Assignments: r.Assignments,
		Backtracks:  r.Backtracks,
		ElapsedUs:   r.Elapsed.Microseconds(),
	}
	if r.Solved {
		result.Values = r.Values[1:]
	}
	return result
}

// problem builds the constraint problem for the puzzle: one
// variable per square, peers from the geometry, givens as
// seeds.  Empty squares start with the full value range minus
// whatever their peers are already given, the same start a
// human gets by penciling candidates into a fresh grid.
func (p *Puzzle) problem() *csp.Problem {
	m := p.mapping
	prob := csp.NewProblem(m.scount)
	for i := 1; i <= m.scount; i++ {
		for _, peer := range m.peers[i] {
			if peer > i {
				prob.Connect(i, peer)
			}
		}
	}
	for i := 1; i <= m.scount; i++ {
		if p.givens[i] != 0 {
			prob.Seed(i, p.givens[i])
			continue
		}
		used := make([]bool, m.sidelen+1) // 1-based values
		for _, peer := range m.peers[i] {
			if v := p.givens[peer]; v != 0 {
				used[v] = true
			}
		}
		domain := make([]int, 0, m.sidelen)
		for v := 1; v <= m.sidelen; v++ {
			if !used[v] {
				domain = append(domain, v)
			}
		}
		prob.SetDomain(i, domain...)
	}
	return prob
}
