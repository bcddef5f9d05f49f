package csp

import (
	"time"
)

/*

Backtracking search

The solver is a chronological depth-first search with exact undo.
It works the same way a careful human works a constraint puzzle
with a pencil and an eraser:

1. Pick an unassigned variable.  Either take the first one in
index order, or (with the MRV policy) take one whose domain has
the fewest values left, so contradictions surface early.

2. Try each value in the variable's domain, in ascending order.
A value that conflicts with an already assigned peer is skipped
without further work.

3. Pencil in a surviving value.  With forward checking enabled,
also erase that value from the domains of all unassigned peers,
keeping a log of every erasure.  If some peer is left with no
values at all, the guess cannot work: skip straight to step 5.

4. Recurse.  If the recursion reports success, the puzzle is
done; leave the pencil marks exactly as they are and unwind.

5. Otherwise erase everything this guess caused: replay the
erasure log backwards, restore the variable's domain, and clear
the assignment.  Then continue with the next value in step 2.

6. When every value for the chosen variable has failed, report
failure to the caller, who is sitting in his own step 5.

The search either finds one total assignment or proves there is
none.  The caller gets counters for assignments tried and
backtracks taken; they are diagnostics only and never influence
the traversal order.

*/

// A Policy selects the variable-ordering rule used by a solve.
type Policy int

// The known selection policies.
const (
	// StaticOrder branches on the first unassigned variable in
	// index order.
	StaticOrder Policy = iota
	// MinRemaining branches on the unassigned variable with the
	// fewest remaining domain values, breaking ties toward the
	// smallest index.
	MinRemaining
)

// Options control one solve of a Problem.
type Options struct {
	Selector     Policy // variable selection rule
	ForwardCheck bool   // prune peer domains after each assignment
}

// A Result reports the outcome of one solve: whether a total
// consistent assignment was found, the assignment itself, and
// the diagnostic counters for that solve.  Counters are scoped
// to the one call that produced them, so concurrent solves of
// different problems don't interfere.
type Result struct {
	Solved      bool          `json:"solved"`
	Values      []int         `json:"values,omitempty"` // 1-based; index 0 unused
	Assignments int           `json:"assignments"`
	Backtracks  int           `json:"backtracks"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Solve runs a backtracking search over the problem with the
// given options and returns its Result.  The problem itself is
// never modified: all search state lives in the call.
//
// A problem whose seed values already conflict with each other
// is reported unsolved immediately, without any branching.
func (p *Problem) Solve(opts Options) Result {
	start := time.Now()
	s := newSearch(p, opts)
	result := Result{}
	if s.seedsConsistent() && s.run() {
		result.Solved = true
		result.Values = append([]int(nil), s.values...)
	}
	result.Assignments = s.assignments
	result.Backtracks = s.backtracks
	result.Elapsed = time.Since(start)
	return result
}

/*

Search state

*/

// A search holds the mutable state of one solve: the current
// partial assignment, the live domains, and the counters.  The
// domains start as copies of the problem's domains, so the
// search can prune them in place and restore them exactly.
type search struct {
	prob        *Problem
	opts        Options
	values      []int    // current assignment, 0 = unassigned (1-based)
	domains     []intset // live domains (1-based)
	assignments int
	backtracks  int
}

func newSearch(p *Problem, opts Options) *search {
	s := &search{
		prob:    p,
		opts:    opts,
		values:  append([]int(nil), p.seeds...),
		domains: make([]intset, p.count+1), // 1-based indexing
	}
	for i := 1; i <= p.count; i++ {
		s.domains[i] = newIntsetCopy(p.domains[i])
	}
	return s
}

// seedsConsistent reports whether the seeded assignments agree
// with each other.  Seeds come from external inputs (puzzle
// givens), and a conflicting pair can never be repaired by
// search, so the solve fails fast without touching any state.
func (s *search) seedsConsistent() bool {
	for v := 1; v <= s.prob.count; v++ {
		if s.values[v] == 0 {
			continue
		}
		for _, peer := range s.prob.peers[v] {
			if peer > v && s.values[peer] == s.values[v] {
				return false
			}
		}
	}
	return true
}

/*

The constraint oracle

*/

// consistent reports whether assigning val to v conflicts with
// any currently assigned peer of v.  It has no side effects.
func (s *search) consistent(v, val int) bool {
	for _, peer := range s.prob.peers[v] {
		if s.values[peer] == val {
			return false
		}
	}
	return true
}

/*

Variable selection

*/

// selectVariable picks the next variable to branch on, or 0 if
// every variable is assigned.
func (s *search) selectVariable() int {
	if s.opts.Selector == MinRemaining {
		return s.selectMinRemaining()
	}
	return s.selectStatic()
}

// selectStatic: first unassigned variable in index order.
func (s *search) selectStatic() int {
	for v := 1; v <= s.prob.count; v++ {
		if s.values[v] == 0 {
			return v
		}
	}
	return 0
}

// selectMinRemaining: unassigned variable with the smallest
// domain, ties broken toward the smaller index.  A wiped-out
// domain is returned immediately so the caller can fail the
// branch without scanning the rest; a single-value domain ends
// the scan early because nothing smaller can turn up.
func (s *search) selectMinRemaining() int {
	best, bestSize := 0, 0
	for v := 1; v <= s.prob.count; v++ {
		if s.values[v] != 0 {
			continue
		}
		size := len(s.domains[v])
		if size == 0 {
			return v
		}
		if best == 0 || size < bestSize {
			best, bestSize = v, size
			if size == 1 {
				return best
			}
		}
	}
	return best
}

/*

Forward checking

*/

// One prune: a value removed from a variable's domain.
type prune struct {
	variable int
	value    int
}

// A pruneLog records the domain removals caused by one trial
// assignment, in the order they were made.  The log belongs to
// the stack frame that made the assignment and is consumed by
// that frame's undo, never anyone else's.
type pruneLog []prune

// propagate removes val from the domains of every unassigned
// peer of v, logging each removal.  If some peer's domain is
// wiped out, propagation stops right there and reports failure;
// the partial log is still returned because the caller always
// replays it during undo.
func (s *search) propagate(v, val int) (pruneLog, bool) {
	var log pruneLog
	for _, peer := range s.prob.peers[v] {
		if s.values[peer] != 0 {
			continue
		}
		if s.domains[peer].remove(val) {
			log = append(log, prune{peer, val})
			if len(s.domains[peer]) == 0 {
				// domain wipeout - this guess can't work
				return log, false
			}
		}
	}
	return log, true
}

// unprune replays a prune log in reverse, putting each removed
// value back in its domain.  Insertion is idempotent, so a
// replay can never create duplicates.
func (s *search) unprune(log pruneLog) {
	for i := len(log) - 1; i >= 0; i-- {
		s.domains[log[i].variable].insert(log[i].value)
	}
}

/*

The engine

*/

// run is one recursion level of the search.  It returns true as
// soon as the assignment is total, leaving the assignment in
// place for the caller to read; it returns false after proving
// no value of the selected variable can be extended to a
// solution, having restored all state to how it found it.
func (s *search) run() bool {
	v := s.selectVariable()
	if v == 0 {
		return true // assignment is total
	}
	if len(s.domains[v]) == 0 {
		return false // wiped out by an earlier propagation
	}
	// iterate over a copy so in-place pruning can't disturb the
	// iteration
	for _, val := range newIntsetCopy(s.domains[v]) {
		if !s.consistent(v, val) {
			continue
		}
		s.values[v] = val
		s.assignments++

		var saved intset
		var log pruneLog
		ok := true
		if s.opts.ForwardCheck {
			saved = s.domains[v]
			s.domains[v] = intset{val}
			log, ok = s.propagate(v, val)
		}

		if ok && s.run() {
			return true
		}

		// this guess failed: replay the prune log, restore the
		// domain, clear the assignment
		if s.opts.ForwardCheck {
			s.unprune(log)
			s.domains[v] = saved
		}
		s.values[v] = 0
		s.backtracks++
	}
	return false
}
