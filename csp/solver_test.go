package csp

import (
	"reflect"
	"testing"
)

/*

Test problems

*/

// triangle: three mutually constrained variables.  Needs three
// values; two are not enough.
func triangleProblem(valueCount int) *Problem {
	p := NewProblem(3)
	p.Connect(1, 2)
	p.Connect(2, 3)
	p.Connect(1, 3)
	for v := 1; v <= 3; v++ {
		p.SetDomain(v, newIntsetRange(valueCount)...)
	}
	return p
}

// diamond: four variables in a cycle with one chord, so three
// values are needed and sufficient.
func diamondProblem(valueCount int) *Problem {
	p := NewProblem(4)
	p.Connect(1, 2)
	p.Connect(2, 3)
	p.Connect(3, 4)
	p.Connect(4, 1)
	p.Connect(1, 3) // the chord
	for v := 1; v <= 4; v++ {
		p.SetDomain(v, newIntsetRange(valueCount)...)
	}
	return p
}

// allOptions: every combination of selector and forward checking.
var allOptions = []Options{
	{StaticOrder, false},
	{StaticOrder, true},
	{MinRemaining, false},
	{MinRemaining, true},
}

func checkSolution(t *testing.T, p *Problem, r Result) {
	t.Helper()
	if !r.Solved {
		t.Fatalf("no solution found: %+v", r)
	}
	if len(r.Values) != p.VariableCount()+1 {
		t.Fatalf("solution has %d values, want %d", len(r.Values), p.VariableCount()+1)
	}
	for v := 1; v <= p.VariableCount(); v++ {
		if _, ok := p.domains[v].find(r.Values[v]); !ok {
			t.Errorf("variable %d assigned %d, not in its domain %v", v, r.Values[v], p.domains[v])
		}
		for _, peer := range p.Peers(v) {
			if r.Values[peer] == r.Values[v] {
				t.Errorf("variables %d and %d are peers but both have %d", v, peer, r.Values[v])
			}
		}
	}
}

/*

feasibility

*/

func TestTriangle(t *testing.T) {
	for _, opts := range allOptions {
		if r := triangleProblem(2).Solve(opts); r.Solved {
			t.Errorf("%+v: solved a triangle with two values: %v", opts, r.Values)
		}
		r := triangleProblem(3).Solve(opts)
		checkSolution(t, triangleProblem(3), r)
	}
}

func TestDiamond(t *testing.T) {
	for _, opts := range allOptions {
		if r := diamondProblem(2).Solve(opts); r.Solved {
			t.Errorf("%+v: solved a diamond with two values: %v", opts, r.Values)
		}
		r := diamondProblem(3).Solve(opts)
		checkSolution(t, diamondProblem(3), r)
	}
}

func TestNoConstraints(t *testing.T) {
	p := NewProblem(5)
	for v := 1; v <= 5; v++ {
		p.SetDomain(v, 1)
	}
	for _, opts := range allOptions {
		r := p.Solve(opts)
		checkSolution(t, p, r)
		if r.Backtracks != 0 {
			t.Errorf("%+v: conflict-free problem took %d backtracks", opts, r.Backtracks)
		}
		if r.Assignments != 5 {
			t.Errorf("%+v: expected 5 assignments, got %d", opts, r.Assignments)
		}
	}
}

func TestEmptyProblem(t *testing.T) {
	r := NewProblem(0).Solve(Options{})
	if !r.Solved {
		t.Errorf("empty problem not solved: %+v", r)
	}
	if r.Assignments != 0 || r.Backtracks != 0 {
		t.Errorf("empty problem has nonzero counters: %+v", r)
	}
}

/*

seeds

*/

func TestSeededSolve(t *testing.T) {
	for _, opts := range allOptions {
		p := triangleProblem(3)
		p.Seed(2, 3)
		r := p.Solve(opts)
		checkSolution(t, p, r)
		if r.Values[2] != 3 {
			t.Errorf("%+v: seed not honored: got %d", opts, r.Values[2])
		}
	}
}

func TestConflictingSeeds(t *testing.T) {
	for _, opts := range allOptions {
		p := triangleProblem(3)
		p.Seed(1, 2)
		p.Seed(3, 2)
		r := p.Solve(opts)
		if r.Solved {
			t.Errorf("%+v: solved a problem with conflicting seeds", opts)
		}
		if r.Assignments != 0 || r.Backtracks != 0 {
			t.Errorf("%+v: conflicting seeds should fail before branching: %+v", opts, r)
		}
	}
}

/*

the optimizations change counts, never answers

*/

func TestForwardCheckingAgreesWithPlain(t *testing.T) {
	p := diamondProblem(3)
	plain := p.Solve(Options{StaticOrder, false})
	checked := p.Solve(Options{StaticOrder, true})
	if plain.Solved != checked.Solved {
		t.Fatalf("plain solved=%v but forward checking solved=%v", plain.Solved, checked.Solved)
	}
	if !reflect.DeepEqual(plain.Values, checked.Values) {
		t.Errorf("same selection order, different solutions: %v vs %v", plain.Values, checked.Values)
	}
}

func TestSelectorsAgreeOnFeasibility(t *testing.T) {
	feasible := []*Problem{triangleProblem(3), diamondProblem(3)}
	infeasible := []*Problem{triangleProblem(2), diamondProblem(2)}
	for _, p := range feasible {
		static := p.Solve(Options{StaticOrder, false})
		mrv := p.Solve(Options{MinRemaining, false})
		if !static.Solved || !mrv.Solved {
			t.Errorf("selectors disagree on a feasible problem: static=%v mrv=%v",
				static.Solved, mrv.Solved)
		}
		checkSolution(t, p, mrv)
	}
	for _, p := range infeasible {
		if p.Solve(Options{StaticOrder, false}).Solved ||
			p.Solve(Options{MinRemaining, false}).Solved {
			t.Errorf("a selector solved an infeasible problem")
		}
	}
}

func TestCounterSanity(t *testing.T) {
	for _, opts := range allOptions {
		r := diamondProblem(3).Solve(opts)
		if !r.Solved {
			t.Fatalf("%+v: diamond unsolved", opts)
		}
		if r.Assignments < 1 {
			t.Errorf("%+v: solved with %d assignments", opts, r.Assignments)
		}
		if r.Backtracks < 0 {
			t.Errorf("%+v: negative backtracks", opts)
		}
	}
}

/*

solves don't disturb their problem

*/

func TestProblemUntouchedBySolve(t *testing.T) {
	p := diamondProblem(3)
	domains := make([]intset, len(p.domains))
	for i := range p.domains {
		domains[i] = newIntsetCopy(p.domains[i])
	}
	seeds := append([]int(nil), p.seeds...)
	for _, opts := range allOptions {
		p.Solve(opts)
	}
	if !reflect.DeepEqual(domains, p.domains) {
		t.Errorf("solving changed the problem's domains")
	}
	if !reflect.DeepEqual(seeds, p.seeds) {
		t.Errorf("solving changed the problem's seeds")
	}
}

/*

variable selection

*/

func TestMinRemainingTieBreak(t *testing.T) {
	p := NewProblem(3)
	p.SetDomain(1, 1, 2, 3)
	p.SetDomain(2, 1, 2)
	p.SetDomain(3, 1, 2)
	s := newSearch(p, Options{Selector: MinRemaining})
	if v := s.selectVariable(); v != 2 {
		t.Errorf("tie between 2 and 3 broke toward %d", v)
	}
}

func TestMinRemainingWipeoutWins(t *testing.T) {
	p := NewProblem(3)
	p.SetDomain(1, 1, 2)
	p.SetDomain(3, 1)
	s := newSearch(p, Options{Selector: MinRemaining})
	// variable 2 has an empty domain; it must be returned the
	// moment the scan reaches it, before variable 3's singleton
	// can end the scan
	if v := s.selectVariable(); v != 2 {
		t.Errorf("wiped-out variable not selected, got %d", v)
	}
}

func TestSelectorsExhausted(t *testing.T) {
	p := NewProblem(2)
	p.SetDomain(1, 1)
	p.SetDomain(2, 1)
	s := newSearch(p, Options{})
	s.values[1], s.values[2] = 1, 1
	if v := s.selectStatic(); v != 0 {
		t.Errorf("static selector returned %d for a total assignment", v)
	}
	if v := s.selectMinRemaining(); v != 0 {
		t.Errorf("MRV selector returned %d for a total assignment", v)
	}
}

/*

propagation and undo

*/

// snapshot captures the parts of a search that undo must restore.
func snapshot(s *search) ([]int, []intset) {
	values := append([]int(nil), s.values...)
	domains := make([]intset, len(s.domains))
	for i := range s.domains {
		domains[i] = newIntsetCopy(s.domains[i])
	}
	return values, domains
}

func TestUndoRestoresExactState(t *testing.T) {
	p := diamondProblem(3)
	s := newSearch(p, Options{StaticOrder, true})
	wantValues, wantDomains := snapshot(s)

	// assign, propagate, undo, unassign - the full trial cycle
	s.values[1] = 2
	saved := s.domains[1]
	s.domains[1] = intset{2}
	log, ok := s.propagate(1, 2)
	if !ok {
		t.Fatalf("unexpected wipeout propagating into fresh domains")
	}
	if len(log) == 0 {
		t.Fatalf("propagation into fresh domains pruned nothing")
	}
	s.unprune(log)
	s.domains[1] = saved
	s.values[1] = 0

	values, domains := snapshot(s)
	if !reflect.DeepEqual(values, wantValues) {
		t.Errorf("values not restored: got %v, want %v", values, wantValues)
	}
	if !reflect.DeepEqual(domains, wantDomains) {
		t.Errorf("domains not restored: got %v, want %v", domains, wantDomains)
	}
}

func TestPartialPruneLogOnWipeout(t *testing.T) {
	// peer 2's domain is only {2}, so propagating value 2 from
	// variable 1 wipes it out immediately
	p := NewProblem(3)
	p.Connect(1, 2)
	p.Connect(1, 3)
	p.SetDomain(1, 1, 2)
	p.SetDomain(2, 2)
	p.SetDomain(3, 1, 2)
	s := newSearch(p, Options{StaticOrder, true})
	wantValues, wantDomains := snapshot(s)

	s.values[1] = 2
	saved := s.domains[1]
	s.domains[1] = intset{2}
	log, ok := s.propagate(1, 2)
	if ok {
		t.Fatalf("expected a wipeout, got none (log %v)", log)
	}
	if len(log) != 1 || log[0] != (prune{2, 2}) {
		t.Errorf("partial log wrong: %v", log)
	}
	// the caller always replays the partial log on the undo path
	s.unprune(log)
	s.domains[1] = saved
	s.values[1] = 0

	values, domains := snapshot(s)
	if !reflect.DeepEqual(values, wantValues) {
		t.Errorf("values not restored after wipeout: got %v, want %v", values, wantValues)
	}
	if !reflect.DeepEqual(domains, wantDomains) {
		t.Errorf("domains not restored after wipeout: got %v, want %v", domains, wantDomains)
	}
}

func TestUnpruneIsIdempotent(t *testing.T) {
	p := triangleProblem(3)
	s := newSearch(p, Options{})
	log := pruneLog{{2, 1}, {3, 2}}
	s.domains[2].remove(1)
	s.domains[3].remove(2)
	s.unprune(log)
	_, want := snapshot(s)
	// replaying the same log again must change nothing
	s.unprune(log)
	_, got := snapshot(s)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("double unprune changed domains: %v vs %v", got, want)
	}
}

// A trial value that fails propagation must leave no trace: the
// engine clears the tentative assignment on the same undo path
// that replays the prune log.
func TestFailedPropagationClearsAssignment(t *testing.T) {
	// variable 1 can only take 2; doing so wipes out variable 2;
	// so the whole problem is infeasible and every variable must
	// end the search unassigned
	p := NewProblem(2)
	p.Connect(1, 2)
	p.SetDomain(1, 2)
	p.SetDomain(2, 2)
	s := newSearch(p, Options{StaticOrder, true})
	if s.run() {
		t.Fatalf("solved an infeasible problem")
	}
	for v := 1; v <= 2; v++ {
		if s.values[v] != 0 {
			t.Errorf("variable %d left assigned %d after failed search", v, s.values[v])
		}
	}
	if s.backtracks == 0 {
		t.Errorf("failed trial not counted as a backtrack")
	}
}
