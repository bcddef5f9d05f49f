// Package csp provides a backtracking solver for binary
// inequality constraint problems.
//
// In this package, a problem is made of variables designated by
// indices that start at 1, the way puzzle squares are numbered in
// English reading order.  Each variable has a domain of candidate
// values (small positive integers), and a set of peer variables
// it is constrained to differ from.  The peer relation is
// symmetric and never relates a variable to itself.
//
// The meaning of the variables and values is up to the caller:
// for a Sudoku puzzle the variables are cells and the values are
// digits; for a map coloring the variables are regions and the
// values index a color palette.  The solver only ever compares
// values for equality, so any dense 1-based encoding works.
package csp

import (
	"fmt"
)

/*

Problems

*/

// A Problem is the immutable statement of one constraint
// problem: how many variables there are, which variables are
// peers, what values each variable can take, and which variables
// arrive already assigned (the seeds).  A Problem is not touched
// by solving, so one Problem can be solved repeatedly with
// different options.
type Problem struct {
	count   int      // number of variables
	peers   []intset // peers[v] = variables v must differ from (1-based)
	domains []intset // domains[v] = candidate values for v (1-based)
	seeds   []int    // seeds[v] = fixed starting value, 0 if none
}

// NewProblem creates a problem over variables 1 through count,
// with no constraints, empty domains, and no seeds.  Callers fill
// it in with Connect, SetDomain, and Seed before solving.
func NewProblem(count int) *Problem {
	if count < 0 {
		panic(fmt.Errorf("NewProblem called with negative count %d", count))
	}
	return &Problem{
		count:   count,
		peers:   make([]intset, count+1), // 1-based indexing
		domains: make([]intset, count+1),
		seeds:   make([]int, count+1),
	}
}

// VariableCount returns the number of variables in the problem.
func (p *Problem) VariableCount() int {
	return p.count
}

// Connect records that two distinct variables must take different
// values.  The relation is kept symmetric: both variables see
// each other as peers.  Connecting the same pair twice is
// harmless.
func (p *Problem) Connect(a, b int) {
	if a < 1 || a > p.count || b < 1 || b > p.count {
		// internal caller error - constraint graphs are built
		// from validated inputs
		panic(fmt.Errorf("Connect(%d, %d) out of range 1..%d", a, b, p.count))
	}
	if a == b {
		panic(fmt.Errorf("Connect(%d, %d) would create a self-loop", a, b))
	}
	p.peers[a].insert(b)
	p.peers[b].insert(a)
}

// Peers returns the peer list of a variable.  The result shares
// storage with the problem and must not be modified.
func (p *Problem) Peers(v int) []int {
	return p.peers[v]
}

// SetDomain replaces the domain of a variable with the given
// values.  Duplicates are collapsed and the values are kept in
// ascending order, which is the order the solver tries them in.
func (p *Problem) SetDomain(v int, values ...int) {
	var ds intset
	for _, val := range values {
		ds.insert(val)
	}
	p.domains[v] = ds
}

// Domain returns the domain of a variable.  The result shares
// storage with the problem and must not be modified.
func (p *Problem) Domain(v int) []int {
	return p.domains[v]
}

// Seed fixes the starting value of a variable and collapses its
// domain to that single value.  Seeded variables are never
// branched on; they only constrain their peers.
func (p *Problem) Seed(v, value int) {
	p.seeds[v] = value
	p.domains[v] = intset{value}
}

/*

Integer sets

*/

// An intset is a set of small integers, represented as a sorted
// slice.  We use intsets both for domains and for peer index
// lists.  The zero value is an empty set.
type intset []int

// newIntsetRange: Make an intset holding 1 to max.
func newIntsetRange(max int) intset {
	if max < 1 {
		return intset{}
	}
	out := make(intset, max)
	for i := 0; i < max; i++ {
		out[i] = i + 1
	}
	return out
}

// newIntsetCopy: Make a copy of an intset.
func newIntsetCopy(in intset) intset {
	if in == nil {
		return nil
	}
	out := make(intset, len(in))
	copy(out, in)
	return out
}

// Find value v, returning where it should be in the intset and
// whether it was found there.
func (ps *intset) find(v int) (int, bool) {
	end := len(*ps)
	where := end
	for i := 0; i < end; i++ {
		if (*ps)[i] == v {
			return i, true
		}
		if (*ps)[i] > v {
			where = i
			break
		}
	}
	return where, false
}

// Insert value v, returning whether it was there already.
// Inserting a present value leaves the set unchanged, which is
// what makes undo replay idempotent.
func (ps *intset) insert(v int) bool {
	end := len(*ps)
	where, found := ps.find(v)
	if found {
		return true
	}
	// insert by lengthening, shifting, inserting
	*ps = append(*ps, v)
	if where < end {
		copy((*ps)[where+1:], (*ps)[where:])
		(*ps)[where] = v
	}
	return false
}

// Remove value v, returning whether it was there.
func (ps *intset) remove(v int) bool {
	end := len(*ps)
	for i := 0; i < end; i++ {
		pv := (*ps)[i]
		if pv == v {
			copy((*ps)[i:], (*ps)[i+1:])
			*ps = (*ps)[:end-1]
			return true
		}
		if pv > v {
			return false
		}
	}
	return false
}

// Subtract the passed intset, returning whether anything was
// removed.
func (ps *intset) subtract(xs intset) bool {
	pend, xend := len(*ps), len(xs)
	pi := 0
	newend := pi
	for xi := 0; pi < pend && xi < xend; {
		pv, xv := (*ps)[pi], xs[xi]
		switch {
		case pv == xv:
			pi++
			xi++
		case pv < xv:
			if newend != pi {
				(*ps)[newend] = pv
			}
			newend++
			pi++
		case pv > xv:
			xi++
		}
	}
	if newend == pi {
		// nothing was removed
		return false
	}
	// copy any remaining non-removed values
	newend += copy((*ps)[newend:], (*ps)[pi:])
	*ps = (*ps)[:newend]
	return true
}
