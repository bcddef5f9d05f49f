package csp

import (
	"reflect"
	"testing"
)

/*

intsets

*/

func TestIntsetInsertKeepsOrder(t *testing.T) {
	var ps intset
	for _, v := range []int{5, 1, 3, 5, 2, 1} {
		ps.insert(v)
	}
	if want := (intset{1, 2, 3, 5}); !reflect.DeepEqual(ps, want) {
		t.Errorf("got %v, want %v", ps, want)
	}
}

func TestIntsetInsertReportsPresence(t *testing.T) {
	ps := intset{1, 3}
	if ps.insert(2) {
		t.Errorf("insert of missing value reported present")
	}
	if !ps.insert(3) {
		t.Errorf("insert of present value reported missing")
	}
}

func TestIntsetRemove(t *testing.T) {
	ps := intset{1, 2, 4}
	if !ps.remove(2) {
		t.Errorf("remove of present value reported missing")
	}
	if ps.remove(3) {
		t.Errorf("remove of missing value reported present")
	}
	if want := (intset{1, 4}); !reflect.DeepEqual(ps, want) {
		t.Errorf("got %v, want %v", ps, want)
	}
}

func TestIntsetSubtract(t *testing.T) {
	ps := intset{1, 2, 3, 4, 5}
	if !ps.subtract(intset{2, 4, 6}) {
		t.Errorf("subtract removed nothing")
	}
	if want := (intset{1, 3, 5}); !reflect.DeepEqual(ps, want) {
		t.Errorf("got %v, want %v", ps, want)
	}
	if ps.subtract(intset{7, 8}) {
		t.Errorf("disjoint subtract claimed removal")
	}
}

func TestIntsetRange(t *testing.T) {
	if want := (intset{1, 2, 3, 4}); !reflect.DeepEqual(newIntsetRange(4), want) {
		t.Errorf("got %v, want %v", newIntsetRange(4), want)
	}
	if got := newIntsetRange(0); len(got) != 0 {
		t.Errorf("range to 0 not empty: %v", got)
	}
}

/*

problem construction

*/

func TestConnectIsSymmetric(t *testing.T) {
	p := NewProblem(3)
	p.Connect(1, 3)
	p.Connect(1, 3) // duplicates collapse
	if want := []int{3}; !reflect.DeepEqual(p.Peers(1), want) {
		t.Errorf("peers of 1: got %v, want %v", p.Peers(1), want)
	}
	if want := []int{1}; !reflect.DeepEqual(p.Peers(3), want) {
		t.Errorf("peers of 3: got %v, want %v", p.Peers(3), want)
	}
	if len(p.Peers(2)) != 0 {
		t.Errorf("unconnected variable has peers: %v", p.Peers(2))
	}
}

func TestConnectRejectsSelfLoop(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("self-loop Connect did not panic")
		}
	}()
	NewProblem(2).Connect(1, 1)
}

func TestSetDomainSortsAndDedupes(t *testing.T) {
	p := NewProblem(1)
	p.SetDomain(1, 3, 1, 3, 2)
	if want := []int{1, 2, 3}; !reflect.DeepEqual(p.Domain(1), want) {
		t.Errorf("got %v, want %v", p.Domain(1), want)
	}
}

func TestSeedCollapsesDomain(t *testing.T) {
	p := NewProblem(1)
	p.SetDomain(1, 1, 2, 3)
	p.Seed(1, 2)
	if want := []int{2}; !reflect.DeepEqual(p.Domain(1), want) {
		t.Errorf("got %v, want %v", p.Domain(1), want)
	}
}
