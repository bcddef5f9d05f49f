// crux.go - a constraint-solving service for Sudoku and map coloring.
// Copyright (C) 2015-2016 Daniel C. Brotsky.
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License along
// with this program; if not, write to the Free Software Foundation, Inc.,
// 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
// Licensed under the LGPL v3.  See the LICENSE file for details

package dbprep

import (
	"encoding/json"
	"strings"
	"testing"
)

// make sure the seed invariants are met
func TestSeedData(t *testing.T) {
	if len(seedProblems) != len(seedIds) {
		t.Fatalf("%d seeds but %d ids", len(seedProblems), len(seedIds))
	}
	seen := make(map[string]int)
	for i, sp := range seedProblems {
		id := seedIds[i]
		if len(id) != 64 || id != strings.ToLower(id) {
			t.Errorf("Id %d (%s) isn't lowercase hex.", i, id)
		}
		if prev, dup := seen[id]; dup {
			t.Errorf("Seeds %d and %d share id %s.", prev, i, id)
		}
		seen[id] = i
		if sp.name != strings.ToLower(sp.name) {
			t.Errorf("Name %d (%s) contains a non-lowercase letter.", i, sp.name)
		}
		if !json.Valid(sp.payload) {
			t.Errorf("Seed %q payload isn't valid JSON.", sp.name)
		}
	}
}

func TestSeedGrids(t *testing.T) {
	for _, sg := range seedGrids {
		if len(sg.values) != 81 {
			t.Errorf("Grid %q has %d values.", sg.name, len(sg.values))
		}
		for i, v := range sg.values {
			if v < 0 || v > 9 {
				t.Errorf("Grid %q square %d holds %d.", sg.name, i+1, v)
			}
		}
	}
}

func TestSeedMap(t *testing.T) {
	for region, neighbors := range australiaAdjacency {
		for _, n := range neighbors {
			ns, ok := australiaAdjacency[n]
			if !ok {
				t.Errorf("Region %q borders unknown region %q.", region, n)
				continue
			}
			mutual := false
			for _, back := range ns {
				if back == region {
					mutual = true
				}
			}
			if !mutual {
				t.Errorf("Region %q borders %q but not the reverse.", region, n)
			}
		}
	}
}
