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

package sudoku

import (
	"fmt"
)

/*

Print forms of puzzle values

*/

var (
	valueStrings = []string{
		" ", "1", "2", "3", "4", "5", "6", "7", "8", "9",
		"A", "B", "C", "D", "E", "F", "G", "H", "I", "J",
		"K", "L", "M", "N", "O", "P", "Q", "R", "S", "T",
		"U", "V", "W", "X", "Y", "Z",
	}
	nonValueString = "?"
	bigValueString = "!"
)

func vstr(i int) string {
	if i < 0 {
		return nonValueString
	}
	if i < len(valueStrings) {
		return valueStrings[i]
	}
	return bigValueString
}

/*

Pretty-printed grids in strings, for the CLI and for debugging.

*/

// String gives a pretty-printed view of a puzzle's givens.
func (p *Puzzle) String() string {
	return p.gridString(p.givens) + p.errorsString()
}

// GridString pretty-prints any full or partial value grid in the
// puzzle's shape (most usefully a solution from Solve).  The
// values are in reading order, 0 for an empty square.
func (p *Puzzle) GridString(values []int) string {
	grid := make([]int, p.mapping.scount+1) // 1-based indexing
	copy(grid[1:], values)
	return p.gridString(grid)
}

func (p *Puzzle) gridString(values []int) (result string) {
	if p == nil {
		return
	}
	slen, tlen := p.mapping.sidelen, p.mapping.tilelen
	// first put out the header
	result += " "
	for i := 0; i < slen; i++ {
		if i%tlen != 0 {
			result += " "
		} else {
			result += "|"
		}
		result += fmt.Sprintf("%2d ", i+1)
	}
	result += "\n"
	// next are the rows, including the separator at the top of
	// each band
	for ri, rowhdr := 0, 'a'; ri < slen; ri, rowhdr = ri+1, rowhdr+1 {
		if ri%tlen == 0 {
			result += " "
			for i := 0; i < slen; i++ {
				result += "+---"
			}
			result += "\n"
		}
		result += string(rowhdr)
		for i := 0; i < slen; i++ {
			if i%tlen != 0 {
				result += " "
			} else {
				result += "|"
			}
			if v := values[(ri*slen)+i+1]; v != 0 {
				result += fmt.Sprintf(" %s ", vstr(v))
			} else {
				result += " _ "
			}
		}
		result += "\n"
	}
	return
}

func (p *Puzzle) errorsString() (result string) {
	if p != nil {
		if elen := len(p.errors); elen > 0 {
			if elen > 1 {
				result += fmt.Sprintf("Errors (%d):\n", elen)
				for i, err := range p.errors {
					result += fmt.Sprintf("  #%d: %v\n", i+1, err)
				}
			} else {
				result += fmt.Sprintf("Error: %v\n", p.errors[0])
			}
		}
	}
	return
}
