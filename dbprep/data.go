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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
)

/*

problem identity

*/

// The kinds of problems the solver stores.
const (
	KindSudoku   = "sudoku"
	KindMapColor = "mapcolor"
)

// ProblemID computes the content-hash id of a stored problem
// from its kind and JSON payload.  The seed loader and the
// storage layer have to agree on this, which is why it lives
// down here.
func ProblemID(kind string, payload []byte) string {
	hash := sha256.Sum256(append([]byte(kind+":"), payload...))
	return hex.EncodeToString(hash[:])
}

/*

entries

*/

type dataFunction func(pgx.Tx) error

var (
	upFunctions = []dataFunction{
		insertSeeds,
	}
	downFunctions = []dataFunction{
		deleteSeeds,
	}
)

// DataUp: load the seed data into the database.  You should do
// this after you get the schema up!
func DataUp() error {
	return applyFunctions(upFunctions)
}

// DataDown: remove the seed data from the database.  You should
// do this before you tear the schema down!
func DataDown() error {
	return applyFunctions(downFunctions)
}

// apply dataFunctions to the database.  Each is applied in a
// separate transaction, so later ones can rely on the effect of
// earlier ones having been committed.
func applyFunctions(fns []dataFunction) error {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		url = "postgres://localhost/crux?sslmode=disable"
	}
	ctx := context.Background()

	// open the database, defer the close
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	// helper that runs each function inside a transaction, and
	// ensures that any problems are rolled back.
	runFunc := func(fn dataFunction) error {
		tx, err := conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if e := recover(); e != nil {
				tx.Rollback(ctx)
				panic(e)
			}
		}()
		if err := fn(tx); err != nil {
			tx.Rollback(ctx)
			return err
		}
		return tx.Commit(ctx)
	}

	// run the functions
	for _, fn := range fns {
		if err := runFunc(fn); err != nil {
			return fmt.Errorf("%v failed: %v", fn, err)
		}
	}
	return nil
}

/*

seed problems

*/

// A seedProblem is one problem the database starts out with.
type seedProblem struct {
	name    string
	kind    string
	payload []byte
}

// sudokuPayload is the JSON shape of a stored sudoku problem,
// the same shape the solve service accepts.
type sudokuPayload struct {
	Values []int `json:"values"`
}

// mapPayload is the JSON shape of a stored coloring problem.
// An absent palette means the default palette.
type mapPayload struct {
	Adjacency map[string][]string `json:"adjacency"`
	Palette   []string            `json:"palette,omitempty"`
}

var seedGrids = []struct {
	name   string
	values []int
}{
	{"classic", []int{
		5, 3, 0, 0, 7, 0, 0, 0, 0,
		6, 0, 0, 1, 9, 5, 0, 0, 0,
		0, 9, 8, 0, 0, 0, 0, 6, 0,
		8, 0, 0, 0, 6, 0, 0, 0, 3,
		4, 0, 0, 8, 0, 3, 0, 0, 1,
		7, 0, 0, 0, 2, 0, 0, 0, 6,
		0, 6, 0, 0, 0, 0, 2, 8, 0,
		0, 0, 0, 4, 1, 9, 0, 0, 5,
		0, 0, 0, 0, 8, 0, 0, 7, 9,
	}},
	{"sample-1", []int{
		4, 0, 0, 0, 0, 3, 5, 0, 2,
		0, 0, 9, 5, 0, 6, 3, 4, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 8,
		0, 0, 0, 0, 3, 4, 8, 6, 0,
		0, 0, 4, 6, 0, 5, 2, 0, 0,
		0, 2, 8, 7, 9, 0, 0, 0, 0,
		9, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 8, 7, 3, 0, 2, 9, 0, 0,
		5, 0, 2, 9, 0, 0, 0, 0, 6,
	}},
	{"sample-2", []int{
		0, 1, 0, 5, 0, 6, 0, 2, 0,
		0, 0, 0, 0, 0, 3, 0, 1, 8,
		0, 0, 0, 0, 7, 0, 0, 0, 6,
		0, 0, 5, 0, 0, 0, 0, 3, 0,
		0, 0, 8, 0, 9, 0, 7, 0, 0,
		0, 6, 0, 0, 0, 0, 4, 0, 0,
		5, 0, 0, 0, 4, 0, 0, 0, 0,
		6, 4, 0, 2, 0, 0, 0, 0, 0,
		0, 3, 0, 9, 0, 1, 0, 8, 0,
	}},
	{"sample-3", []int{
		9, 0, 0, 4, 5, 0, 0, 0, 8,
		0, 2, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 1, 7, 2, 4, 0, 0,
		0, 7, 9, 0, 0, 0, 6, 8, 0,
		2, 0, 0, 0, 0, 0, 0, 0, 5,
		0, 4, 3, 0, 0, 0, 2, 7, 0,
		0, 0, 8, 3, 2, 5, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 6, 0,
		4, 0, 0, 0, 1, 6, 0, 0, 3,
	}},
	{"sample-4", []int{
		9, 4, 8, 0, 5, 0, 2, 0, 0,
		0, 0, 7, 8, 0, 3, 0, 0, 1,
		0, 5, 0, 0, 7, 0, 0, 0, 0,
		0, 7, 0, 0, 0, 0, 3, 0, 0,
		2, 0, 0, 6, 0, 5, 0, 0, 4,
		0, 0, 5, 0, 0, 0, 0, 9, 0,
		0, 0, 0, 0, 6, 0, 0, 1, 0,
		3, 0, 0, 5, 0, 9, 7, 0, 0,
		0, 0, 6, 0, 1, 0, 4, 2, 3,
	}},
	{"sample-5", []int{
		0, 0, 0, 0, 0, 0, 0, 0, 0,
		9, 0, 0, 5, 0, 7, 0, 3, 0,
		0, 0, 0, 1, 0, 0, 6, 0, 7,
		0, 4, 0, 0, 6, 0, 0, 8, 2,
		6, 7, 0, 0, 0, 0, 0, 1, 3,
		3, 8, 0, 0, 1, 0, 0, 9, 0,
		7, 0, 5, 0, 0, 8, 0, 0, 0,
		0, 2, 0, 3, 0, 9, 0, 0, 8,
		0, 0, 0, 0, 0, 0, 0, 0, 0,
	}},
}

// australiaAdjacency is the usual textbook coloring example.
var australiaAdjacency = map[string][]string{
	"Western Australia":  {"Northern Territory", "South Australia"},
	"Northern Territory": {"Western Australia", "South Australia", "Queensland"},
	"South Australia":    {"Western Australia", "Northern Territory", "Queensland", "New South Wales", "Victoria"},
	"Queensland":         {"Northern Territory", "South Australia", "New South Wales"},
	"New South Wales":    {"Queensland", "South Australia", "Victoria"},
	"Victoria":           {"South Australia", "New South Wales"},
	"Tasmania":           {},
}

var (
	seedProblems []seedProblem
	seedIds      []string // see init
)

// initialize the seed payloads and their ids
func init() {
	for _, sg := range seedGrids {
		payload, err := json.Marshal(sudokuPayload{Values: sg.values})
		if err != nil {
			panic(fmt.Errorf("Can't happen! Seed grid %q is invalid!", sg.name))
		}
		seedProblems = append(seedProblems, seedProblem{sg.name, KindSudoku, payload})
	}
	payload, err := json.Marshal(mapPayload{Adjacency: australiaAdjacency})
	if err != nil {
		panic(fmt.Errorf("Can't happen! Seed map is invalid!"))
	}
	seedProblems = append(seedProblems, seedProblem{"australia", KindMapColor, payload})

	seedIds = make([]string, len(seedProblems))
	for i, sp := range seedProblems {
		seedIds[i] = ProblemID(sp.kind, sp.payload)
	}
}

// Insert the seed problems
func insertSeeds(tx pgx.Tx) error {
	ctx := context.Background()
	// idempotency: if the first seed already exists, we are done
	var count int64
	row := tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM problems WHERE problemId = $1", seedIds[0])
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("Database error looking for seed %q: %v", seedProblems[0].name, err)
	}
	if count > 0 {
		return nil
	}

	// get the timestamp of this load
	now := time.Now()

	for i, sp := range seedProblems {
		_, err := tx.Exec(ctx,
			"INSERT INTO problems (problemId, kind, name, payload, created) "+
				"VALUES ($1, $2, $3, $4, $5) ON CONFLICT (problemId) DO NOTHING",
			seedIds[i], sp.kind, sp.name, sp.payload, now)
		if err != nil {
			return fmt.Errorf("Database error saving seed %q: %v", sp.name, err)
		}
	}
	return nil
}

// Delete the seed problems
func deleteSeeds(tx pgx.Tx) error {
	ctx := context.Background()
	for i, sp := range seedProblems {
		// results reference their problem, so they go first
		_, err := tx.Exec(ctx,
			"DELETE FROM results WHERE problemId = $1", seedIds[i])
		if err != nil {
			return fmt.Errorf("Database error deleting results of seed %q: %v", sp.name, err)
		}
		_, err = tx.Exec(ctx,
			"DELETE FROM problems WHERE problemId = $1", seedIds[i])
		if err != nil {
			return fmt.Errorf("Database error deleting seed %q: %v", sp.name, err)
		}
	}
	return nil
}
