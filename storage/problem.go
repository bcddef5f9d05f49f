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

package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/jackc/pgx/v5"

	"github.com/ancientHacker/crux.go/dbprep"
)

/*

stored problems

*/

// The kinds of problems the solver stores.
const (
	KindSudoku   = dbprep.KindSudoku
	KindMapColor = dbprep.KindMapColor
)

// A Problem is the stored form of one solvable problem: a sudoku
// grid or a map with its palette.  The payload is the
// JSON-encoded kind-specific content (the solve request body for
// that kind), and the id is a content hash, so the same problem
// saved twice gets the same id.
type Problem struct {
	ProblemId string          `json:"problemId"`
	Kind      string          `json:"kind"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload"`
}

// A ProblemInfo summarizes one stored problem for listings.
type ProblemInfo struct {
	ProblemId string    `json:"problemId"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Created   time.Time `json:"created"`
}

// ProblemID computes the content-hash id of a problem from its
// kind and payload.  The seed loader uses the same ids, so the
// hash itself lives in dbprep.
func ProblemID(kind string, payload []byte) string {
	return dbprep.ProblemID(kind, payload)
}

// SaveProblem stores a problem in the database and the cache and
// returns its content-hash id.  Saving a problem that is already
// stored is not an error; the stored name wins.
func SaveProblem(kind, name string, payload []byte) (id string, err error) {
	defer guard(&err)
	pe := &problemEntry{
		ProblemId: ProblemID(kind, payload),
		Kind:      kind,
		Name:      name,
		Payload:   append(json.RawMessage(nil), payload...),
	}
	pe.databaseInsert()
	pe.cacheInsert()
	return pe.ProblemId, nil
}

// LoadProblem finds the stored problem with the given id,
// checking the cache before the database.  Gives an error if no
// problem with that id is stored.
func LoadProblem(id string) (p *Problem, err error) {
	defer guard(&err)
	pe := loadProblemEntry(id)
	return &Problem{
		ProblemId: pe.ProblemId,
		Kind:      pe.Kind,
		Name:      pe.Name,
		Payload:   pe.Payload,
	}, nil
}

// ListProblems returns summaries of every stored problem,
// ordered by name.
func ListProblems() (infos []ProblemInfo, err error) {
	defer guard(&err)
	body := func(tx pgx.Tx) error {
		rows, e := tx.Query(pgCtx(),
			"SELECT problemId, kind, name, created FROM problems ORDER BY name, problemId")
		if e != nil {
			return fmt.Errorf("Failure listing problems: %v", e)
		}
		defer rows.Close()
		for rows.Next() {
			var pi ProblemInfo
			if e := rows.Scan(&pi.ProblemId, &pi.Kind, &pi.Name, &pi.Created); e != nil {
				return fmt.Errorf("Failure reading problem row: %v", e)
			}
			infos = append(infos, pi)
		}
		return rows.Err()
	}
	pgExecute(body)
	return infos, nil
}

/*

problem entries

*/

// A problemEntry represents the stored form of a problem.  It is
// JSON serializable so it can go into the cache as well as the
// database.
type problemEntry struct {
	ProblemId string
	Kind      string
	Name      string
	Payload   json.RawMessage
}

// loadProblemEntry first checks the cache, then the database, to
// find the problem's entry.  If it loads from the database, it
// caches the result.  Panics if there is no such stored entry.
func loadProblemEntry(id string) *problemEntry {
	pe := &problemEntry{ProblemId: id}
	if pe.cacheLoad() {
		return pe
	}
	// cache miss, load from database and save to cache
	pe.databaseLoad()
	pe.cacheInsert()
	return pe
}

// key: compute the cache key for a problemEntry.
func (pe *problemEntry) key() string {
	return "PRB:" + pe.ProblemId
}

// cacheLoad: load an already cached problem entry.  Returns
// whether the entry was found in the cache.
func (pe *problemEntry) cacheLoad() bool {
	var bytes []byte
	body := func(tx redis.Conn) (err error) {
		bytes, err = redis.Bytes(tx.Do("GET", pe.key()))
		if err == redis.ErrNil {
			return nil
		}
		if err != nil {
			err = fmt.Errorf("Cache failure loading problemEntry %q: %v", pe.ProblemId, err)
		}
		return
	}
	rdExecute(body)
	if len(bytes) == 0 {
		return false
	}
	var spe *problemEntry
	err := json.Unmarshal(bytes, &spe)
	if err != nil {
		panic(fmt.Errorf("Failed to unmarshal problemEntry %q: %v", pe.ProblemId, err))
	}
	if spe.ProblemId != pe.ProblemId {
		panic(fmt.Errorf("Cached problemEntry (id: %q) found for problem %q!",
			spe.ProblemId, pe.ProblemId))
	}
	*pe = *spe
	return true
}

// databaseLoad: load a problem entry from the database.  Panics
// if there is no saved entry with the given id.
func (pe *problemEntry) databaseLoad() {
	body := func(tx pgx.Tx) error {
		row := tx.QueryRow(pgCtx(),
			"SELECT kind, name, payload FROM problems WHERE problemId = $1", pe.ProblemId)
		if err := row.Scan(&pe.Kind, &pe.Name, &pe.Payload); err != nil {
			return fmt.Errorf("Failure looking up problem %q: %v", pe.ProblemId, err)
		}
		return nil
	}
	pgExecute(body)
}

// cacheInsert: insert a problem entry into the cache.  Replaces
// any existing entry with the same id.
func (pe *problemEntry) cacheInsert() {
	bytes, e := json.Marshal(pe)
	if e != nil {
		panic(fmt.Errorf("Failed to marshal problemEntry %q: %v", pe.ProblemId, e))
	}
	body := func(tx redis.Conn) (err error) {
		_, err = tx.Do("SET", pe.key(), bytes)
		if err != nil {
			err = fmt.Errorf("Cache failure saving problem entry %q: %v", pe.ProblemId, err)
		}
		return
	}
	rdExecute(body)
}

// databaseInsert: insert a problem entry into the database.
// Because ids are content hashes, inserting an entry that is
// already saved just keeps the saved one.
func (pe *problemEntry) databaseInsert() {
	body := func(tx pgx.Tx) (err error) {
		_, err = tx.Exec(pgCtx(),
			"INSERT INTO problems (problemId, kind, name, payload, created) "+
				"VALUES ($1, $2, $3, $4, $5) ON CONFLICT (problemId) DO NOTHING",
			pe.ProblemId, pe.Kind, pe.Name, []byte(pe.Payload), time.Now())
		if err != nil {
			err = fmt.Errorf("Database error saving problem entry %q: %v", pe.ProblemId, err)
		}
		return
	}
	pgExecute(body)
}
