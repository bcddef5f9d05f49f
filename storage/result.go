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
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

/*

stored solve results

*/

// runLogMax bounds the per-problem run log in the cache.
const runLogMax = 20

// A Result is the stored outcome of one solve run against a
// stored problem.  The payload is the kind-specific solved form
// (the solve response body for that kind); it's empty when the
// run found the problem infeasible.
type Result struct {
	RunId        string          `json:"runId"`
	ProblemId    string          `json:"problemId"`
	MRV          bool            `json:"mrv"`
	ForwardCheck bool            `json:"forwardCheck"`
	Solved       bool            `json:"solved"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Assignments  int32           `json:"assignments"`
	Backtracks   int32           `json:"backtracks"`
	ElapsedUs    int64           `json:"elapsedMicroseconds"`
}

// SaveResult stores a solve result in the database and the
// cache, assigning it a fresh run id.  The result also goes on
// the problem's run log, which keeps the most recent runs.
func SaveResult(r *Result) (err error) {
	defer guard(&err)
	if r.ProblemId == "" {
		return fmt.Errorf("Result has no problem id")
	}
	r.RunId = uuid.New().String()
	r.databaseInsert()
	r.cacheInsert()
	r.runLogAppend()
	return nil
}

// LoadResult finds the latest stored result for one problem
// solved with the given options, checking the cache before the
// database.  Returns nil if that problem hasn't been solved with
// those options yet.
func LoadResult(problemId string, mrv, forwardCheck bool) (r *Result, err error) {
	defer guard(&err)
	r = &Result{ProblemId: problemId, MRV: mrv, ForwardCheck: forwardCheck}
	if r.cacheLoad() {
		return r, nil
	}
	if !r.databaseLoad() {
		return nil, nil
	}
	r.cacheInsert()
	return r, nil
}

// LatestRun returns the most recent result on a problem's run
// log, or nil if the problem has no logged runs.
func LatestRun(problemId string) (r *Result, err error) {
	defer guard(&err)
	var bytes []byte
	body := func(tx redis.Conn) (e error) {
		bytes, e = redis.Bytes(tx.Do("LINDEX", runLogKey(problemId), -1))
		if e == redis.ErrNil {
			return nil
		}
		if e != nil {
			e = fmt.Errorf("Cache failure reading run log for %q: %v", problemId, e)
		}
		return
	}
	rdExecute(body)
	if len(bytes) == 0 {
		return nil, nil
	}
	if e := json.Unmarshal(bytes, &r); e != nil {
		return nil, fmt.Errorf("Failed to unmarshal logged run for %q: %v", problemId, e)
	}
	return r, nil
}

// RunCount returns the number of runs on a problem's run log.
func RunCount(problemId string) (count int, err error) {
	defer guard(&err)
	body := func(tx redis.Conn) (e error) {
		count, e = redis.Int(tx.Do("LLEN", runLogKey(problemId)))
		if e != nil {
			e = fmt.Errorf("Cache failure sizing run log for %q: %v", problemId, e)
		}
		return
	}
	rdExecute(body)
	return count, nil
}

/*

result entries

*/

// optionsKey: the cache key for the latest result of solving one
// problem with one set of options.
func (r *Result) optionsKey() string {
	key := "RES:" + r.ProblemId + ":"
	if r.MRV {
		key += "mrv"
	} else {
		key += "static"
	}
	if r.ForwardCheck {
		key += "+fc"
	}
	return key
}

// runLogKey: the cache key for a problem's run log.
func runLogKey(problemId string) string {
	return "RUNS:" + problemId
}

// cacheLoad: load the cached latest result for the entry's
// problem and options.  Returns whether one was cached.
func (r *Result) cacheLoad() bool {
	var bytes []byte
	body := func(tx redis.Conn) (err error) {
		bytes, err = redis.Bytes(tx.Do("GET", r.optionsKey()))
		if err == redis.ErrNil {
			return nil
		}
		if err != nil {
			err = fmt.Errorf("Cache failure loading result %q: %v", r.optionsKey(), err)
		}
		return
	}
	rdExecute(body)
	if len(bytes) == 0 {
		return false
	}
	var sr *Result
	if err := json.Unmarshal(bytes, &sr); err != nil {
		panic(fmt.Errorf("Failed to unmarshal result %q: %v", r.optionsKey(), err))
	}
	if sr.ProblemId != r.ProblemId {
		panic(fmt.Errorf("Cached result (problem %q) found for problem %q!",
			sr.ProblemId, r.ProblemId))
	}
	*r = *sr
	return true
}

// databaseLoad: load the latest saved result for the entry's
// problem and options.  Returns whether one was saved.
func (r *Result) databaseLoad() bool {
	found := true
	body := func(tx pgx.Tx) error {
		row := tx.QueryRow(pgCtx(),
			"SELECT runId, solved, payload, assignments, backtracks, elapsedUs "+
				"FROM results WHERE problemId = $1 AND mrv = $2 AND forwardCheck = $3 "+
				"ORDER BY created DESC LIMIT 1",
			r.ProblemId, r.MRV, r.ForwardCheck)
		var payload []byte
		err := row.Scan(&r.RunId, &r.Solved, &payload,
			&r.Assignments, &r.Backtracks, &r.ElapsedUs)
		if err == pgx.ErrNoRows {
			found = false
			return nil
		}
		if err != nil {
			return fmt.Errorf("Failure looking up result for %q: %v", r.ProblemId, err)
		}
		r.Payload = payload
		return nil
	}
	pgExecute(body)
	return found
}

// cacheInsert: cache the entry as the latest result for its
// problem and options.
func (r *Result) cacheInsert() {
	bytes := r.marshal()
	body := func(tx redis.Conn) (err error) {
		_, err = tx.Do("SET", r.optionsKey(), bytes)
		if err != nil {
			err = fmt.Errorf("Cache failure saving result %q: %v", r.optionsKey(), err)
		}
		return
	}
	rdExecute(body)
}

// databaseInsert: insert a new result row.  Every run gets its
// own row; lookups take the most recent.
func (r *Result) databaseInsert() {
	body := func(tx pgx.Tx) (err error) {
		_, err = tx.Exec(pgCtx(),
			"INSERT INTO results (runId, problemId, mrv, forwardCheck, solved, "+
				"payload, assignments, backtracks, elapsedUs, created) "+
				"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
			r.RunId, r.ProblemId, r.MRV, r.ForwardCheck, r.Solved,
			[]byte(r.Payload), r.Assignments, r.Backtracks, r.ElapsedUs, time.Now())
		if err != nil {
			err = fmt.Errorf("Database error saving result %q: %v", r.RunId, err)
		}
		return
	}
	pgExecute(body)
}

// runLogAppend: push the entry onto its problem's run log and
// trim the log to the newest runLogMax runs.
func (r *Result) runLogAppend() {
	bytes := r.marshal()
	body := func(tx redis.Conn) (err error) {
		key := runLogKey(r.ProblemId)
		if _, err = tx.Do("RPUSH", key, bytes); err == nil {
			_, err = tx.Do("LTRIM", key, -runLogMax, -1)
		}
		if err != nil {
			err = fmt.Errorf("Cache failure logging run %q: %v", r.RunId, err)
		}
		return
	}
	rdExecute(body)
}

func (r *Result) marshal() []byte {
	bytes, e := json.Marshal(r)
	if e != nil {
		panic(fmt.Errorf("Failed to marshal result %q: %v", r.RunId, e))
	}
	return bytes
}
