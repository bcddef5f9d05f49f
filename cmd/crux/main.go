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

// The crux server: a JSON API over the constraint solver with
// storage-backed problems and results.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/ancientHacker/crux.go/csp"
	"github.com/ancientHacker/crux.go/mapcolor"
	"github.com/ancientHacker/crux.go/storage"
	"github.com/ancientHacker/crux.go/sudoku"
)

func main() {
	// connect to storage
	cacheId, databaseId, err := storage.Connect()
	if err != nil {
		log.Fatalf("Storage initialization failure: %v", err)
	}
	log.Printf("Connected to cache at %q.", cacheId)
	log.Printf("Connected to database at %q.", databaseId)

	// catch signals
	shutdownOnSignal()

	// Heroku environment port sensing
	port := os.Getenv("PORT")
	if port == "" {
		// running locally in dev mode
		port = "localhost:8080"
	} else {
		// running as a true server
		port = ":" + port
	}

	log.Printf("Listening on %s...", port)
	if err := http.ListenAndServe(port, apiMux()); err != nil {
		storage.Close()
		log.Fatal("Listener failure: ", err)
	}
}

// apiMux routes the JSON API.
func apiMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sudoku/solve", solveSudokuHandler)
	mux.HandleFunc("/api/mapcolor/solve", solveMapHandler)
	mux.HandleFunc("/api/problems", listProblemsHandler)
	mux.HandleFunc("/api/problems/", problemHandler)
	return mux
}

// shutdownOnSignal: catch signals, close storage, and exit.
func shutdownOnSignal() {
	// based on example in os.signal godoc
	c := make(chan os.Signal, 1)
	signal.Notify(c) // die on all signals

	go func() {
		s := <-c
		log.Printf("Received OS-level signal: %v", s)
		storage.Close()
		log.Fatal("Exiting: caught signal.")
	}()
}

/*

solve endpoints

*/

// options shared by every solve request body.
type solveOptions struct {
	MRV          bool `json:"mrv"`
	ForwardCheck bool `json:"forwardCheck"`
}

func (o solveOptions) cspOptions() csp.Options {
	opts := csp.Options{ForwardCheck: o.ForwardCheck}
	if o.MRV {
		opts.Selector = csp.MinRemaining
	}
	return opts
}

// the canonical stored payload of a sudoku problem.
type gridPayload struct {
	Values []int `json:"values"`
}

// the canonical stored payload of a coloring problem.
type mapPayload struct {
	Adjacency map[string][]string `json:"adjacency"`
	Palette   []string            `json:"palette,omitempty"`
}

// solveSudokuHandler handles POST /api/sudoku/solve: solve a
// posted grid, storing the problem and the result.  Repeat
// solves of a known problem with the same options are served
// from storage.
func solveSudokuHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("Handling %s %s...", r.Method, r.URL.Path)
	var req struct {
		Name   string `json:"name,omitempty"`
		Values []int  `json:"values"`
		solveOptions
	}
	if e := json.NewDecoder(r.Body).Decode(&req); e != nil {
		sendError(w, http.StatusBadRequest, fmt.Sprintf("request decode failed: %v", e))
		return
	}
	// validate before storing
	p, e := sudoku.New(req.Values)
	if e != nil {
		sendError(w, http.StatusBadRequest, e.Error())
		return
	}
	payload, e := json.Marshal(gridPayload{Values: req.Values})
	if e != nil {
		sendError(w, http.StatusInternalServerError, e.Error())
		return
	}
	id, e := saveNamed(storage.KindSudoku, req.Name, payload)
	if e != nil {
		sendError(w, http.StatusInternalServerError, e.Error())
		return
	}
	if sendStored(w, id, req.solveOptions) {
		return
	}
	result := p.Solve(req.cspOptions())
	if sendFresh(w, id, req.solveOptions, result.Solved,
		int32(result.Assignments), int32(result.Backtracks), result.ElapsedUs, result) {
		log.Printf("Solved sudoku %.8s: solved=%v assignments=%d backtracks=%d",
			id, result.Solved, result.Assignments, result.Backtracks)
	}
}

// solveMapHandler handles POST /api/mapcolor/solve the same way.
func solveMapHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("Handling %s %s...", r.Method, r.URL.Path)
	var req struct {
		Name      string              `json:"name,omitempty"`
		Adjacency map[string][]string `json:"adjacency"`
		Palette   []string            `json:"palette,omitempty"`
		solveOptions
	}
	if e := json.NewDecoder(r.Body).Decode(&req); e != nil {
		sendError(w, http.StatusBadRequest, fmt.Sprintf("request decode failed: %v", e))
		return
	}
	m, e := mapcolor.New(req.Adjacency, req.Palette)
	if e != nil {
		sendError(w, http.StatusBadRequest, e.Error())
		return
	}
	payload, e := json.Marshal(mapPayload{Adjacency: req.Adjacency, Palette: req.Palette})
	if e != nil {
		sendError(w, http.StatusInternalServerError, e.Error())
		return
	}
	id, e := saveNamed(storage.KindMapColor, req.Name, payload)
	if e != nil {
		sendError(w, http.StatusInternalServerError, e.Error())
		return
	}
	if sendStored(w, id, req.solveOptions) {
		return
	}
	result := m.Solve(req.cspOptions())
	if sendFresh(w, id, req.solveOptions, result.Solved,
		int32(result.Assignments), int32(result.Backtracks), result.ElapsedUs, result) {
		log.Printf("Colored map %.8s: solved=%v assignments=%d backtracks=%d",
			id, result.Solved, result.Assignments, result.Backtracks)
	}
}

// saveNamed stores a problem, defaulting the name from the id.
func saveNamed(kind, name string, payload []byte) (string, error) {
	if name == "" {
		name = "adhoc-" + storage.ProblemID(kind, payload)[:8]
	}
	return storage.SaveProblem(kind, name, payload)
}

// sendStored sends the stored result for a problem and options
// if there is one.  Reports whether it sent anything.
func sendStored(w http.ResponseWriter, id string, opts solveOptions) bool {
	stored, e := storage.LoadResult(id, opts.MRV, opts.ForwardCheck)
	if e != nil {
		log.Printf("Result lookup for %.8s failed: %v", id, e)
		return false
	}
	if stored == nil {
		return false
	}
	sendRaw(w, http.StatusOK, stored.Payload)
	return true
}

// sendFresh stores a fresh solve outcome and sends it.  Reports
// whether the response was sent.
func sendFresh(w http.ResponseWriter, id string, opts solveOptions,
	solved bool, assignments, backtracks int32, elapsedUs int64, body interface{}) bool {
	payload, e := json.Marshal(body)
	if e != nil {
		sendError(w, http.StatusInternalServerError, e.Error())
		return false
	}
	sr := &storage.Result{
		ProblemId:    id,
		MRV:          opts.MRV,
		ForwardCheck: opts.ForwardCheck,
		Solved:       solved,
		Payload:      payload,
		Assignments:  assignments,
		Backtracks:   backtracks,
		ElapsedUs:    elapsedUs,
	}
	if e := storage.SaveResult(sr); e != nil {
		// a solve that can't be recorded is still a solve
		log.Printf("Couldn't record result for %.8s: %v", id, e)
	}
	sendRaw(w, http.StatusOK, payload)
	return true
}

/*

problem endpoints

*/

// listProblemsHandler handles GET /api/problems.
func listProblemsHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("Handling %s %s...", r.Method, r.URL.Path)
	infos, e := storage.ListProblems()
	if e != nil {
		sendError(w, http.StatusInternalServerError, e.Error())
		return
	}
	sendJSON(w, http.StatusOK, infos)
}

// problemHandler handles the /api/problems/<id>... routes:
//
//	GET  /api/problems/<id>         the stored problem
//	GET  /api/problems/<id>/latest  its most recent logged run
//	POST /api/problems/<id>/solve   solve it (body holds options)
func problemHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("Handling %s %s...", r.Method, r.URL.Path)
	rest := strings.TrimPrefix(r.URL.Path, "/api/problems/")
	id, verb := rest, ""
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		id, verb = rest[:i], rest[i+1:]
	}
	p, e := storage.LoadProblem(id)
	if e != nil {
		sendError(w, http.StatusNotFound, fmt.Sprintf("no problem %q", id))
		return
	}
	switch verb {
	case "":
		sendJSON(w, http.StatusOK, p)
	case "latest":
		run, e := storage.LatestRun(id)
		if e != nil {
			sendError(w, http.StatusInternalServerError, e.Error())
			return
		}
		if run == nil {
			sendError(w, http.StatusNotFound, fmt.Sprintf("problem %q has no runs", id))
			return
		}
		sendJSON(w, http.StatusOK, run)
	case "solve":
		var opts solveOptions
		if e := json.NewDecoder(r.Body).Decode(&opts); e != nil {
			sendError(w, http.StatusBadRequest, fmt.Sprintf("request decode failed: %v", e))
			return
		}
		solveStoredProblem(w, p, opts)
	default:
		sendError(w, http.StatusNotFound, fmt.Sprintf("unknown action %q", verb))
	}
}

// solveStoredProblem solves a problem loaded from storage,
// dispatching on its kind.
func solveStoredProblem(w http.ResponseWriter, p *storage.Problem, opts solveOptions) {
	if sendStored(w, p.ProblemId, opts) {
		return
	}
	switch p.Kind {
	case storage.KindSudoku:
		var payload gridPayload
		if e := json.Unmarshal(p.Payload, &payload); e != nil {
			sendError(w, http.StatusInternalServerError,
				fmt.Sprintf("stored problem %.8s is corrupt: %v", p.ProblemId, e))
			return
		}
		puz, e := sudoku.New(payload.Values)
		if e != nil {
			sendError(w, http.StatusInternalServerError,
				fmt.Sprintf("stored problem %.8s is corrupt: %v", p.ProblemId, e))
			return
		}
		result := puz.Solve(opts.cspOptions())
		sendFresh(w, p.ProblemId, opts, result.Solved,
			int32(result.Assignments), int32(result.Backtracks), result.ElapsedUs, result)
	case storage.KindMapColor:
		var payload mapPayload
		if e := json.Unmarshal(p.Payload, &payload); e != nil {
			sendError(w, http.StatusInternalServerError,
				fmt.Sprintf("stored problem %.8s is corrupt: %v", p.ProblemId, e))
			return
		}
		m, e := mapcolor.New(payload.Adjacency, payload.Palette)
		if e != nil {
			sendError(w, http.StatusInternalServerError,
				fmt.Sprintf("stored problem %.8s is corrupt: %v", p.ProblemId, e))
			return
		}
		result := m.Solve(opts.cspOptions())
		sendFresh(w, p.ProblemId, opts, result.Solved,
			int32(result.Assignments), int32(result.Backtracks), result.ElapsedUs, result)
	default:
		sendError(w, http.StatusInternalServerError,
			fmt.Sprintf("stored problem %.8s has unknown kind %q", p.ProblemId, p.Kind))
	}
}

/*

response helpers

*/

func sendJSON(w http.ResponseWriter, status int, obj interface{}) {
	bytes, e := json.Marshal(obj)
	if e != nil {
		sendError(w, http.StatusInternalServerError, e.Error())
		return
	}
	sendRaw(w, status, bytes)
}

func sendError(w http.ResponseWriter, status int, message string) {
	bytes, e := json.Marshal(struct {
		Message string `json:"message"`
	}{message})
	if e != nil {
		// pseudo-encode by hand as a quoted string
		bytes = []byte(fmt.Sprintf("%q", message))
	}
	sendRaw(w, status, bytes)
}

func sendRaw(w http.ResponseWriter, status int, bytes []byte) {
	hs := w.Header()
	hs.Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
}
