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

// Command-line client for the crux solver and its stored problems
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/ancientHacker/crux.go/csp"
	"github.com/ancientHacker/crux.go/mapcolor"
	"github.com/ancientHacker/crux.go/storage"
	"github.com/ancientHacker/crux.go/sudoku"
)

func main() {
	// establish storage connections
	if _, _, err := storage.Connect(); err != nil {
		log.Printf("Storage failure: %v", err)
		shutdown(startupFailureShutdown)
	}
	defer storage.Close()

	// catch signals
	shutdownOnSignal()

	// serve
	err := listener(os.Stdout, os.Stdin)
	if err != nil {
		log.Printf("CLI failure: %v", err)
		shutdown(listenerFailureShutdown)
	}
}

/*

CLI listener

*/

type request struct {
	inline  string
	command string
	args    []string
}

// listener reads lines and dispatches them to handlers
func listener(out io.Writer, in io.Reader) error {
	// if we are on a terminal, we do prompting
	// (see http://stackoverflow.com/questions/22744443/ for source)
	prompt := false
	if f, ok := out.(*os.File); ok {
		if stat, _ := f.Stat(); (stat.Mode() & os.ModeCharDevice) != 0 {
			prompt = true
		}
	}

	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprintf(out, "crux> ")
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				if prompt {
					fmt.Fprintf(out, " (read error)\n")
				}
				return err
			}
			// ignore any input before the EOF
			if prompt {
				fmt.Fprintf(out, " (EOF)\n")
			}
			return nil
		}
		r := &request{inline: strings.Trim(scanner.Text(), " \t\r\n")}
		args := strings.Split(r.inline, " ")
		r.command = strings.ToLower(args[0])
		switch r.command {
		case "":
			continue
		case "quit":
			fallthrough
		case "exit":
			return nil
		}
		for _, arg := range args[1:] {
			if len(arg) > 0 {
				r.args = append(r.args, arg)
			}
		}
		dispatchCommand(out, r)
	}
}

// command dispatching
type commandInfo struct {
	command     string
	argInfo     string
	description string
	handler     func(io.Writer, *request)
}

// the command dispatch info is sorted for easy usage printing,
// and then hashed for rapid dispatching
var (
	dispatchInfo  []commandInfo
	dispatchTable map[string]*commandInfo
)

func init() {
	dispatchInfo = []commandInfo{
		{"help", "", "show the commands", helpHandler},
		{"latest", "problem", "show the latest run of a problem", latestHandler},
		{"list", "", "list the stored problems", listHandler},
		{"show", "problem", "show a stored problem", showHandler},
		{"solve", "problem [mrv] [fc]", "solve a stored problem", solveHandler},
	}
	dispatchTable = make(map[string]*commandInfo, len(dispatchInfo))
	for i := range dispatchInfo {
		dispatchTable[dispatchInfo[i].command] = &dispatchInfo[i]
	}
}

func dispatchCommand(w io.Writer, r *request) {
	defer func() {
		if err := recover(); err != nil {
			errorHandler(err, w, r)
		}
	}()

	ci := dispatchTable[r.command]
	if ci == nil {
		usageHandler(fmt.Sprintf("%q is not a known command", r.command), w, r)
	} else {
		ci.handler(w, r)
	}
}

/*

request handlers

*/

func helpHandler(w io.Writer, r *request) {
	fmt.Fprintf(w, "Commands:\n")
	for _, ci := range dispatchInfo {
		fmt.Fprintf(w, "  %-24s %s\n",
			strings.TrimSpace(ci.command+" "+ci.argInfo), ci.description)
	}
	fmt.Fprintf(w, "  %-24s %s\n", "quit", "leave the client")
	fmt.Fprintf(w, "Problems can be named by their stored name or a unique id prefix.\n")
}

func listHandler(w io.Writer, r *request) {
	infos, err := storage.ListProblems()
	if err != nil {
		panic(err)
	}
	if len(infos) == 0 {
		fmt.Fprintf(w, "No stored problems.\n")
		return
	}
	for _, pi := range infos {
		fmt.Fprintf(w, "%.8s  %-8s  %s\n", pi.ProblemId, pi.Kind, pi.Name)
	}
}

func showHandler(w io.Writer, r *request) {
	if len(r.args) != 1 {
		usageHandler(fmt.Sprintf("%s requires one argument", r.command), w, r)
		return
	}
	p := findProblem(w, r.args[0])
	if p == nil {
		return
	}
	fmt.Fprintf(w, "Problem %.8s (%s) %q:\n", p.ProblemId, p.Kind, p.Name)
	switch p.Kind {
	case storage.KindSudoku:
		puz := storedPuzzle(p)
		fmt.Fprintf(w, "%v", puz)
	case storage.KindMapColor:
		m := storedMap(p)
		for _, region := range m.Regions() {
			fmt.Fprintf(w, "  %s: %s\n", region, strings.Join(m.Neighbors(region), ", "))
		}
		fmt.Fprintf(w, "Palette: %s\n", strings.Join(m.Palette(), ", "))
	}
}

func solveHandler(w io.Writer, r *request) {
	if len(r.args) < 1 {
		usageHandler(fmt.Sprintf("%s requires a problem argument", r.command), w, r)
		return
	}
	p := findProblem(w, r.args[0])
	if p == nil {
		return
	}
	var mrv, fc bool
	for _, arg := range r.args[1:] {
		switch strings.ToLower(arg) {
		case "mrv":
			mrv = true
		case "fc":
			fc = true
		case "plain":
			mrv, fc = false, false
		default:
			usageHandler(fmt.Sprintf("%q is not a solve flag (want mrv, fc, or plain)", arg), w, r)
			return
		}
	}
	opts := csp.Options{ForwardCheck: fc}
	if mrv {
		opts.Selector = csp.MinRemaining
	}

	switch p.Kind {
	case storage.KindSudoku:
		puz := storedPuzzle(p)
		result := puz.Solve(opts)
		if !result.Solved {
			fmt.Fprintf(w, "Unsolvable.\n")
		} else {
			fmt.Fprintf(w, "%s", puz.GridString(result.Values))
		}
		fmt.Fprintf(w, "Assignments: %d, Backtracks: %d, Elapsed: %dus\n",
			result.Assignments, result.Backtracks, result.ElapsedUs)
		recordRun(w, p, mrv, fc, result.Solved,
			int32(result.Assignments), int32(result.Backtracks), result.ElapsedUs, result)
	case storage.KindMapColor:
		m := storedMap(p)
		result := m.Solve(opts)
		if !result.Solved {
			fmt.Fprintf(w, "Uncolorable with this palette.\n")
		} else {
			regions := make([]string, 0, len(result.Colors))
			for region := range result.Colors {
				regions = append(regions, region)
			}
			sort.Strings(regions)
			for _, region := range regions {
				fmt.Fprintf(w, "  %s: %s\n", region, result.Colors[region])
			}
		}
		fmt.Fprintf(w, "Assignments: %d, Backtracks: %d, Elapsed: %dus\n",
			result.Assignments, result.Backtracks, result.ElapsedUs)
		recordRun(w, p, mrv, fc, result.Solved,
			int32(result.Assignments), int32(result.Backtracks), result.ElapsedUs, result)
	}
}

func latestHandler(w io.Writer, r *request) {
	if len(r.args) != 1 {
		usageHandler(fmt.Sprintf("%s requires one argument", r.command), w, r)
		return
	}
	p := findProblem(w, r.args[0])
	if p == nil {
		return
	}
	run, err := storage.LatestRun(p.ProblemId)
	if err != nil {
		panic(err)
	}
	if run == nil {
		fmt.Fprintf(w, "Problem %.8s has no logged runs.\n", p.ProblemId)
		return
	}
	fmt.Fprintf(w, "Run %s of problem %.8s:\n", run.RunId, run.ProblemId)
	fmt.Fprintf(w, "  Options: mrv=%v forwardCheck=%v\n", run.MRV, run.ForwardCheck)
	fmt.Fprintf(w, "  Solved: %v\n", run.Solved)
	fmt.Fprintf(w, "  Assignments: %d, Backtracks: %d, Elapsed: %dus\n",
		run.Assignments, run.Backtracks, run.ElapsedUs)
}

func usageHandler(msg string, w io.Writer, r *request) {
	fmt.Fprintf(w, "Error: %s.\n", msg)
	if ci := dispatchTable[r.command]; ci != nil {
		fmt.Fprintf(w, "Usage: %s %s (%s)\n", ci.command, ci.argInfo, ci.description)
	} else {
		fmt.Fprintf(w, "Use 'help' for the command list.\n")
	}
}

func errorHandler(err interface{}, w io.Writer, r *request) {
	fmt.Fprintf(w, "Error executing %q: %v\n", r.inline, err)
}

/*

stored problem helpers

*/

// findProblem resolves a stored name or unique id prefix to its
// problem, reporting failures to the user.
func findProblem(w io.Writer, key string) *storage.Problem {
	infos, err := storage.ListProblems()
	if err != nil {
		panic(err)
	}
	var matches []string
	for _, pi := range infos {
		if pi.Name == key {
			matches = []string{pi.ProblemId}
			break
		}
		if strings.HasPrefix(pi.ProblemId, key) {
			matches = append(matches, pi.ProblemId)
		}
	}
	switch len(matches) {
	case 0:
		fmt.Fprintf(w, "No stored problem matches %q; try 'list'.\n", key)
		return nil
	case 1:
		p, err := storage.LoadProblem(matches[0])
		if err != nil {
			panic(err)
		}
		return p
	default:
		fmt.Fprintf(w, "%q matches %d problems; give more of the id.\n", key, len(matches))
		return nil
	}
}

func storedPuzzle(p *storage.Problem) *sudoku.Puzzle {
	var payload struct {
		Values []int `json:"values"`
	}
	if err := json.Unmarshal(p.Payload, &payload); err != nil {
		panic(fmt.Errorf("Stored problem %.8s is corrupt: %v", p.ProblemId, err))
	}
	puz, err := sudoku.New(payload.Values)
	if err != nil {
		panic(fmt.Errorf("Stored problem %.8s is corrupt: %v", p.ProblemId, err))
	}
	return puz
}

func storedMap(p *storage.Problem) *mapcolor.Map {
	var payload struct {
		Adjacency map[string][]string `json:"adjacency"`
		Palette   []string            `json:"palette,omitempty"`
	}
	if err := json.Unmarshal(p.Payload, &payload); err != nil {
		panic(fmt.Errorf("Stored problem %.8s is corrupt: %v", p.ProblemId, err))
	}
	m, err := mapcolor.New(payload.Adjacency, payload.Palette)
	if err != nil {
		panic(fmt.Errorf("Stored problem %.8s is corrupt: %v", p.ProblemId, err))
	}
	return m
}

// recordRun saves a finished solve to storage; a failure to
// record doesn't fail the solve.
func recordRun(w io.Writer, p *storage.Problem, mrv, fc, solved bool,
	assignments, backtracks int32, elapsedUs int64, body interface{}) {
	payload, err := json.Marshal(body)
	if err != nil {
		fmt.Fprintf(w, "Couldn't record the run: %v\n", err)
		return
	}
	sr := &storage.Result{
		ProblemId:    p.ProblemId,
		MRV:          mrv,
		ForwardCheck: fc,
		Solved:       solved,
		Payload:      payload,
		Assignments:  assignments,
		Backtracks:   backtracks,
		ElapsedUs:    elapsedUs,
	}
	if err := storage.SaveResult(sr); err != nil {
		fmt.Fprintf(w, "Couldn't record the run: %v\n", err)
	}
}

/*

coordinate shutdown across goroutines and top-level caller

*/

type shutdownCause int

const (
	unknownShutdown = iota
	startupFailureShutdown
	caughtSignalShutdown
	listenerFailureShutdown
)

// for testing, allow alternate forms of shutdown
var alternateShutdown func(reason shutdownCause)

// shutdown: process exit with logging.
func shutdown(reason shutdownCause) {
	storage.Close()

	// for testing: run alternateShutdown instead, if defined
	if alternateShutdown != nil {
		alternateShutdown(reason)
		panic(reason) // shouldn't get here
	}

	// log reason for shutdown and exit
	switch reason {
	case unknownShutdown:
		log.Fatal("Exiting: normal shutdown.")
	case startupFailureShutdown:
		log.Fatal("Exiting: initialization failure.")
	case caughtSignalShutdown:
		log.Fatal("Exiting: caught signal.")
	case listenerFailureShutdown:
		log.Fatal("Exiting: CLI failure.")
	default:
		log.Fatal("Exiting: unknown cause.")
	}
}

// shutdownOnSignal: catch signals and exit.
func shutdownOnSignal() {
	// based on example in os.signal godoc
	c := make(chan os.Signal, 1)
	signal.Notify(c) // die on all signals

	go func() {
		s := <-c
		log.Printf("Received OS-level signal: %v", s)
		shutdown(caughtSignalShutdown)
	}()
}
