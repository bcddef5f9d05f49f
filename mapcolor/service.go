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

package mapcolor

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ancientHacker/crux.go/csp"
)

/*

RESTful wrappers over map coloring

*/

// A SolveRequest is the posted form of one coloring: the map's
// adjacency list, an optional palette, and the search options.
type SolveRequest struct {
	Adjacency    Adjacency `json:"adjacency"`
	Palette      []string  `json:"palette,omitempty"`
	MRV          bool      `json:"mrv"`
	ForwardCheck bool      `json:"forwardCheck"`
}

// Options translates the request flags to core solver options.
func (req *SolveRequest) Options() csp.Options {
	opts := csp.Options{ForwardCheck: req.ForwardCheck}
	if req.MRV {
		opts.Selector = csp.MinRemaining
	}
	return opts
}

// errorBody is the JSON form of a failed request.
type errorBody struct {
	Message string `json:"message"`
}

// SolveHandler is a POST handler that reads a JSON-encoded
// SolveRequest from the request body, colors the map it
// describes, and sends the Result as a 200 response.  The Result
// is also returned to the golang caller.
//
// If we can't decode the posted request, or the adjacency list
// isn't a well-formed map, we send a 400 response and return the
// error to the caller.
func SolveHandler(w http.ResponseWriter, r *http.Request) (*Result, error) {
	dec := json.NewDecoder(r.Body)
	var req SolveRequest
	if e := dec.Decode(&req); e != nil {
		err := fmt.Errorf("request decode failed: %v", e)
		writeJSON(errorBody{err.Error()}, http.StatusBadRequest, w)
		return nil, err
	}
	m, e := New(req.Adjacency, req.Palette)
	if e != nil {
		writeJSON(errorBody{e.Error()}, http.StatusBadRequest, w)
		return nil, e
	}
	result := m.Solve(req.Options())
	writeJSON(result, http.StatusOK, w)
	return &result, nil
}

// writeJSON encodes and sends the client response.
func writeJSON(obj interface{}, status int, w http.ResponseWriter) {
	bytes, e := json.Marshal(obj)
	if e != nil {
		// This should never happen for the types we send, so
		// pseudo-encode the failure by hand as a quoted string.
		status = http.StatusInternalServerError
		bytes = []byte(fmt.Sprintf("%q", e.Error()))
	}
	hs := w.Header()
	hs.Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
}
