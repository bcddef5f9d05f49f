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
	"encoding/json"
	"net/http"

	"github.com/ancientHacker/crux.go/csp"
)

/*

RESTful wrappers over puzzle solving

*/

// A SolveRequest is the posted form of one solve: the puzzle's
// given values in reading order plus the search options.
type SolveRequest struct {
	Values       []int `json:"values"`
	MRV          bool  `json:"mrv"`
	ForwardCheck bool  `json:"forwardCheck"`
}

// Options translates the request flags to core solver options.
func (req *SolveRequest) Options() csp.Options {
	opts := csp.Options{ForwardCheck: req.ForwardCheck}
	if req.MRV {
		opts.Selector = csp.MinRemaining
	}
	return opts
}

// SolveHandler is a POST handler that reads a JSON-encoded
// SolveRequest from the request body, solves the puzzle it
// describes, and sends the Result as a 200 response.  The Result
// is also returned to the golang caller.
//
// If we can't decode the posted request, or the values don't
// make a puzzle, we send a 400 response and return the error to
// the caller.
func SolveHandler(w http.ResponseWriter, r *http.Request) (*Result, error) {
	dec := json.NewDecoder(r.Body)
	var req SolveRequest
	if e := dec.Decode(&req); e != nil {
		return nil, writeError(requestDecodingError, ErrorData{e.Error()}, w, r)
	}
	p, e := New(req.Values)
	if e != nil {
		err, ok := e.(Error)
		if !ok {
			err = Error{
				Scope:     ArgumentScope,
				Condition: GeneralCondition,
				Values:    ErrorData{e.Error()},
			}
		}
		err.Message = err.Error()
		return nil, writeJSON(err, http.StatusBadRequest, w, r)
	}
	result := p.Solve(req.Options())
	return &result, writeJSON(result, http.StatusOK, w, r)
}

/*

Response helpers

*/

// handlerError is the type of errors handlers can produce on
// their own (as opposed to errors from the puzzle layer).
type handlerError int

const (
	requestDecodingError handlerError = iota
	responseEncodingError
)

// writeError sends back a server error of the given type, sort
// of like http.Error, but it sends the JSON form of an
// appropriate Error.
func writeError(et handlerError, ed ErrorData,
	w http.ResponseWriter, r *http.Request) error {
	var err Error
	var status int
	switch et {
	case requestDecodingError:
		status = http.StatusBadRequest
		err = Error{
			Scope:     RequestScope,
			Attribute: DecodeAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	default:
		status = http.StatusInternalServerError
		err = Error{
			Scope:     RequestScope,
			Condition: GeneralCondition,
			Values:    ed,
		}
	}
	err.Message = err.Error()
	return writeJSON(err, status, w, r)
}

// writeJSON is called by handlers to encode and send the client
// response.  If the response being sent is itself an Error, that
// Error is returned to the handler; an encoding failure produces
// and sends its own Error.
func writeJSON(obj interface{}, status int, w http.ResponseWriter, r *http.Request) error {
	err, isErr := obj.(Error)
	bytes, e := json.Marshal(obj)
	if e != nil {
		if isErr {
			// We just failed to encode an Error.  This should
			// never happen, so pseudo-encode it by hand as a
			// quoted string.
			status = http.StatusInternalServerError
			bytes = []byte(`"` + err.Error() + `"`)
		} else {
			return writeError(responseEncodingError, ErrorData{e.Error()}, w, r)
		}
	}
	hs := w.Header()
	hs.Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
	if isErr {
		return err
	}
	return nil
}
