package mapcolor

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func postSolve(t *testing.T, body string) (*httptest.ResponseRecorder, *Result, error) {
	t.Helper()
	r := httptest.NewRequest("POST", "/api/mapcolor/solve", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	result, err := SolveHandler(w, r)
	return w, result, err
}

func TestSolveHandler(t *testing.T) {
	req := SolveRequest{Adjacency: australiaAdjacency, MRV: true}
	body, e := json.Marshal(req)
	if e != nil {
		t.Fatalf("Failed to encode request: %v", e)
	}
	w, result, err := postSolve(t, string(body))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type %q", ct)
	}
	if result == nil || !result.Solved {
		t.Fatalf("handler result not solved: %+v", result)
	}
	var sent Result
	if e := json.Unmarshal(w.Body.Bytes(), &sent); e != nil {
		t.Fatalf("Failed to decode response: %v", e)
	}
	if !sent.Solved || len(sent.Colors) != len(australiaAdjacency) {
		t.Errorf("bad response body: %+v", sent)
	}
}

func TestSolveHandlerBadJSON(t *testing.T) {
	w, result, err := postSolve(t, "{adjacency:")
	if err == nil || result != nil {
		t.Fatalf("handler accepted garbage: %+v", result)
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSolveHandlerBadMap(t *testing.T) {
	w, result, err := postSolve(t, `{"adjacency": {"a": ["a"]}}`)
	if err == nil || result != nil {
		t.Fatalf("handler accepted a self-bordering region: %+v", result)
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("status %d, want %d", w.Code, http.StatusBadRequest)
	}
	var sent errorBody
	if e := json.Unmarshal(w.Body.Bytes(), &sent); e != nil {
		t.Fatalf("Failed to decode error response: %v", e)
	}
	if sent.Message == "" {
		t.Errorf("error response has no message")
	}
}
