package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

// respond writes data as JSON with the given status code. Errors are wrapped
// in an errorResponse so clients always get an object back.
func respond(w http.ResponseWriter, data any, httpCode int) {
	var resp any
	if v, ok := data.(error); ok {
		resp = errorResponse{Error: v.Error()}
	} else {
		resp = data
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)

	if resp != nil {
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func notFound(res http.ResponseWriter, req *http.Request) {
	respond(res, fmt.Errorf("no such endpoint %q", req.URL.Path), http.StatusNotFound)
}
