package server

import (
	"encoding/json"
	"net/http"

	"github.com/rcliao/recall/internal/errs"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	code := errs.CodeOf(err)
	if code == "" {
		code = errs.CodeServerInternal
	}
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: msg, Code: string(code)})
}

// decode reads a JSON request body into v, rejecting trailing data.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(err, errs.CodeServerRequestInvalid, "invalid request body")
	}
	if dec.More() {
		return errs.New(errs.CodeServerRequestInvalid, "invalid request body: trailing data")
	}
	return nil
}
