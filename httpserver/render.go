package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorBody is the JSON document rendered for aborted sessions and unmatched requests.
type ErrorBody struct {
	Status  int      `json:"status"`
	Code    string   `json:"code,omitempty"`
	Message string   `json:"message"`
	Causes  []string `json:"causes,omitempty"`
}

type httpStatuser interface{ HTTPStatus() int }

type coder interface{ Code() string }

type messager interface{ Message() string }

// NewErrorBody describes err. The status comes from the first error in the chain with an
// HTTPStatus() int method, 500 otherwise. The code comes from the first error with a
// Code() string method. Causes list the error's direct causes.
func NewErrorBody(err error) ErrorBody {
	body := ErrorBody{Status: http.StatusInternalServerError}
	if err == nil {
		body.Message = http.StatusText(body.Status)
		return body
	}

	var hs httpStatuser
	if errors.As(err, &hs) {
		if s := hs.HTTPStatus(); s >= 400 && s <= 599 {
			body.Status = s
		}
	}
	var c coder
	if errors.As(err, &c) {
		body.Code = c.Code()
	}
	if m, ok := err.(messager); ok {
		body.Message = m.Message()
	} else {
		body.Message = err.Error()
	}

	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, cause := range u.Unwrap() {
			if cause != nil {
				body.Causes = append(body.Causes, cause.Error())
			}
		}
	case interface{ Unwrap() error }:
		if cause := u.Unwrap(); cause != nil {
			body.Causes = append(body.Causes, cause.Error())
		}
	}
	return body
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}

func writeError(w http.ResponseWriter, body ErrorBody) error {
	w.Header().Set("Content-Type", "application/json")
	return writeJSON(w, body.Status, body)
}

// writeView renders a completed view.
func writeView(w http.ResponseWriter, view *View) error {
	for k, vs := range view.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := view.Status
	if status == 0 {
		status = http.StatusOK
	}

	switch body := view.Body.(type) {
	case nil:
		w.WriteHeader(status)
		return nil
	case []byte:
		w.WriteHeader(status)
		_, err := w.Write(body)
		return err
	case string:
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
		w.WriteHeader(status)
		_, err := w.Write([]byte(body))
		return err
	default:
		return writeJSON(w, status, body)
	}
}
