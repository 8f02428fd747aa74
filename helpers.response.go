package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// StatusResponseWriter is a wrapper for http.ResponseWriter. It is
// used to record response details like status code and body size.
type StatusResponseWriter struct {
	http.ResponseWriter
	code  int
	bytes int
	wrote bool
}

// NewStatusResponseWriter provides StatusResponseWriter with 200 as status code.
func NewStatusResponseWriter(rw http.ResponseWriter) *StatusResponseWriter {
	return &StatusResponseWriter{
		ResponseWriter: rw,
		code:           http.StatusOK,
	}
}

// WriteHeader implements http.WriteHeader interface.
func (sw *StatusResponseWriter) WriteHeader(code int) {
	if !sw.wrote {
		sw.code = code
		sw.wrote = true
		sw.ResponseWriter.WriteHeader(code)
	}
}

// Write implements http.Write interface.
func (sw *StatusResponseWriter) Write(bytes []byte) (int, error) {
	if !sw.wrote {
		sw.WriteHeader(sw.code)
	}
	n, err := sw.ResponseWriter.Write(bytes)
	sw.bytes += n
	return n, err
}

// Status returns the written status code.
func (sw *StatusResponseWriter) Status() int {
	return sw.code
}

// Bytes returns bytes written as response body.
func (sw *StatusResponseWriter) Bytes() int {
	return sw.bytes
}

// Unwrap returns native response writer and used by
// the http.ResponseController during its operation.
func (sw *StatusResponseWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// APIError is the data model sent when an error occurred during request processing.
type APIError struct {
	RequestID string `json:"requestid"`
	Status    int    `json:"status"`
	Message   string `json:"message"`
}

func NewAPIError(requestid string, status int, message string) *APIError {
	return &APIError{
		RequestID: requestid,
		Status:    status,
		Message:   message,
	}
}

// WriteErrorResponse is used to send error response to client. In case the client closes the request,
// it sets the Nginx non standard status code 499 (Client Closed Request) so that the stats reflect it.
func WriteErrorResponse(ctx context.Context, w http.ResponseWriter, errResp *APIError) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.WriteHeader(http.StatusGatewayTimeout)
		} else {
			w.WriteHeader(499)
		}
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(errResp.Status)
	return json.NewEncoder(w).Encode(errResp)
}

// WriteResponse is used to send success api response to client. The
// data is encoded as is, without any envelope.
func WriteResponse(ctx context.Context, w http.ResponseWriter, status int, data interface{}) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.WriteHeader(http.StatusGatewayTimeout)
		} else {
			w.WriteHeader(499)
		}
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}
