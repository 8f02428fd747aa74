package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrBookNotFound   = errors.New("book not found")
	ErrBookNameExists = errors.New("book name already exists")
	ErrInvalidBookID  = errors.New("invalid book id")
	ErrEmptyBody      = errors.New("request body is empty")
	ErrTrailingData   = errors.New("request body has data after the json object")
)

type (
	ContextKey        string
	missingFieldError string
)

const (
	RequestIDPrefix         string     = "r"
	RequestIDContextKey     ContextKey = "request.id"
	RequestNumberContextKey ContextKey = "request.number"
)

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

// ConfigError reports a mandatory setting which is missing or empty.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return e.Key + " not set"
}

// ConnectionError reports a storage which could not be reached at startup.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// PayloadError reports a request body which could be read as json
// but does not match the expected book shape.
type PayloadError struct {
	Err error
}

func (e *PayloadError) Error() string {
	return e.Err.Error()
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val, ok := ctx.Value(contextKey).(string); ok {
		return val
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val, ok := ctx.Value(RequestNumberContextKey).(uint64); ok {
		return val
	}
	return 0
}

// ParseBookID converts the raw path value into the storage id type.
func ParseBookID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidBookID
	}
	return oid, nil
}

// DecodeBookRequestBody is a helper function to read the content of a book creation or update request.
// Syntax errors are returned as is while missing fields or mismatched types come as *PayloadError.
func DecodeBookRequestBody(r *http.Request, book *BookRequest) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}

	var payload struct {
		Name   *string `json:"name"`
		Author *string `json:"author"`
		Year   *int32  `json:"year"`
	}
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&payload)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &PayloadError{Err: err}
	}
	if err != nil {
		return err
	}
	if err = dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}

	switch {
	case payload.Name == nil:
		return &PayloadError{Err: missingFieldError("name")}
	case payload.Author == nil:
		return &PayloadError{Err: missingFieldError("author")}
	case payload.Year == nil:
		return &PayloadError{Err: missingFieldError("year")}
	}

	book.Name = *payload.Name
	book.Author = *payload.Author
	book.Year = *payload.Year
	return nil
}

// DecodeErrorStatus maps a body decoding failure to its status code.
func DecodeErrorStatus(err error) int {
	var perr *PayloadError
	if errors.As(err, &perr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		ip = strings.TrimSpace(ip)
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
