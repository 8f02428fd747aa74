package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestMiddlewareAPIHandler() (*APIHandler, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	api := NewAPIHandler(zap.New(core), &Config{}, &Statistics{started: NewMockClocker().Now()}, NewMockClocker(), NewMockUIDHandler("abc"), nil)
	return api, logs
}

// TestMiddlewaresStacks ensures we get both public and ops middlewares
// stacks with exact number of elements in those stacks.
func TestMiddlewaresStacks(t *testing.T) {
	api, _ := newTestMiddlewareAPIHandler()
	pub, ops := api.MiddlewaresStacks()
	assert.Equal(t, 6, len(*pub))
	assert.Equal(t, 4, len(*ops))
}

// TestChain ensures each middleware in the stack is called as well the handler.
func TestChain(t *testing.T) {
	var ca, cb, cc, ch bool
	queue := make(chan int, 4)

	middlewareA := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 1
			ca = true
			next(w, r, ps)
		}
	}
	middlewareB := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 2
			cb = true
			next(w, r, ps)
		}
	}
	middlewareC := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 3
			cc = true
			next(w, r, ps)
		}
	}
	middlewares := Middlewares{
		middlewareA,
		middlewareB,
		middlewareC,
	}

	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		queue <- 4
		ch = true
	}

	chained := (&middlewares).Chain(handler)
	req := httptest.NewRequest("GET", "/books", nil)
	w := httptest.NewRecorder()
	chained(w, req, nil)

	t.Run("check calling", func(t *testing.T) {
		assert.Equal(t, true, ca)
		assert.Equal(t, true, cb)
		assert.Equal(t, true, cc)
		assert.Equal(t, true, ch)
	})

	t.Run("check ordering", func(t *testing.T) {
		assert.Equal(t, 1, <-queue)
		assert.Equal(t, 2, <-queue)
		assert.Equal(t, 3, <-queue)
		assert.Equal(t, 4, <-queue)
	})
}

// TestRequestsCounterMiddleware ensures the request counter increment.
func TestRequestsCounterMiddleware(t *testing.T) {
	api, _ := newTestMiddlewareAPIHandler()
	req := httptest.NewRequest("GET", "/books", nil)
	w := httptest.NewRecorder()
	var num uint64
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		num = GetRequestNumberFromContext(req.Context())
	}
	wrapped := api.RequestsCounterMiddleware(handler)
	wrapped(w, req, nil)
	wrapped(w, req, nil)
	assert.Equal(t, uint64(2), num)
	assert.Equal(t, uint64(2), api.stats.called)
}

func TestRequestIDMiddleware(t *testing.T) {
	api, _ := newTestMiddlewareAPIHandler()
	req := httptest.NewRequest("GET", "/books", nil)
	w := httptest.NewRecorder()
	var requestID string
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		requestID = GetValueFromContext(req.Context(), RequestIDContextKey)
	}
	api.RequestIDMiddleware(handler)(w, req, nil)
	assert.Equal(t, "r:abc", requestID)
	assert.Equal(t, "r:abc", w.Header().Get("X-Request-ID"))
}

func TestCoreMiddleware(t *testing.T) {
	api, logs := newTestMiddlewareAPIHandler()
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		w.WriteHeader(http.StatusTeapot)
	}
	wrapped := api.CoreMiddleware(handler)
	wrapped(httptest.NewRecorder(), httptest.NewRequest("GET", "/books", nil), nil)

	assert.Equal(t, uint64(1), api.stats.status[http.StatusTeapot])
	require.Equal(t, 1, logs.FilterMessage("request").Len())
	responses := logs.FilterMessage("response").All()
	require.Len(t, responses, 1)
	assert.Equal(t, int64(http.StatusTeapot), responses[0].ContextMap()["response.status"])

	var sb strings.Builder
	api.metrics.WritePrometheus(&sb)
	assert.Contains(t, sb.String(), `books_http_requests_total{method="GET",code="418"} 1`)
	assert.Contains(t, sb.String(), `books_http_request_duration_seconds_bucket`)
}

func TestMaintenanceModeMiddleware(t *testing.T) {
	api, _ := newTestMiddlewareAPIHandler()
	var called bool
	wrapped := api.MaintenanceModeMiddleware(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		called = true
	})

	w := httptest.NewRecorder()
	wrapped(w, httptest.NewRequest("GET", "/books", nil), nil)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)

	called = false
	api.mode.enabled.Store(true)
	api.mode.message = "upgrading storage"
	w = httptest.NewRecorder()
	wrapped(w, httptest.NewRequest("GET", "/books", nil), nil)
	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"requestid":"", "status":503, "message":"upgrading storage"}`, w.Body.String())
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	api := NewAPIHandler(zap.New(core), &Config{}, &Statistics{}, NewMockClocker(), NewMockUIDHandler("abc"), nil)
	wrapped := api.PanicRecoveryMiddleware(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		panic("boom")
	})
	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		wrapped(w, httptest.NewRequest("GET", "/books", nil), nil)
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic occurred").Len())

	t.Run("should keep request id", func(t *testing.T) {
		stack := &Middlewares{api.PanicRecoveryMiddleware, api.RequestIDMiddleware}
		h := stack.Chain(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
			panic("boom")
		})
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest("GET", "/books", nil), nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "r:abc", w.Header().Get("X-Request-ID"))
		assert.JSONEq(t, `{"requestid":"r:abc", "status":500, "message":"failed to process the request."}`, w.Body.String())
		entries := logs.FilterMessage("panic occurred").All()
		require.Len(t, entries, 2)
		assert.Equal(t, "r:abc", entries[1].ContextMap()["request.id"])
	})
}

func TestCORSMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	CORSMiddleware(func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {})(w, httptest.NewRequest("GET", "/", nil), nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
