package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func newTestFaker() *gofakeit.Faker {
	return gofakeit.New(42)
}

func TestParseBookID(t *testing.T) {
	id, err := ParseBookID(testBookHexID)
	assert.NoError(t, err)
	assert.Equal(t, testBookHexID, id.Hex())

	for _, raw := range []string{"", "xyz", "64a1f0c2e4b0a1b2c3d4e5f", "64a1f0c2e4b0a1b2c3d4e5fz"} {
		_, err = ParseBookID(raw)
		assert.ErrorIs(t, err, ErrInvalidBookID, raw)
	}
}

func TestDecodeBookRequestBody(t *testing.T) {
	t.Run("should pass: extra fields are ignored", func(t *testing.T) {
		var book BookRequest
		req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"id":"x","name":"","author":"B","year":-5,"isbn":"0"}`))
		require.NoError(t, DecodeBookRequestBody(req, &book))
		assert.Equal(t, BookRequest{Name: "", Author: "B", Year: -5}, book)
	})

	t.Run("should pass: trailing whitespace", func(t *testing.T) {
		var book BookRequest
		req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader("{\"name\":\"A\",\"author\":\"B\",\"year\":1}\n  \n"))
		require.NoError(t, DecodeBookRequestBody(req, &book))
		assert.Equal(t, BookRequest{Name: "A", Author: "B", Year: 1}, book)
	})

	t.Run("should fail: trailing data", func(t *testing.T) {
		var book BookRequest
		req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"name":"A","author":"B","year":1} garbage`))
		assert.ErrorIs(t, DecodeBookRequestBody(req, &book), ErrTrailingData)
	})

	t.Run("status mapping", func(t *testing.T) {
		testCases := []struct {
			name   string
			body   string
			status int
		}{
			{"syntax", `{"name"`, http.StatusBadRequest},
			{"trailing garbage", `{"name":"A","author":"B","year":1} garbage`, http.StatusBadRequest},
			{"second object", `{"name":"A","author":"B","year":1}{"x":1}`, http.StatusBadRequest},
			{"trailing garbage after incomplete object", `{"name":"A"} garbage`, http.StatusBadRequest},
			{"not an object", `[1,2]`, http.StatusUnprocessableEntity},
			{"null year", `{"name":"A","author":"B","year":null}`, http.StatusUnprocessableEntity},
			{"float year", `{"name":"A","author":"B","year":1.5}`, http.StatusUnprocessableEntity},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				var book BookRequest
				req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(tc.body))
				err := DecodeBookRequestBody(req, &book)
				require.Error(t, err)
				assert.Equal(t, tc.status, DecodeErrorStatus(err))
			})
		}
	})
}

func TestWriteResponse_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := httptest.NewRecorder()
	err := WriteResponse(ctx, w, http.StatusOK, MessageResponse{Message: "Deleted"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 499, w.Code)

	dctx, dcancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer dcancel()
	w = httptest.NewRecorder()
	err = WriteErrorResponse(dctx, w, NewAPIError("", http.StatusNotFound, msgBookNotFound))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestGetRequestSourceIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5050"
	assert.Equal(t, "10.0.0.7", GetRequestSourceIP(req))
	req.Header.Set("X-REAL-IP", "192.168.1.4")
	assert.Equal(t, "192.168.1.4", GetRequestSourceIP(req))
}

func TestRSyncWriter(t *testing.T) {
	folder := filepath.Join(t.TempDir(), "logs")
	config := &Config{LogFolder: folder, LogMaxSize: 1, IsProduction: true, LogLevel: zapcore.InfoLevel}
	w := NewRSyncWriter(config, NewMockClocker())
	logger, flush := SetupLogging(config, w)
	logger.Info("book created")
	require.NoError(t, flush())

	path := CreateLogFilePath(folder, true, NewMockClocker().Now())
	assert.Equal(t, filepath.Join(folder, "20230702.000000.prod.log"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"book created"`)

	_, err = w.Write(make([]byte, 2*1048576))
	assert.Error(t, err)
}
