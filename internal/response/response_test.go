package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(HeaderRequestID, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { Success(c, http.StatusOK, nil) })

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{name: "client id kept", header: "edge-7f3a_01.b", keep: true},
		{name: "missing id minted", header: ""},
		{name: "unsafe id replaced", header: "abc\r\nX-Evil: 1"},
		{name: "long id replaced", header: strings.Repeat("a", 65)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.header)

			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			got := w.Header().Get(HeaderRequestID)
			assert.NotEmpty(t, got)
			assert.Equal(t, got, body.Metadata.RequestID)
			if tt.keep {
				assert.Equal(t, tt.header, got)
			} else {
				assert.NotEqual(t, tt.header, got)
			}
		})
	}
}

func TestUnauthorizedRepliesChallenge(t *testing.T) {
	r := gin.New()
	r.GET("/pending", func(c *gin.Context) { AbortFail(c, http.StatusUnauthorized, ErrSessionPending) })
	r.GET("/missing", func(c *gin.Context) { Fail(c, http.StatusUnauthorized, ErrTokenRequired) })
	r.GET("/forbidden", func(c *gin.Context) { Fail(c, http.StatusForbidden, ErrPermissionDenied) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pending", nil))
	assert.Equal(t, `Bearer realm="portal"`, w.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrSessionPending, body.Error.Code)
	assert.Equal(t, GetMessage(ErrSessionPending), body.Error.Message)
	assert.NotEmpty(t, body.Metadata.RequestID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
	assert.Empty(t, w.Header().Get("Retry-After"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/forbidden", nil))
	assert.Empty(t, w.Header().Get("WWW-Authenticate"))
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, 3, NewPagination(1, 20, 41).TotalPages)
	assert.Equal(t, 0, NewPagination(1, 20, 0).TotalPages)
	assert.Equal(t, 0, NewPagination(1, 0, 5).TotalPages)
}
