package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestCacheHttp(t *testing.T) {
	req := require.New(t)

	SetupCache()

	calls := 0
	e := echo.New()
	m := InitMiddleware()
	e.Use(m.AddContext())
	e.GET("/cached", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "hello")
	}, CacheHttp(time.Minute))

	do := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cached?b=2&a=1", nil))
		return rec
	}

	rec := do()
	req.Equal(http.StatusOK, rec.Code)
	req.Equal("hello", rec.Body.String())
	req.Equal(1, calls)

	// served from cache, the handler does not run again
	rec = do()
	req.Equal(http.StatusOK, rec.Code)
	req.Equal("hello", rec.Body.String())
	req.Equal(1, calls)
}
