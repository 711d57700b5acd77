package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/todo-app/internal/config"
	"github.com/iliyamo/todo-app/internal/logging"
	"github.com/iliyamo/todo-app/internal/model"
)

type cacheFixture struct {
	mr    *miniredis.Miniredis
	e     *echo.Echo
	lists map[uint64]string
	hits  int

	// when set, GET signals read after taking its snapshot and waits on resume
	read   chan struct{}
	resume chan struct{}
}

func newCacheFixture(t *testing.T, enabled bool) *cacheFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &cacheFixture{mr: mr, e: echo.New(), lists: map[uint64]string{}}
	cfg := config.CacheConfig{Enabled: enabled, TTL: time.Minute, Prefix: "test", MaxBodyBytes: 1 << 20}

	// stand-in for JWTAuth: the user id comes from a test header
	fakeAuth := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Header.Get("X-Test-User") {
			case "1":
				SetUser(c, &model.User{ID: 1})
			case "2":
				SetUser(c, &model.User{ID: 2})
			}
			return next(c)
		}
	}
	g := f.e.Group("/api/todos", fakeAuth, TodoListCache(cfg, rdb, logging.Discard()))
	g.GET("", func(c echo.Context) error {
		f.hits++
		u, _ := CurrentUser(c)
		snapshot := f.lists[u.ID]
		if f.read != nil {
			f.read <- struct{}{}
			<-f.resume
		}
		return c.JSONBlob(http.StatusOK, []byte(snapshot))
	})
	g.POST("", func(c echo.Context) error {
		u, _ := CurrentUser(c)
		f.lists[u.ID] = `[{"id":9}]`
		return c.NoContent(http.StatusCreated)
	})
	g.DELETE("/:id", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Todo not found"})
	})
	return f
}

func (f *cacheFixture) do(method, user string) *httptest.ResponseRecorder {
	path := "/api/todos"
	if method == http.MethodDelete {
		path += "/1"
	}
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Test-User", user)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestTodoListCache_HitMissAndInvalidate(t *testing.T) {
	f := newCacheFixture(t, true)
	f.lists[1] = `[]`

	rec := f.do(http.MethodGet, "1")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, `[]`, rec.Body.String())
	assert.True(t, f.mr.Exists("test:todos:user:1:0"))

	rec = f.do(http.MethodGet, "1")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[]`, rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/json")
	assert.Equal(t, 1, f.hits)

	rec = f.do(http.MethodPost, "1")
	require.Equal(t, http.StatusCreated, rec.Code)
	gen, err := f.mr.Get("test:todos:gen:1")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)
	assert.False(t, f.mr.Exists("test:todos:user:1:0"))

	rec = f.do(http.MethodGet, "1")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, `[{"id":9}]`, rec.Body.String())
	assert.True(t, f.mr.Exists("test:todos:user:1:1"))
}

func TestTodoListCache_ReadOverlappingOwnWrite(t *testing.T) {
	f := newCacheFixture(t, true)
	f.lists[1] = `[]`
	f.read = make(chan struct{})
	f.resume = make(chan struct{})

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- f.do(http.MethodGet, "1") }()

	// the GET holds the old list while the same user's write commits
	<-f.read
	rec := f.do(http.MethodPost, "1")
	require.Equal(t, http.StatusCreated, rec.Code)
	close(f.resume)

	slow := <-done
	assert.Equal(t, `[]`, slow.Body.String())
	f.read, f.resume = nil, nil

	rec = f.do(http.MethodGet, "1")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, `[{"id":9}]`, rec.Body.String())

	rec = f.do(http.MethodGet, "1")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, `[{"id":9}]`, rec.Body.String())
}

func TestTodoListCache_KeyedPerUser(t *testing.T) {
	f := newCacheFixture(t, true)
	f.lists[1] = `[{"id":1}]`
	f.lists[2] = `[]`

	f.do(http.MethodGet, "1")
	rec := f.do(http.MethodGet, "2")

	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, `[]`, rec.Body.String())
}

func TestTodoListCache_FailedWriteKeepsEntry(t *testing.T) {
	f := newCacheFixture(t, true)
	f.lists[1] = `[]`

	f.do(http.MethodGet, "1")
	rec := f.do(http.MethodDelete, "1")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, f.mr.Exists("test:todos:user:1:0"))
	assert.False(t, f.mr.Exists("test:todos:gen:1"))
}

func TestTodoListCache_WritesDoNotPopulate(t *testing.T) {
	f := newCacheFixture(t, true)

	rec := f.do(http.MethodDelete, "1")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, f.mr.Keys())
}

func TestTodoListCache_Disabled(t *testing.T) {
	f := newCacheFixture(t, false)
	f.lists[1] = `[]`

	f.do(http.MethodGet, "1")
	rec := f.do(http.MethodGet, "1")
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, f.hits)
	assert.Empty(t, f.mr.Keys())
}

func TestTodoListCache_RedisDownFallsThrough(t *testing.T) {
	f := newCacheFixture(t, true)
	f.lists[1] = `[]`
	f.mr.Close()

	rec := f.do(http.MethodGet, "1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[]`, rec.Body.String())
	assert.Equal(t, 1, f.hits)
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`[1]`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, echo.MIMEApplicationJSON, got.Get(echo.HeaderContentType))
	assert.Equal(t, `[1]`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}
