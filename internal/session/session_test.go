package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"heart-clinic/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareIssuesAndReusesClientID(t *testing.T) {
	m := NewManager(NewMemoryKV(time.Hour), "secret", time.Hour)
	var seen []string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := clientID(r.Context())
		require.NoError(t, err)
		seen = append(seen, id)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Result().Cookies())

	forged := httptest.NewRequest(http.MethodGet, "/", nil)
	forged.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})
	h.ServeHTTP(httptest.NewRecorder(), forged)

	require.Len(t, seen, 3)
	assert.Equal(t, seen[0], seen[1])
	assert.NotEqual(t, seen[0], seen[2])
}

func testManager(t *testing.T, kv KV) {
	t.Helper()
	m := NewManager(kv, "secret", time.Hour)
	ctx := WithClientID(context.Background(), uuid.NewString())

	s, err := m.Session(ctx)
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())

	require.NoError(t, m.Login(ctx, model.Session{User: "ann", Role: model.RolePatient}, "tok"))
	s, err = m.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Session{User: "ann", Role: model.RolePatient}, s)

	tok, err := m.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	rec := model.MedicalRecord{ID: 1772611200123, Name: "Ann", Score: 75, Details: map[string]string{"chol": "250"}}
	require.NoError(t, m.SetLastResult(ctx, rec))

	require.NoError(t, m.Logout(ctx))
	s, err = m.Session(ctx)
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())
	tok, _ = m.Token(ctx)
	assert.Empty(t, tok)

	// lastResult survives logout
	last, err := m.LastResult(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, rec.ID, last.ID)
	assert.Equal(t, "250", last.Details["chol"])
}

func TestManagerMemory(t *testing.T) {
	testManager(t, NewMemoryKV(time.Hour))
}

func TestManagerRedis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	rdb, err := OpenRedis(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	testManager(t, NewRedisKV(rdb, time.Minute))
}

func TestPartialSessionIsLoggedOut(t *testing.T) {
	kv := NewMemoryKV(time.Hour)
	m := NewManager(kv, "secret", time.Hour)
	ctx := WithClientID(context.Background(), "c1")

	require.NoError(t, kv.Set(ctx, "c1", map[string]string{KeyUser: "ann"}))
	s, err := m.Session(ctx)
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())

	require.NoError(t, kv.Set(ctx, "c1", map[string]string{KeyRole: "Admin"}))
	s, err = m.Session(ctx)
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())
}

func TestMemoryKVExpires(t *testing.T) {
	kv := NewMemoryKV(time.Minute)
	now := time.Now()
	kv.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "c1", map[string]string{KeyUser: "ann"}))
	now = now.Add(2 * time.Minute)
	v, err := kv.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestNoClientID(t *testing.T) {
	m := NewManager(NewMemoryKV(time.Hour), "secret", time.Hour)
	_, err := m.Session(context.Background())
	assert.Error(t, err)
}
