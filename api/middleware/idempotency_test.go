package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
)

type fakeStore struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	deletes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key], _ = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key], _ = value.(string)
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
		delete(f.ttls, key)
	}
	f.deletes++
	return nil
}

func (f *fakeStore) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func idempotentRequest(pattern, target, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rc)
	return req.WithContext(WithUserID(ctx, "user-1"))
}

func countingHandler(calls *int, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		_, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func TestIdempotencyTTL(t *testing.T) {
	assert.Equal(t, orderIdempotencyTTL, idempotencyTTL("/api/v1/checkout/"))
	assert.Equal(t, orderIdempotencyTTL, idempotencyTTL("/api/v1/returns"))
	assert.Equal(t, defaultIdempotencyTTL, idempotencyTTL("/api/v1/account/addresses"))
	assert.Equal(t, defaultIdempotencyTTL, idempotencyTTL("/api/v1/orders/{orderID}/advance"))
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	var calls int
	rec := httptest.NewRecorder()
	Idempotency(newFakeStore(), nil)(countingHandler(&calls, http.StatusCreated, `{}`)).
		ServeHTTP(rec, idempotentRequest("/api/v1/checkout/", "/api/v1/checkout", "", `{"payment_method":"card"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, calls)
}

func TestIdempotencyRejectsOversizedKey(t *testing.T) {
	var calls int
	rec := httptest.NewRecorder()
	Idempotency(newFakeStore(), nil)(countingHandler(&calls, http.StatusCreated, `{}`)).
		ServeHTTP(rec, idempotentRequest("/api/v1/checkout/", "/api/v1/checkout", strings.Repeat("k", maxIdempotencyKeyLen+1), `{}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, calls)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	var calls int
	h := Idempotency(store, nil)(countingHandler(&calls, http.StatusCreated, `{"data":{"id":"ORD1"}}`))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, idempotentRequest("/api/v1/checkout/", "/api/v1/checkout", "abc", `{"payment_method":"card"}`))
	require.Equal(t, http.StatusCreated, first.Code)
	require.Empty(t, first.Header().Get(IdempotentReplayedHeader))

	replay := httptest.NewRecorder()
	h.ServeHTTP(replay, idempotentRequest("/api/v1/checkout/", "/api/v1/checkout", "abc", `{"payment_method":"card"}`))
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "application/json", replay.Header().Get("Content-Type"))
	assert.Equal(t, "true", replay.Header().Get(IdempotentReplayedHeader))
	assert.Equal(t, `{"data":{"id":"ORD1"}}`, replay.Body.String())
	assert.Equal(t, 1, calls)

	for _, ttl := range store.ttls {
		assert.Equal(t, orderIdempotencyTTL, ttl)
	}
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	var calls int
	h := Idempotency(newFakeStore(), nil)(countingHandler(&calls, http.StatusOK, `{}`))
	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("/api/v1/returns/", "/api/v1/returns", "xyz", `{"order_id":"ORD1"}`))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, idempotentRequest("/api/v1/returns/", "/api/v1/returns", "xyz", `{"order_id":"ORD2"}`))

	require.Equal(t, http.StatusConflict, rec.Code)
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, string(pkgerrors.CodeIdempotency), payload.Error.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotencyDoesNotRememberServerErrors(t *testing.T) {
	store := newFakeStore()
	var calls int
	h := Idempotency(store, nil)(countingHandler(&calls, http.StatusServiceUnavailable, `{}`))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, idempotentRequest("/api/v1/checkout/", "/api/v1/checkout", "retry-me", `{}`))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	}
	assert.Equal(t, 2, calls)
	assert.Zero(t, store.size())
	assert.Equal(t, 2, store.deletes, "each failed attempt releases its reservation")
}

func TestIdempotencyKeysAreScopedPerUser(t *testing.T) {
	store := newFakeStore()
	var calls int
	h := Idempotency(store, nil)(countingHandler(&calls, http.StatusCreated, `{}`))

	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("/api/v1/account/addresses", "/api/v1/account/addresses", "same", `{}`))
	other := idempotentRequest("/api/v1/account/addresses", "/api/v1/account/addresses", "same", `{}`)
	h.ServeHTTP(httptest.NewRecorder(), other.WithContext(WithUserID(other.Context(), "user-2")))

	assert.Equal(t, 2, calls)
	assert.Len(t, store.data, 2)
}

func TestIdempotencyDisabledWithoutStore(t *testing.T) {
	var calls int
	rec := httptest.NewRecorder()
	Idempotency(nil, nil)(countingHandler(&calls, http.StatusCreated, `{}`)).
		ServeHTTP(rec, idempotentRequest("/api/v1/checkout/", "/api/v1/checkout", "", `{}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, calls)
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Error.Code
}

func TestIdempotencyRejectsDuplicateWhileFirstIsRunning(t *testing.T) {
	store := newFakeStore()
	var calls atomic.Int32
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	h := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		entered <- struct{}{}
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"ORD1"}}`))
	}))

	firstDone := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, idempotentRequest("/api/v1/checkout/", "/api/v1/checkout", "dup", `{"payment_method":"card"}`))
		firstDone <- rec
	}()
	<-entered

	dup := httptest.NewRecorder()
	h.ServeHTTP(dup, idempotentRequest("/api/v1/checkout/", "/api/v1/checkout", "dup", `{"payment_method":"card"}`))
	require.Equal(t, http.StatusConflict, dup.Code)
	assert.Equal(t, string(pkgerrors.CodeIdempotency), errorCode(t, dup))

	close(release)
	first := <-firstDone
	require.Equal(t, http.StatusCreated, first.Code)

	replay := httptest.NewRecorder()
	h.ServeHTTP(replay, idempotentRequest("/api/v1/checkout/", "/api/v1/checkout", "dup", `{"payment_method":"card"}`))
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(IdempotentReplayedHeader))
	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotencyPendingReservationIsInProgress(t *testing.T) {
	store := newFakeStore()
	var calls int
	h := Idempotency(store, nil)(countingHandler(&calls, http.StatusCreated, `{}`))

	req := idempotentRequest("/api/v1/returns/", "/api/v1/returns", "held", `{"order_id":"ORD1"}`)
	key := store.IdempotencyKey("user-1|POST|/api/v1/returns", "held")
	pending, err := json.Marshal(storedResponse{Pending: true, RequestHash: hashBody([]byte(`{"order_id":"ORD1"}`))})
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), key, string(pending), pendingIdempotencyTTL))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "in progress")
	assert.Zero(t, calls)
}

func TestIdempotencyReleasesKeyWhenHandlerPanics(t *testing.T) {
	store := newFakeStore()
	h := Idempotency(store, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	assert.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("/api/v1/checkout/", "/api/v1/checkout", "crash", `{}`))
	})
	assert.Zero(t, store.size())
	assert.Equal(t, 1, store.deletes)
}

func TestIdempotencyReservationIsShortLived(t *testing.T) {
	store := newFakeStore()
	var seen time.Duration
	h := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store.mu.Lock()
		for _, ttl := range store.ttls {
			seen = ttl
		}
		store.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))

	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("/api/v1/checkout/", "/api/v1/checkout", "ttl", `{}`))
	assert.Equal(t, pendingIdempotencyTTL, seen)
	for _, ttl := range store.ttls {
		assert.Equal(t, orderIdempotencyTTL, ttl)
	}
}
