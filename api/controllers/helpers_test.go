package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/obohub-backend/api/middleware"
	"github.com/angelmondragon/obohub-backend/internal/catalog"
	"github.com/angelmondragon/obohub-backend/internal/identity"
	"github.com/angelmondragon/obohub-backend/internal/shop"
	"github.com/angelmondragon/obohub-backend/pkg/kvstore"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	return cat
}

func signedInContainer(t *testing.T, userID string) *shop.Container {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c, err := shop.New(shop.Options{Store: kvstore.NewMemory(), Clock: func() time.Time { return now }})
	require.NoError(t, err)
	state := identity.SignedIn(identity.Profile{ID: userID, Email: userID + "@example.com", Name: "Shopper"})
	require.NoError(t, c.SyncIdentity(context.Background(), state))
	return c
}

// serve runs h behind a chi route so URL params resolve, with c as the
// request's container when non-nil.
func serve(t *testing.T, c *shop.Container, method, pattern, target string, body any, h http.HandlerFunc) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c != nil {
		ctx := middleware.WithUserID(req.Context(), c.UserID())
		req = req.WithContext(middleware.WithContainer(ctx, c))
	}

	r := chi.NewRouter()
	r.Method(method, pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func firstColor(t *testing.T, cat *catalog.Catalog, id string) string {
	t.Helper()
	p, ok := cat.Find(id)
	require.True(t, ok)
	return p.Colors[0]
}

func firstSize(t *testing.T, cat *catalog.Catalog, id string) string {
	t.Helper()
	p, ok := cat.Find(id)
	require.True(t, ok)
	return p.Sizes[0]
}
