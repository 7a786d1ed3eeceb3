package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/obohub-backend/pkg/config"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	rec, _ := serve(t, nil, http.MethodGet, "/health/ready", "/health/ready", nil,
		HealthReady(cfg, nil, map[string]Pinger{"store": ok, "redis": nil}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev", rec.Header().Get("X-OBOHUB-Env"))

	rec, env := serve(t, nil, http.MethodGet, "/health/ready", "/health/ready", nil,
		HealthReady(cfg, nil, map[string]Pinger{"store": ok, "database": down}))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "DEPENDENCY_ERROR", env.Error.Code)
	assert.Equal(t, "dependency unavailable", env.Error.Message)
}

func TestHealthLive(t *testing.T) {
	rec, _ := serve(t, nil, http.MethodGet, "/health/live", "/health/live", nil,
		HealthLive(&config.Config{App: config.AppConfig{Env: "prod"}}))
	require.Equal(t, http.StatusOK, rec.Code)
}
