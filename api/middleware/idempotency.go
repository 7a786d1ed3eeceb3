package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/obohub-backend/api/responses"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/obohub-backend/pkg/redis"
)

const (
	IdempotencyKeyHeader     = "Idempotency-Key"
	IdempotentReplayedHeader = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 128
	maxIdempotentBody    = 1 << 20

	defaultIdempotencyTTL = 24 * time.Hour
	orderIdempotencyTTL   = 7 * 24 * time.Hour
	// A reservation outlives any handler but expires if the process dies
	// before recording or releasing it.
	pendingIdempotencyTTL = 5 * time.Minute
)

// Routes that create orders or refunds keep their replay records longer.
var longLivedIdempotencyRoutes = []string{
	"/api/v1/checkout",
	"/api/v1/returns",
}

type storedResponse struct {
	Pending     bool   `json:"pending,omitempty"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        string `json:"body,omitempty"`
	RequestHash string `json:"request_hash"`
}

type idempotencyGuard struct {
	store pkgredis.IdempotencyStore
	logg  *logger.Logger
}

// Idempotency replays the stored response when a client repeats an
// Idempotency-Key on the same route with the same body. The key is scoped to
// the signed-in user and reserved before the handler runs, so a duplicate
// arriving mid-flight is rejected instead of executed twice. Server errors
// release the key so the client can retry them. A nil store disables the
// middleware.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	g := idempotencyGuard{store: store, logg: logg}
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.serve(w, r, next)
		})
	}
}

func (g idempotencyGuard) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	ctx := r.Context()

	clientKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	switch {
	case clientKey == "":
		responses.WriteError(ctx, g.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
		return
	case len(clientKey) > maxIdempotencyKeyLen:
		responses.WriteError(ctx, g.logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "Idempotency-Key must be at most %d characters", maxIdempotencyKeyLen))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentBody))
	if err != nil {
		responses.WriteError(ctx, g.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read request body"))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	pattern := routePattern(r)
	key := g.store.IdempotencyKey(UserIDFromContext(ctx)+"|"+r.Method+"|"+r.URL.Path, clientKey)
	hash := hashBody(body)

	prior, err := g.claim(r, key, hash)
	if err != nil {
		responses.WriteError(ctx, g.logg, w, err)
		return
	}
	if prior != nil {
		switch {
		case prior.RequestHash != hash:
			responses.WriteError(ctx, g.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with a different request body").
				WithDetails(map[string]string{"route": pattern}))
		case prior.Pending:
			responses.WriteError(ctx, g.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this idempotency key is still in progress").
				WithDetails(map[string]string{"route": pattern}))
		default:
			prior.replay(w)
		}
		return
	}

	// The key is reserved from here on. It is released unless the final
	// response gets recorded, which covers server errors and panics.
	recorded := false
	defer func() {
		if !recorded {
			g.release(r, key)
		}
	}()

	capture := &responseCapture{ResponseWriter: w}
	next.ServeHTTP(capture, r)

	if capture.statusCode() >= http.StatusInternalServerError {
		return
	}
	recorded = g.remember(r, key, storedResponse{
		Status:      capture.statusCode(),
		ContentType: capture.Header().Get("Content-Type"),
		Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
		RequestHash: hash,
	}, idempotencyTTL(pattern))
}

// claim reserves key for this request. It returns nil when the caller now
// owns the key, or the record already held under it.
func (g idempotencyGuard) claim(r *http.Request, key, hash string) (*storedResponse, error) {
	prior, err := g.lookup(r, key)
	if err != nil || prior != nil {
		return prior, err
	}

	pending, err := json.Marshal(storedResponse{Pending: true, RequestHash: hash})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode idempotency reservation")
	}
	ok, err := g.store.SetNX(r.Context(), key, string(pending), pendingIdempotencyTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key")
	}
	if ok {
		return nil, nil
	}

	// Another request reserved the key between the lookup and SetNX.
	prior, err = g.lookup(r, key)
	if err != nil {
		return nil, err
	}
	if prior == nil {
		return &storedResponse{Pending: true, RequestHash: hash}, nil
	}
	return prior, nil
}

func (g idempotencyGuard) lookup(r *http.Request, key string) (*storedResponse, error) {
	raw, err := g.store.Get(r.Context(), key)
	if pkgredis.IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency key")
	}
	var stored storedResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return &stored, nil
}

func (g idempotencyGuard) remember(r *http.Request, key string, stored storedResponse, ttl time.Duration) bool {
	payload, err := json.Marshal(stored)
	if err == nil {
		err = g.store.Set(context.WithoutCancel(r.Context()), key, string(payload), ttl)
	}
	if err != nil {
		g.logFailure(r, key, "idempotency.persist_failed", err)
		return false
	}
	return true
}

func (g idempotencyGuard) release(r *http.Request, key string) {
	if err := g.store.Del(context.WithoutCancel(r.Context()), key); err != nil {
		g.logFailure(r, key, "idempotency.release_failed", err)
	}
}

func (g idempotencyGuard) logFailure(r *http.Request, key, msg string, err error) {
	if g.logg == nil {
		return
	}
	g.logg.Error(g.logg.WithField(r.Context(), "idempotency_key", key), msg, err)
}

func (s *storedResponse) replay(w http.ResponseWriter) {
	if s.ContentType != "" {
		w.Header().Set("Content-Type", s.ContentType)
	}
	w.Header().Set(IdempotentReplayedHeader, "true")
	w.WriteHeader(s.Status)
	if decoded, err := base64.StdEncoding.DecodeString(s.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func idempotencyTTL(pattern string) time.Duration {
	pattern = strings.TrimSuffix(pattern, "/")
	for _, glob := range longLivedIdempotencyRoutes {
		if ok, _ := path.Match(glob, pattern); ok {
			return orderIdempotencyTTL
		}
	}
	return defaultIdempotencyTTL
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
