package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused", detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		assert.Equal(t, tt.status, meta.HTTPStatus, "status for %s", tt.code)
		assert.Equal(t, tt.publicMsg, meta.PublicMessage, "public message for %s", tt.code)
		assert.Equal(t, tt.retryable, meta.Retryable, "retryable for %s", tt.code)
		assert.Equal(t, tt.detailsOK, meta.DetailsAllowed, "details for %s", tt.code)
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing size")
	require.Equal(t, CodeValidation, base.Code())
	require.Equal(t, "missing size", base.Message())
	require.Nil(t, base.Details())

	base.WithDetails(map[string]any{"field": "size"})
	require.NotNil(t, base.Details())

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeDependency, cause, "persist cart")
	require.ErrorIs(t, wrapped, cause)
	require.Equal(t, CodeDependency, wrapped.Code())
	require.Contains(t, wrapped.Error(), "boom")

	formatted := Newf(CodeNotFound, "order %s not found", "ORD1")
	require.Equal(t, "order ORD1 not found", formatted.Message())
}

func TestAsAndIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "order not found"))
	got := As(err)
	require.NotNil(t, got)
	require.Equal(t, CodeNotFound, got.Code())
	require.True(t, IsCode(err, CodeNotFound))
	require.False(t, IsCode(err, CodeValidation))
	require.Nil(t, As(nil))
	require.False(t, IsCode(stdErrors.New("plain"), CodeInternal))
}

func TestDumpWalksChain(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("connection refused"), "write cart")
	dump := Dump(err)
	require.Equal(t, CodeDependency, dump.Code)
	require.Len(t, dump.Chain, 2)
	require.Empty(t, dump.PGCode)
	require.Equal(t, ErrorDump{}, Dump(nil))
	require.NotContains(t, dump.Fields(), "pg_code")
}

func TestDumpSurfacesPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "kv_entries_pkey", TableName: "kv_entries"}
	dump := Dump(Wrap(CodeDependency, fmt.Errorf("upsert: %w", pgErr), "write cart"))

	require.Equal(t, "23505", dump.PGCode)
	fields := dump.Fields()
	require.Equal(t, "kv_entries_pkey", fields["pg_constraint"])
	require.Equal(t, string(CodeDependency), fields["error_code"])
	require.Len(t, fields["error_chain"], 3)
}

func TestDumpIgnoresRedisNil(t *testing.T) {
	dump := Dump(fmt.Errorf("get: %w", redis.Nil))
	require.Empty(t, dump.RedisError)
}

func TestPublicMessage(t *testing.T) {
	require.Equal(t, "size is required", New(CodeValidation, "size is required").PublicMessage())
	require.Equal(t, "resource not found", New(CodeNotFound, "").PublicMessage())
	require.Equal(t, "dependency unavailable", Wrap(CodeDependency, stdErrors.New("dial tcp"), "write cart").PublicMessage())
	require.Equal(t, "internal server error", New(CodeInternal, "nil map").PublicMessage())
}

func TestNormalize(t *testing.T) {
	typed := New(CodeNotFound, "order not found")
	require.Same(t, typed, Normalize(fmt.Errorf("ctx: %w", typed)))

	plain := stdErrors.New("boom")
	got := Normalize(plain)
	require.Equal(t, CodeInternal, got.Code())
	require.ErrorIs(t, got, plain)

	require.Equal(t, CodeInternal, Normalize(nil).Code())
}
