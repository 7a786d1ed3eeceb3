// Package kvstore persists whole JSON documents under namespaced string keys.
//
// Every per-user collection lives at "<kind>_<userID>" and is replaced as a
// unit on each write. Backends: in-process memory, SQL via gorm, and Redis.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
)

// Kind names a per-user document family.
type Kind string

const (
	KindCart          Kind = "cart"
	KindWishlist      Kind = "wishlist"
	KindOrders        Kind = "orders"
	KindReturns       Kind = "returns"
	KindNotifications Kind = "notifications"
	KindUser          Kind = "user"
)

// Kinds lists every document family loaded on sign-in.
var Kinds = []Kind{KindCart, KindWishlist, KindOrders, KindReturns, KindNotifications, KindUser}

// Store is the whole-document key-value contract shared by all backends.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes every entry or none of them.
	SetMany(ctx context.Context, entries map[string]string) error
	Ping(ctx context.Context) error
}

// Key builds the storage key for a user's document of the given kind.
func Key(kind Kind, userID string) string {
	return string(kind) + "_" + strings.TrimSpace(userID)
}

// Load decodes the document at key into dst. A missing key leaves dst
// untouched and reports false.
func Load(ctx context.Context, store Store, key string, dst any) (bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("read %s", key))
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("decode %s", key))
	}
	return true, nil
}

// Encode marshals a document for storage.
func Encode(key string, doc any) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("encode %s", key))
	}
	return string(raw), nil
}

func validateKeys(entries map[string]string) error {
	for key := range entries {
		if strings.TrimSpace(key) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "store key is required")
		}
	}
	return nil
}
