package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrKeyNotFound = errors.New("key not found")

// Keys shared by the app's persisted device state.
const (
	KeyCartItems         = "cart_items"
	KeyUserName          = "user_name"
	KeyUserEmail         = "user_email"
	KeyUserPhone         = "user_phone"
	KeyUserPhotoURL      = "user_photo_url"
	KeyIsLoggedIn        = "is_logged_in"
	KeySession           = "session"
	KeyRecentSearches    = "recent_searches"
	KeyUserLocation      = "user_location"
	KeyDeliveryAddress   = "delivery_address"
	KeyGeocodedAddresses = "geocoded_addresses"
	KeyStoreCatalog      = "store_catalog"
	KeyPasswordResetOTP  = "password_reset_otp"
)

// KeyValueStore is the persistence collaborator: get/set/remove by key.
// A zero ttl means the value never expires.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}

func GetJSON(ctx context.Context, store KeyValueStore, key string, dst any) error {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, store KeyValueStore, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(ctx, key, raw, ttl)
}
