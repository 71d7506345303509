package settings

import "context"

// Repository is a string key/value store. Get returns ("", false, nil) for
// an absent key.
type Repository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
}
