// Package sessions holds the per browser session record: the raw token, the signed in email and
// the legacy admin keys, plus the profile fetched for that token.
package sessions

import "context"

// Storage keys. The first two live in the persistent profile namespace, the admin keys in the
// tab namespace that ends with the browser session.
const (
	KeyAuthToken  = "auth_token"
	KeyUserEmail  = "user_email"
	KeyIsAdmin    = "is_admin"
	KeyAdminEmail = "admin_email"
	KeyAdminUsers = "admin_users"
)

// Repo is a namespaced string key-value store.
type Repo interface {
	// Get returns the value and whether it was present.
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Set(ctx context.Context, namespace, key, value string) error
	// Delete removes keys from namespace. Missing keys are not an error.
	Delete(ctx context.Context, namespace string, keys ...string) error
	// Purge removes the whole namespace.
	Purge(ctx context.Context, namespace string) error
}
