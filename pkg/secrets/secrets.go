// Package secrets resolves wrapper credentials. An option value is
// either a literal credential or a key identifying a record in an
// external secret store; resolution happens exactly once, at wrapper
// construction, and is never cached.
package secrets

import (
	"context"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/openfdw/openfdw/pkg/config"
	"github.com/openfdw/openfdw/pkg/logger"
)

// Option keys recognized by ResolveCredential.
const (
	// OptionAPIKey carries the credential verbatim.
	OptionAPIKey = "api_key"
	// OptionAPIKeyID names a record in the secret store.
	OptionAPIKeyID = "api_key_id"
)

// Store is the external secret store collaborator. Implementations
// return ok=false when no record exists for the id; a lookup failure
// is reported through err and treated by callers the same as a
// missing record.
type Store interface {
	GetSecret(ctx context.Context, id string) (secret string, ok bool, err error)
}

// ResolveCredential turns the wrapper options into a credential.
//
// A literal api_key option wins and short-circuits any store lookup.
// Otherwise api_key_id is looked up in the store. A missing or
// unresolvable secret yields ok=false, which the wrapper must treat as
// "no authenticated client available", not as a hard failure; the
// definition-time validator is where missing required options are
// caught.
func ResolveCredential(ctx context.Context, options config.Options, store Store) (string, bool) {
	if key, ok := options.Get(OptionAPIKey); ok {
		return key, true
	}

	id, ok := options.Get(OptionAPIKeyID)
	if !ok {
		return "", false
	}
	if store == nil {
		logger.Warn("no secret store configured, credential unresolved",
			zap.String("secret_id", id))
		return "", false
	}

	secret, found, err := store.GetSecret(ctx, id)
	if err != nil {
		logger.Warn("secret store lookup failed, credential unresolved",
			zap.String("secret_id", id), zap.Error(err))
		return "", false
	}
	if !found {
		logger.Warn("secret not found, credential unresolved",
			zap.String("secret_id", id))
		return "", false
	}
	return secret, true
}

// MemoryStore is an in-process Store backed by a map. It is the store
// used by tests and by single-binary deployments without a vault.
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[string]string
}

// NewMemoryStore creates a MemoryStore seeded with the given secrets.
func NewMemoryStore(secrets map[string]string) *MemoryStore {
	s := &MemoryStore{secrets: make(map[string]string, len(secrets))}
	for k, v := range secrets {
		s.secrets[k] = v
	}
	return s
}

// Set stores a secret under id.
func (s *MemoryStore) Set(id, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[id] = secret
}

// GetSecret implements Store.
func (s *MemoryStore) GetSecret(_ context.Context, id string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secret, ok := s.secrets[id]
	return secret, ok, nil
}

// EnvStore resolves secrets from environment variables. The secret id
// is upper-cased, non-alphanumerics replaced with underscores, and
// prefixed, so id "service/token" with prefix "OPENFDW_SECRET" reads
// OPENFDW_SECRET_SERVICE_TOKEN.
type EnvStore struct {
	Prefix string
}

// NewEnvStore creates an EnvStore with the default prefix.
func NewEnvStore() *EnvStore {
	return &EnvStore{Prefix: "OPENFDW_SECRET"}
}

// GetSecret implements Store.
func (s *EnvStore) GetSecret(_ context.Context, id string) (string, bool, error) {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, id)
	v, ok := os.LookupEnv(s.Prefix + "_" + name)
	return v, ok, nil
}
