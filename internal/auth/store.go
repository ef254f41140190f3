package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
)

const (
	defaultNATSBucket  = "psclient-tokens"
	defaultNATSTimeout = 5 * time.Second
	defaultNATSKey     = "default"
)

// Store keeps the current token outside the session, so that it survives
// restarts or is shared between processes. Get returns nil, nil when empty.
type Store interface {
	Get(ctx context.Context) (*Token, error)
	Set(ctx context.Context, token *Token) error
	Clear(ctx context.Context) error
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mutex sync.RWMutex
	token *Token
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context) (*Token, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.token, nil
}

// Set implements Store.
func (s *MemoryStore) Set(ctx context.Context, token *Token) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = token

	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = nil

	return nil
}

// NoOpStore stores nothing.
type NoOpStore struct{}

// Get implements Store.
func (NoOpStore) Get(ctx context.Context) (*Token, error) { return nil, nil }

// Set implements Store.
func (NoOpStore) Set(ctx context.Context, token *Token) error { return nil }

// Clear implements Store.
func (NoOpStore) Clear(ctx context.Context) error { return nil }

// NATSStore shares a token through a NATS JetStream key-value bucket.
type NATSStore struct {
	kv   jetstream.KeyValue
	key  string
	conn *nats.Conn
}

// NewNATSStore connects to NATS and opens (or creates) the bucket. The key
// defaults to fallbackKey, which is usually the OAuth2 client ID.
func NewNATSStore(ctx context.Context, config *pageseeder.NATSStoreConfig, fallbackKey string) (*NATSStore, error) {
	if config == nil {
		return nil, pageseeder.ErrNATSConfigRequired
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultNATSTimeout
	}

	url := config.URL
	if url == "" {
		url = nats.DefaultURL
	}

	conn, err := nats.Connect(url, nats.Timeout(timeout), nats.Name("psclient-token-store"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = defaultNATSBucket
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "PageSeeder access tokens",
		History:     1,
	})
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("failed to open KV bucket %q: %w", bucket, err)
	}

	store := NewNATSStoreFromKV(kv, firstNonEmpty(config.Key, fallbackKey))
	store.conn = conn

	return store, nil
}

// NewNATSStoreFromKV wraps an open bucket.
func NewNATSStoreFromKV(kv jetstream.KeyValue, key string) *NATSStore {
	return &NATSStore{kv: kv, key: sanitizeKey(firstNonEmpty(key, defaultNATSKey))}
}

// Get implements Store.
func (s *NATSStore) Get(ctx context.Context) (*Token, error) {
	entry, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read token from NATS: %w", err)
	}

	var token Token

	err = json.Unmarshal(entry.Value(), &token)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token from NATS: %w", err)
	}

	return &token, nil
}

// Set implements Store.
func (s *NATSStore) Set(ctx context.Context, token *Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	_, err = s.kv.Put(ctx, s.key, data)
	if err != nil {
		return fmt.Errorf("failed to write token to NATS: %w", err)
	}

	return nil
}

// Clear implements Store.
func (s *NATSStore) Clear(ctx context.Context) error {
	err := s.kv.Delete(ctx, s.key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete token from NATS: %w", err)
	}

	return nil
}

// Close drains the connection opened by NewNATSStore.
func (s *NATSStore) Close() error {
	if s.conn == nil {
		return nil
	}

	return s.conn.Drain()
}

// NewStoreFromConfig builds the Store selected by config. A nil config
// selects the memory store.
func NewStoreFromConfig(ctx context.Context, config *pageseeder.TokenStoreConfig, fallbackKey string) (Store, error) {
	if config == nil {
		return NewMemoryStore(), nil
	}

	switch config.Type {
	case pageseeder.TokenStoreMemory, "":
		return NewMemoryStore(), nil
	case pageseeder.TokenStoreNone:
		return NoOpStore{}, nil
	case pageseeder.TokenStoreNATS:
		return NewNATSStore(ctx, config.NATS, fallbackKey)
	default:
		return nil, fmt.Errorf("%w: %s", pageseeder.ErrUnsupportedStoreType, config.Type)
	}
}

// ConfigPersister saves tokens to a configuration file.
type ConfigPersister interface {
	UpdateToken(profile, token string, expiresAt time.Time) error
}

// PersistingStore writes every stored token through to a ConfigPersister.
type PersistingStore struct {
	Store

	persister ConfigPersister
	profile   string
}

// NewPersistingStore wraps inner so that tokens are also saved under profile.
func NewPersistingStore(inner Store, persister ConfigPersister, profile string) *PersistingStore {
	return &PersistingStore{Store: inner, persister: persister, profile: profile}
}

// Set implements Store.
func (s *PersistingStore) Set(ctx context.Context, token *Token) error {
	err := s.Store.Set(ctx, token)
	if err != nil {
		return err
	}

	err = s.persister.UpdateToken(s.profile, token.AccessToken, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	return nil
}

// Clear implements Store.
func (s *PersistingStore) Clear(ctx context.Context) error {
	err := s.Store.Clear(ctx)
	if err != nil {
		return err
	}

	err = s.persister.UpdateToken(s.profile, "", time.Time{})
	if err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	return nil
}

// KV keys allow [-/_=.a-zA-Z0-9].
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '=', r == '.', r == '/':
			return r
		default:
			return '_'
		}
	}, key)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
