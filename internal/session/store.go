// Package session persists the login session and recent searches.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/vidfeed/internal/domain"
)

// MaxRecentSearches caps the recent search list
const MaxRecentSearches = 20

// Bucket names
var (
	bucketSession  = []byte("session")
	bucketSearches = []byte("searches")
)

const (
	keyToken  = "token"
	keyUser   = "user"
	keyRecent = "recent"
)

// Store implements domain.SessionStore using BoltDB.
// With no data directory it keeps everything in memory.
type Store struct {
	db *bolt.DB
	mu sync.RWMutex // Protects cache

	// In-memory copy of every key read or written (promoted on access)
	cache map[string][]byte
}

var _ domain.SessionStore = (*Store)(nil)

// Open opens the session database for serverURL under dataDir
func Open(dataDir, serverURL string) (*Store, error) {
	if dataDir == "" {
		return &Store{cache: make(map[string][]byte)}, nil
	}

	dir := dataDir
	if serverURL != "" {
		dir = filepath.Join(dataDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(filepath.Join(dir, "session.db"), 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSession, bucketSearches} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, cache: make(map[string][]byte)}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads the persisted session into memory. Call once at startup.
func (s *Store) Load() error {
	if s.db == nil {
		return nil
	}
	return s.db.View(func(tx *bolt.Tx) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, bucket := range [][]byte{bucketSession, bucketSearches} {
			b := tx.Bucket(bucket)
			if b == nil {
				continue
			}
			err := b.ForEach(func(k, v []byte) error {
				data := make([]byte, len(v))
				copy(data, v)
				s.cache[string(bucket)+":"+string(k)] = data
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// === Generic helpers ===

func (s *Store) get(bucket []byte, key string, dest any) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return false
	}

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *Store) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *Store) delete(bucket []byte, key string) error {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// === Session ===

// Token returns the stored bearer token, or "" when logged out.
// It satisfies api.TokenSource.
func (s *Store) Token() string {
	var token string
	s.get(bucketSession, keyToken, &token)
	return token
}

// User returns the stored account, if any
func (s *Store) User() (*domain.User, bool) {
	var user domain.User
	if !s.get(bucketSession, keyUser, &user) {
		return nil, false
	}
	return &user, true
}

// Save replaces the stored session
func (s *Store) Save(token string, user *domain.User) error {
	if err := s.set(bucketSession, keyToken, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if user == nil {
		return s.delete(bucketSession, keyUser)
	}
	if err := s.set(bucketSession, keyUser, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Clear forgets the session and recent searches
func (s *Store) Clear() error {
	for _, key := range []string{keyToken, keyUser} {
		if err := s.delete(bucketSession, key); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
	}
	return s.delete(bucketSearches, keyRecent)
}

// === Recent searches ===

// RecentSearches returns recent queries, most recent first
func (s *Store) RecentSearches() []string {
	var recent []string
	s.get(bucketSearches, keyRecent, &recent)
	return recent
}

// AddRecentSearch records a query. A repeated query moves to the front;
// the list keeps at most MaxRecentSearches entries.
func (s *Store) AddRecentSearch(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	recent := []string{query}
	for _, q := range s.RecentSearches() {
		if strings.EqualFold(q, query) {
			continue
		}
		recent = append(recent, q)
		if len(recent) == MaxRecentSearches {
			break
		}
	}
	return s.set(bucketSearches, keyRecent, recent)
}
