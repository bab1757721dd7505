package blobstore

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
)

// Blob is an in-memory binary resource addressable by URL
type Blob struct {
	ContentType string
	Data        []byte
	CreatedAt   time.Time
	Owner       string // session holding the blob, empty when unowned
}

// Store hands out short-lived URLs for fetched binary resources such as cutout
// images. Every URL must be revoked once the tooltip that shows it goes away.
type Store struct {
	mu     sync.RWMutex
	prefix string
	blobs  map[string]Blob
}

// New creates a store whose URLs start with prefix (e.g. "/api/v1/blobs/")
func New(prefix string) *Store {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Store{
		prefix: prefix,
		blobs:  make(map[string]Blob),
	}
}

// Put stores unowned data and returns a reference to it
func (s *Store) Put(contentType string, data []byte) models.ImageRef {
	return s.PutFor("", contentType, data)
}

// PutFor stores data held by owner and returns a reference to it
func (s *Store) PutFor(owner, contentType string, data []byte) models.ImageRef {
	token := uuid.NewString()

	s.mu.Lock()
	s.blobs[token] = Blob{
		ContentType: contentType,
		Data:        data,
		CreatedAt:   time.Now(),
		Owner:       owner,
	}
	s.mu.Unlock()

	return models.ImageRef{Token: token, URL: s.prefix + token}
}

// Get returns the blob for token
func (s *Store) Get(token string) (Blob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[token]
	return b, ok
}

// Revoke releases the blob behind token. Revoking twice is harmless.
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	delete(s.blobs, token)
	s.mu.Unlock()
}

// Len returns the number of live blobs
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Sweep revokes blobs older than maxAge and returns how many were dropped.
// It backs up tooltips whose session vanished without closing cleanly, so a
// blob whose owner is still live is kept whatever its age. live may be nil.
func (s *Store) Sweep(maxAge time.Duration, live func(owner string) bool) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for token, b := range s.blobs {
		if !b.CreatedAt.Before(cutoff) {
			continue
		}
		if b.Owner != "" && live != nil && live(b.Owner) {
			continue
		}
		delete(s.blobs, token)
		dropped++
	}
	return dropped
}
