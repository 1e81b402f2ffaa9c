// Package auth implements the token-issuing core of the identity service:
// key material resolution, JWT signing and verification, and password
// hashing.
package auth

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/identity/internal/common"
)

// readFile is a seam for tests that need to count or fail filesystem reads.
var readFile = os.ReadFile

// KeyChain resolves and caches the signing key material. Each key is read
// from disk at most once per process; concurrent cold-start calls are
// collapsed through a single-flight group so the read happens exactly once.
type KeyChain struct {
	privatePath string
	publicPath  string

	mu      sync.Mutex
	group   singleflight.Group
	private []byte
	public  []byte
}

// NewKeyChain creates a KeyChain for the configured key file paths. Either
// path may be empty; the corresponding getter then fails with
// common.ErrKeyPathNotConfigured.
func NewKeyChain(privatePath, publicPath string) *KeyChain {
	return &KeyChain{privatePath: privatePath, publicPath: publicPath}
}

// PrivateSecret returns the private signing secret, reading it from disk on
// first use.
func (k *KeyChain) PrivateSecret() ([]byte, error) {
	return k.load("private", k.privatePath, &k.private, "private key")
}

// PublicSignature returns the public verification material, reading it from
// disk on first use. Its cache is independent from the private secret's.
func (k *KeyChain) PublicSignature() ([]byte, error) {
	return k.load("public", k.publicPath, &k.public, "public key")
}

func (k *KeyChain) load(groupKey, path string, cache *[]byte, label string) ([]byte, error) {
	k.mu.Lock()
	cached := *cache
	k.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := k.group.Do(groupKey, func() (any, error) {
		k.mu.Lock()
		cached := *cache
		k.mu.Unlock()
		if cached != nil {
			return cached, nil
		}

		if path == "" {
			return nil, fmt.Errorf("path to %s file not found: %w", label, common.ErrKeyPathNotConfigured)
		}
		data, err := readFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%s file not found: %w", label, common.ErrKeyFileNotFound)
			}
			return nil, fmt.Errorf("reading %s file: %w", label, err)
		}

		k.mu.Lock()
		*cache = data
		k.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Reset clears the cached key material. Test isolation only; production code
// never invalidates the caches.
func (k *KeyChain) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.private = nil
	k.public = nil
}
