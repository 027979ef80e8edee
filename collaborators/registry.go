package collaborators

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// PayloadRegistry is the content-addressed payload store consumed by the
// scheduler's Bounded payload binding (spec §4.1). Implementations are
// shared with other subsystems and are assumed atomic per call; the
// scheduler is responsible for pairing every request with exactly one
// unrequest on the same hash.
type PayloadRegistry interface {
	Request(hash common.Hash)
	Unrequest(hash common.Hash)
	Have(hash common.Hash) bool
	Fetch(hash common.Hash) ([]byte, bool)
	IsRequested(hash common.Hash) bool
	// Store registers raw bytes under their content hash, returning the
	// hash and length to be wrapped into a Lookup handle. It does not, by
	// itself, mark the hash as requested.
	Store(data []byte) (hash common.Hash, length uint32)
}

// MemRegistry is a reference, in-memory PayloadRegistry with refcounted
// requests. It is suitable for tests and for embedding scheduler in a node
// that has no separate preimage subsystem of its own.
type MemRegistry struct {
	mu       sync.Mutex
	blobs    map[common.Hash][]byte
	refcount map[common.Hash]int
}

func NewMemRegistry() *MemRegistry {
	return &MemRegistry{
		blobs:    make(map[common.Hash][]byte),
		refcount: make(map[common.Hash]int),
	}
}

func (r *MemRegistry) Store(data []byte) (common.Hash, uint32) {
	hash := common.BytesToHash(hashBytes(data))
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blobs[hash]; !ok {
		cpy := make([]byte, len(data))
		copy(cpy, data)
		r.blobs[hash] = cpy
	}
	return hash, uint32(len(data))
}

func (r *MemRegistry) Request(hash common.Hash) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refcount[hash]++
	log.Trace("payload requested", "hash", hash, "refcount", r.refcount[hash])
}

func (r *MemRegistry) Unrequest(hash common.Hash) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refcount[hash] <= 1 {
		delete(r.refcount, hash)
	} else {
		r.refcount[hash]--
	}
	log.Trace("payload unrequested", "hash", hash, "refcount", r.refcount[hash])
}

func (r *MemRegistry) Have(hash common.Hash) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.blobs[hash]
	return ok
}

func (r *MemRegistry) Fetch(hash common.Hash) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.blobs[hash]
	if !ok {
		return nil, false
	}
	cpy := make([]byte, len(data))
	copy(cpy, data)
	return cpy, true
}

func (r *MemRegistry) IsRequested(hash common.Hash) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refcount[hash] > 0
}

func hashBytes(data []byte) []byte {
	return crypto.Keccak256(data)
}
