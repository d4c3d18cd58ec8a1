package storage

import (
	"sync"

	"github.com/ipfs/go-cid"

	"github.com/gradevault/gradevault/cidutil"
)

// Memory is an in-process BlobStore keyed strictly by content id.
//
// Concurrent Puts of identical bytes are safe and converge to one stored
// copy. Returned slices are copies; callers may mutate them freely.
type Memory struct {
	mu    sync.RWMutex
	blobs map[cid.Cid][]byte
}

var _ BlobStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{blobs: make(map[cid.Cid][]byte)}
}

func (m *Memory) Put(bytes []byte) (cid.Cid, error) {
	id, err := cidutil.ContentID(bytes)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, ErrInvalidCID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.blobs[id]; !exists {
		cp := make([]byte, len(bytes))
		copy(cp, bytes)
		m.blobs[id] = cp
	}
	return id, nil
}

func (m *Memory) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	m.mu.RLock()
	b, ok := m.blobs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, nil
}

func (m *Memory) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[id]
	return ok
}

// Len reports the number of distinct blobs held.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
