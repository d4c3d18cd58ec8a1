package storage

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/gradevault/gradevault/cidutil"
)

// NamedStore associates a BlobStore with a stable backend name.
//
// The name is retained for per-backend reporting when envelopes are
// mirrored across stores.
type NamedStore struct {
	Name  string
	Store BlobStore
}

// Replicating writes every blob to all configured backends.
//
// Reads fall back in slice order; the order is fixed by the caller so the
// retrieval strategy stays deterministic. Writes require every backend to
// return the canonical content id (otherwise ErrCIDMismatch is returned).
type Replicating struct {
	Backends []NamedStore
}

var _ BlobStore = (*Replicating)(nil)

// PutAll writes the same bytes to all backends and returns the canonical
// content id plus the per-backend id mapping.
func (r Replicating) PutAll(bytes []byte) (cid.Cid, map[string]cid.Cid, error) {
	want, err := cidutil.ContentID(bytes)
	if err != nil {
		return cid.Undef, nil, err
	}
	if !want.Defined() {
		return cid.Undef, nil, ErrInvalidCID
	}
	if len(r.Backends) == 0 {
		return cid.Undef, nil, fmt.Errorf("storage: Replicating has no backends")
	}

	out := make(map[string]cid.Cid, len(r.Backends))
	for _, b := range r.Backends {
		if b.Store == nil {
			return cid.Undef, nil, fmt.Errorf("storage: nil store for backend %q", b.Name)
		}
		got, err := b.Store.Put(bytes)
		if err != nil {
			return cid.Undef, nil, err
		}
		out[b.Name] = got
		if got != want {
			return cid.Undef, out, ErrCIDMismatch
		}
	}
	return want, out, nil
}

func (r Replicating) Put(bytes []byte) (cid.Cid, error) {
	id, _, err := r.PutAll(bytes)
	return id, err
}

func (r Replicating) Get(id cid.Cid) ([]byte, error) {
	for _, b := range r.Backends {
		if b.Store == nil {
			continue
		}
		out, err := b.Store.Get(id)
		if err == nil {
			return out, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (r Replicating) Has(id cid.Cid) bool {
	for _, b := range r.Backends {
		if b.Store != nil && b.Store.Has(id) {
			return true
		}
	}
	return false
}
