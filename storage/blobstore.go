// Package storage defines the content-addressed blob store that holds
// encrypted grade envelopes, together with in-memory, filesystem and
// network-backed implementations.
package storage

import "github.com/ipfs/go-cid"

// BlobStore is a minimal content-addressed byte store.
//
// Contract:
// - Put MUST be idempotent: identical bytes always yield the same id.
// - Stored objects MUST be immutable; there is no update or delete.
// - Ids MUST be derived from the bytes written (cidutil.ContentID).
// - Get MUST return ErrNotFound when the id is absent.
type BlobStore interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
