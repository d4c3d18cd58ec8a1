// Package testkit runs conformance checks against BlobStore implementations.
package testkit

import (
	"bytes"
	"testing"

	"github.com/ipfs/go-cid"

	"github.com/gradevault/gradevault/cidutil"
	"github.com/gradevault/gradevault/storage"
)

// NewBlobStore constructs a fresh, empty store instance for a test.
// The returned store MUST be isolated from other tests.
type NewBlobStore func(t *testing.T) storage.BlobStore

// RunBlobStoreConformance exercises the BlobStore contract: content-derived
// ids, idempotent puts, NotFound on absent ids, and rejection of the zero id.
func RunBlobStoreConformance(t *testing.T, newStore NewBlobStore) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		bs := newStore(t)
		want := []byte("sealed grade envelope bytes")

		id, err := bs.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		wantID, err := cidutil.ContentID(want)
		if err != nil {
			t.Fatalf("ContentID failed: %v", err)
		}
		if id != wantID {
			t.Fatalf("Put id mismatch: got %s want %s", id, wantID)
		}

		got, err := bs.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}
		if !cidutil.Matches(id, got) {
			t.Fatalf("Get returned bytes not matching requested id")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		bs := newStore(t)
		b := []byte("same bytes")

		id1, err := bs.Put(b)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		id2, err := bs.Put(b)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("Put not idempotent: %s vs %s", id1, id2)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		bs := newStore(t)
		b := []byte("missing")
		id, err := cidutil.ContentID(b)
		if err != nil {
			t.Fatalf("ContentID failed: %v", err)
		}

		if bs.Has(id) {
			t.Fatalf("Has returned true for missing id")
		}
		_, err = bs.Get(id)
		if !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}

		if _, err := bs.Put(b); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !bs.Has(id) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("RejectUndefID", func(t *testing.T) {
		bs := newStore(t)
		var undef cid.Cid
		if bs.Has(undef) {
			t.Fatalf("Has should be false for undefined id")
		}
		if _, err := bs.Get(undef); err == nil {
			t.Fatalf("Get should fail for undefined id")
		}
	})
}
