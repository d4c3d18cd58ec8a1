package storage_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/gradevault/gradevault/storage"
	"github.com/gradevault/gradevault/storage/testkit"
)

func TestMemoryConformance(t *testing.T) {
	testkit.RunBlobStoreConformance(t, func(t *testing.T) storage.BlobStore {
		return storage.NewMemory()
	})
}

func TestMemoryConcurrentPutConverges(t *testing.T) {
	m := storage.NewMemory()
	b := []byte("identical bytes from many writers")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Put(b); err != nil {
				t.Errorf("Put: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := m.Len(); got != 1 {
		t.Fatalf("expected one stored copy, got %d", got)
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	m := storage.NewMemory()
	id, err := m.Put([]byte("immutable"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := m.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got[0] = 'X'

	again, err := m.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(again) != "immutable" {
		t.Fatalf("stored bytes mutated through returned slice: %q", again)
	}
}

func TestMemoryDistinctBlobs(t *testing.T) {
	m := storage.NewMemory()
	for i := 0; i < 5; i++ {
		if _, err := m.Put([]byte(fmt.Sprintf("blob-%d", i))); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if got := m.Len(); got != 5 {
		t.Fatalf("expected 5 blobs, got %d", got)
	}
}
