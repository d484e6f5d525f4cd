package memory

import (
	"context"
	"testing"
)

func TestBlobStorePutObjectCopiesData(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	payload := []byte("zip,population\n30114,41000\n")
	uri, err := store.PutObject(context.Background(), "raw/acs/run-1/batch-0.json", "application/json", payload)
	if err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	if uri != "memory://raw/acs/run-1/batch-0.json" {
		t.Fatalf("unexpected uri %s", uri)
	}
	payload[0] = 'Z'
	stored, ok := store.Object("raw/acs/run-1/batch-0.json")
	if !ok {
		t.Fatal("expected object to be stored")
	}
	if string(stored) != "zip,population\n30114,41000\n" {
		t.Fatalf("expected stored copy to be immutable, got %q", string(stored))
	}
}
