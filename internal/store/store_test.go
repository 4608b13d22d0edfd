package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/blackwell-systems/levelshelf/internal/store"
)

func TestPutGet(t *testing.T) {
	s := store.Open(t.TempDir())
	if err := s.Put(store.KeyQueue, []byte("L1\nL2\n")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(store.KeyQueue)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "L1\nL2\n" {
		t.Errorf("Get = %q", got)
	}
	if !s.Has(store.KeyQueue) {
		t.Error("Has = false after Put")
	}
}

func TestGet_Missing(t *testing.T) {
	s := store.Open(t.TempDir())
	if _, err := s.Get("nope/never"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := store.Open(t.TempDir())
	_ = s.Put("a/b", []byte("x"))
	if err := s.Delete("a/b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Has("a/b") {
		t.Error("key still present")
	}
	if err := s.Delete("a/b"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestJSONAndKeys(t *testing.T) {
	s := store.Open(t.TempDir())
	in := []string{"W1", "W2"}
	if err := s.PutJSON(store.KeySubscriptions, in); err != nil {
		t.Fatalf("PutJSON: %v", err)
	}
	var out []string
	if err := s.GetJSON(store.KeySubscriptions, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if len(out) != 2 || out[1] != "W2" {
		t.Errorf("GetJSON = %v", out)
	}

	keys := s.Keys(context.Background(), "workshop/")
	if len(keys) != 1 || keys[0] != store.KeySubscriptions {
		t.Errorf("Keys = %v", keys)
	}
}
