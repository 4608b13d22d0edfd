package workshop_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/levelshelf/internal/catalog"
	"github.com/blackwell-systems/levelshelf/internal/store"
	"github.com/blackwell-systems/levelshelf/internal/workshop"
)

func publish(t *testing.T, root, id, title string) string {
	t.Helper()
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatal(err)
	}
	if err := catalog.WriteMetadata(dir, catalog.Metadata{ID: id, Title: title, Artist: "Various"}); err != nil {
		t.Fatal(err)
	}
	return dir
}

func openDir(t *testing.T, pageSize int) (*workshop.Dir, string, *store.Store) {
	t.Helper()
	root := t.TempDir()
	publish(t, root, "W1", "Alpha")
	publish(t, root, "W2", "Beta")
	publish(t, root, "W3", "Gamma")
	st := store.Open(t.TempDir())
	d, err := workshop.OpenDir(root, st, pageSize, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	return d, root, st
}

func TestSubscribePersists(t *testing.T) {
	ctx := context.Background()
	d, root, st := openDir(t, 0)

	if err := d.Subscribe(ctx, "W2"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := d.Subscribe(ctx, "W2"); err != nil {
		t.Fatalf("second Subscribe: %v", err)
	}
	if err := d.Subscribe(ctx, "nope"); !errors.Is(err, workshop.ErrUnknownItem) {
		t.Errorf("Subscribe(nope) err = %v, want ErrUnknownItem", err)
	}

	reopened, err := workshop.OpenDir(root, st, 0, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	levels, err := reopened.Subscribed(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(levels) != 1 || levels[0].ID != "W2" {
		t.Fatalf("Subscribed() = %+v", levels)
	}
	if levels[0].Source != catalog.SourceSubscription {
		t.Errorf("Source = %v, want subscription", levels[0].Source)
	}

	if err := reopened.Unsubscribe(ctx, "W2"); err != nil {
		t.Fatal(err)
	}
	if subs := reopened.Subscriptions(); len(subs) != 0 {
		t.Errorf("Subscriptions() = %v after unsubscribe", subs)
	}
}

func TestSearchPages(t *testing.T) {
	d, _, _ := openDir(t, 2)
	ctx := context.Background()

	res, err := d.Search(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 3 || len(res.Items) != 2 {
		t.Errorf("page 0 = %d items of %d", len(res.Items), res.Count)
	}
	res, _ = d.Search(ctx, "", 1)
	if len(res.Items) != 1 || res.Items[0].Title != "Gamma" {
		t.Errorf("page 1 = %+v", res.Items)
	}
	res, _ = d.Search(ctx, "BETA", 0)
	if res.Count != 1 || res.Items[0].ID != "W2" {
		t.Errorf("search beta = %+v", res)
	}
}

func TestPreview(t *testing.T) {
	d, root, _ := openDir(t, 0)
	if err := os.WriteFile(filepath.Join(root, "W1", "cover.jpg"), []byte("img"), 0600); err != nil {
		t.Fatal(err)
	}
	data, err := d.Preview(context.Background(), "W1")
	if err != nil || string(data) != "img" {
		t.Errorf("Preview(W1) = %q, %v", data, err)
	}
	if _, err := d.Preview(context.Background(), "W2"); err == nil {
		t.Error("Preview without image should fail")
	}
}
