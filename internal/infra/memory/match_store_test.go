package memory

import (
	"testing"

	"fraction-tug-service/internal/app"
)

func TestMatchStoreLifecycle(t *testing.T) {
	store := NewMatchStore()
	created := 0
	create := func(id string) *app.Match {
		created++
		return app.NewMatch(id, app.NewGenerator(), app.TimerScheduler{}, app.DefaultTimings())
	}

	match := store.GetOrCreate("m1", create)
	if match == nil {
		t.Fatalf("expected match")
	}
	if again := store.GetOrCreate("m1", create); again != match {
		t.Fatalf("expected the same match on second open")
	}
	if created != 1 {
		t.Fatalf("expected one match created, got %d", created)
	}
	if _, ok := store.Get("m1"); !ok {
		t.Fatalf("expected match present")
	}

	store.GetOrCreate("m0", create)
	if ids := store.IDs(); len(ids) != 2 || ids[0] != "m0" || ids[1] != "m1" {
		t.Fatalf("unexpected ids %v", ids)
	}

	store.Delete("m1")
	if _, ok := store.Get("m1"); ok {
		t.Fatalf("expected match removed")
	}
}
