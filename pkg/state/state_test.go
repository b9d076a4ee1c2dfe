package state

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestStatePutGet(t *testing.T) {
	var st State
	st.Put(Entry{Name: "b.jpg", Data: []byte("b")})
	st.Put(Entry{Name: "a.jpg", Data: []byte("a")})
	st.Put(Entry{Name: "c.jpg", Data: []byte("c")})
	st.Put(Entry{Name: "b.jpg", Data: []byte("B")})

	if got, want := st.Names(), []string{"a.jpg", "b.jpg", "c.jpg"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	e, ok := st.Get("b.jpg")
	if !ok || string(e.Data) != "B" {
		t.Errorf("Get(b.jpg) = %q, %v; want replaced entry", e.Data, ok)
	}
	if e.CreatedAt.IsZero() {
		t.Error("Put should stamp CreatedAt")
	}
	if _, ok := st.Get("zzz"); ok {
		t.Error("Get of a missing name should fail")
	}
	if st.Len() != 3 {
		t.Errorf("Len() = %d", st.Len())
	}
}

// testStore runs the behaviour every backend must share.
func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	empty, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if empty.Len() != 0 {
		t.Fatalf("fresh store has %d images", empty.Len())
	}

	st := &State{}
	st.Put(Entry{Name: "000000_001.jpg", Data: []byte{1, 2, 3}})
	st.Put(Entry{Name: "000000_000.jpg", Data: []byte{4}})
	if err := store.Save(ctx, st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got.Names(), []string{"000000_000.jpg", "000000_001.jpg"}) {
		t.Errorf("Names() = %v", got.Names())
	}
	if e, _ := got.Get("000000_001.jpg"); !reflect.DeepEqual(e.Data, []byte{1, 2, 3}) {
		t.Errorf("data = %v", e.Data)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set by Save")
	}

	// Saving a smaller state drops removed images.
	smaller := &State{}
	smaller.Put(Entry{Name: "000000_000.jpg", Data: []byte{4}})
	if err := store.Save(ctx, smaller); err != nil {
		t.Fatal(err)
	}
	got, err = store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 1 {
		t.Errorf("after shrinking, Len() = %d, want 1", got.Len())
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	testStore(t, store)

	if store.Path() != path {
		t.Errorf("Path() = %s", store.Path())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain")
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	store, _ := NewFileStore(path)
	if _, err := store.Load(context.Background()); err == nil {
		t.Error("corrupt state should fail to load")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("FACEAUG_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FACEAUG_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	key := "faceaug-test:state:" + time.Now().Format("150405.000000")
	store, err := NewRedisStore(ctx, addr, key)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	defer store.client.Del(ctx, key)
	testStore(t, store)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("FACEAUG_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("FACEAUG_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	db := "faceaug_test_" + time.Now().Format("150405")
	store, err := NewMongoStore(ctx, uri, db)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	defer store.client.Database(db).Drop(ctx)
	testStore(t, store)
}
