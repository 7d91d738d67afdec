package storage_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lovault/lovault/internal/storage"
	"github.com/lovault/lovault/internal/storage/storagetest"
)

func setup(t *testing.T, baseURL string) (*storagetest.DB, *storage.Storage) {
	t.Helper()
	db := storagetest.NewDB()
	return db, storage.New(db, baseURL)
}

func TestSaveAndOpen(t *testing.T) {
	ctx := context.Background()
	db, st := setup(t, "")

	name, err := st.Save(ctx, "report.tar.gz", strings.NewReader("hello large object"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasSuffix(name, ".tar.gz") {
		t.Fatalf("Save() name = %q, want .tar.gz suffix", name)
	}
	loid, err := storage.DecodeName(name)
	if err != nil {
		t.Fatalf("DecodeName(%q) error = %v", name, err)
	}
	if data, ok := db.Store.Object(loid); !ok || !bytes.Equal(data, []byte("hello large object")) {
		t.Fatalf("stored object = %q, %v", data, ok)
	}

	tx, err := db.ReadTx(ctx)
	if err != nil {
		t.Fatalf("ReadTx() error = %v", err)
	}
	defer tx.Rollback()
	f, err := st.Open(ctx, tx, name)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got, err := f.Read(ctx, -1)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "hello large object" {
		t.Fatalf("Read() = %q", got)
	}
	if f.Name() != name {
		t.Fatalf("Name() = %q, want %q", f.Name(), name)
	}
	if err := f.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()
	db, st := setup(t, "")
	tx, _ := db.ReadTx(ctx)

	if _, err := st.Open(ctx, tx, "report.pdf"); !errors.Is(err, storage.ErrInvalidName) {
		t.Fatalf("Open(malformed) error = %v, want ErrInvalidName", err)
	}
	if _, err := st.Open(ctx, tx, "12345.pdf"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Open(absent) error = %v, want ErrNotFound", err)
	}
}

func TestOpenWrite_UpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	db, st := setup(t, "")
	loid := db.Store.Put([]byte("draft"))
	name := storage.EncodeName(loid, "doc.txt")

	tx, err := db.WriteTx(ctx)
	if err != nil {
		t.Fatalf("WriteTx() error = %v", err)
	}
	defer tx.Rollback()
	f, err := st.OpenWrite(ctx, tx, name)
	if err != nil {
		t.Fatalf("OpenWrite() error = %v", err)
	}
	if _, err := f.Write(ctx, []byte("final")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := f.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if data, _ := db.Store.Object(loid); !bytes.Equal(data, []byte("final")) {
		t.Fatalf("object after OpenWrite update = %q", data)
	}

	if _, err := st.OpenWrite(ctx, tx, "404.txt"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("OpenWrite(absent) error = %v, want ErrNotFound", err)
	}
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	db, st := setup(t, "")
	loid := db.Store.Put([]byte("x"))
	name := storage.EncodeName(loid, "a.bin")

	tests := []struct {
		name string
		want bool
	}{
		{name, true},
		{"999999", false},
		{"not-a-name", false}, // malformed fails closed, not loudly
	}
	for _, tc := range tests {
		got, err := st.Exists(ctx, tc.name)
		if err != nil {
			t.Fatalf("Exists(%q) error = %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("Exists(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	db, st := setup(t, "")
	loid := db.Store.Put([]byte("x"))
	name := storage.EncodeName(loid, "a.bin")

	if err := st.Delete(ctx, name); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := db.Store.Object(loid); ok {
		t.Fatal("object still present after Delete")
	}

	// deleting what is already gone is success
	if err := st.Delete(ctx, name); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}

	// a malformed name fails before any store access
	if err := st.Delete(ctx, "not-a-name"); !errors.Is(err, storage.ErrInvalidName) {
		t.Fatalf("Delete(malformed) error = %v, want ErrInvalidName", err)
	}
}

func TestSize(t *testing.T) {
	ctx := context.Background()
	db, st := setup(t, "")
	loid := db.Store.Put(bytes.Repeat([]byte("a"), 1234))
	name := storage.EncodeName(loid, "a.bin")

	size, err := st.Size(ctx, name)
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if size != 1234 {
		t.Fatalf("Size() = %d, want 1234", size)
	}
	if _, err := st.Size(ctx, "404"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Size(absent) error = %v, want ErrNotFound", err)
	}
}

func TestURL(t *testing.T) {
	_, st := setup(t, "https://media.example.com/files")
	url, err := st.URL("42.png")
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}
	if url != "https://media.example.com/files/42.png" {
		t.Fatalf("URL() = %q", url)
	}

	if _, err := st.URL("nope.png"); !errors.Is(err, storage.ErrInvalidName) {
		t.Fatalf("URL(malformed) error = %v, want ErrInvalidName", err)
	}

	_, bare := setup(t, "")
	if _, err := bare.URL("42.png"); !errors.Is(err, storage.ErrNoBaseURL) {
		t.Fatalf("URL() without base error = %v, want ErrNoBaseURL", err)
	}
}

func TestList_Unsupported(t *testing.T) {
	_, st := setup(t, "")
	if _, err := st.List(""); !errors.Is(err, storage.ErrNotSupported) {
		t.Fatalf("List() error = %v, want ErrNotSupported", err)
	}
}
