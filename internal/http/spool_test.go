package http

import (
	"bytes"
	"io"
	"os"
	"testing"
)

func TestSpool_InMemory(t *testing.T) {
	sp := newSpool()
	defer sp.Close()

	if _, err := sp.Write([]byte("hello ")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := sp.Write([]byte("world")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := sp.Rewind(); err != nil {
		t.Fatalf("Rewind() error = %v", err)
	}
	got, err := io.ReadAll(sp)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("spool content = %q", got)
	}
}

func TestSpool_SpillsToDisk(t *testing.T) {
	sp := newSpool()
	defer sp.Close()

	content := bytes.Repeat([]byte("abcdefgh"), (spoolMemoryLimit/8)+64)
	for off := 0; off < len(content); off += 4096 {
		end := off + 4096
		if end > len(content) {
			end = len(content)
		}
		if _, err := sp.Write(content[off:end]); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if sp.file == nil {
		t.Fatal("spool did not spill past the memory limit")
	}
	if err := sp.Rewind(); err != nil {
		t.Fatalf("Rewind() error = %v", err)
	}
	got, err := io.ReadAll(sp)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("spool content mismatch: got %d bytes, want %d", len(got), len(content))
	}
	name := sp.file.Name()
	if err := sp.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(name); !os.IsNotExist(err) {
		t.Fatalf("spool file %s still present after Close", name)
	}
}
