// Package storage is the per-request entry point to large-object
// backed files: it resolves external names to identifiers, opens
// transaction-bound streams, and owns the lifecycle of the handles it
// creates.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lovault/lovault/internal/lo"
)

var (
	// ErrInvalidName marks a malformed external name, detected locally.
	ErrInvalidName = errors.New("invalid object name")

	// ErrNotFound marks a well-formed name whose object is absent.
	ErrNotFound = errors.New("object does not exist")

	// ErrNoBaseURL is returned by URL when no base URL is configured.
	ErrNoBaseURL = errors.New("no base url configured")

	// ErrNotSupported marks operations the flat identifier space cannot
	// provide, such as directory listing.
	ErrNotSupported = errors.New("operation not supported")
)

// DB hands out transactional connections to the backing store.
// Read-only operations go through ReadTx; anything that may mutate
// goes through WriteTx. The two may be backed by distinct connection
// pools when the deployment separates read and write roles.
type DB interface {
	ReadTx(ctx context.Context) (Tx, error)
	WriteTx(ctx context.Context) (Tx, error)
}

// Tx is one transaction: a connection for primitive calls plus its
// commit/rollback scope. Rollback after Commit must be a no-op.
type Tx interface {
	lo.Conn
	Commit() error
	Rollback() error
}

// Storage is the store façade. Construct it once with its
// configuration and pass it to consumers explicitly.
type Storage struct {
	db      DB
	baseURL string
}

func New(db DB, baseURL string) *Storage {
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Storage{db: db, baseURL: baseURL}
}

// DB exposes the transactional provider for callers that need to scope
// several operations in one transaction, like range serving.
func (s *Storage) DB() DB { return s.db }

// Exists reports whether name resolves to a present object. A
// malformed name fails closed to false rather than erroring.
func (s *Storage) Exists(ctx context.Context, name string) (bool, error) {
	loid, err := DecodeName(name)
	if err != nil {
		return false, nil
	}
	tx, err := s.db.ReadTx(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()
	found, err := lo.Exists(ctx, tx, loid)
	if err != nil {
		return false, err
	}
	return found, tx.Commit()
}

// Open resolves name and opens a read-mode stream bound to tx. The
// stream is only valid until tx ends; the caller must close it on
// every exit path before committing.
func (s *Storage) Open(ctx context.Context, tx Tx, name string) (*lo.Stream, error) {
	loid, err := DecodeName(name)
	if err != nil {
		return nil, err
	}
	found, err := lo.Exists(ctx, tx, loid)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return lo.Open(ctx, tx, loid, lo.ModeRead, name)
}

// OpenWrite resolves name and opens a read-write stream bound to tx,
// which must come from WriteTx. The object must already exist; new
// objects come from Save.
func (s *Storage) OpenWrite(ctx context.Context, tx Tx, name string) (*lo.Stream, error) {
	loid, err := DecodeName(name)
	if err != nil {
		return nil, err
	}
	found, err := lo.Exists(ctx, tx, loid)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return lo.Open(ctx, tx, loid, lo.ModeReadWrite, name)
}

// Save stores content as a new large object and returns its external
// name, combining the store-assigned loid with the original filename's
// suffixes. Caller-supplied identifiers are never honored.
func (s *Storage) Save(ctx context.Context, original string, content io.Reader) (string, error) {
	tx, err := s.db.WriteTx(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	f, err := lo.Open(ctx, tx, 0, lo.ModeWrite, "")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteFrom(ctx, content); err != nil {
		_ = f.Close(ctx)
		return "", err
	}
	if err := f.Close(ctx); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save: %w", err)
	}
	return EncodeName(f.LOID(), original), nil
}

// Delete unlinks the object behind name. Deleting an object that is
// already gone succeeds; the race between two deleters, or a delete
// against a concurrent open, is last-writer-wins by design. A
// malformed name fails with ErrInvalidName before any store access.
func (s *Storage) Delete(ctx context.Context, name string) error {
	loid, err := DecodeName(name)
	if err != nil {
		return err
	}
	tx, err := s.db.WriteTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := lo.Unlink(ctx, tx, loid); err != nil {
		if lo.IsUndefinedObject(err) {
			return nil
		}
		return err
	}
	return tx.Commit()
}

// Size returns the total byte size of the object behind name, always
// measured through the stream's seek-to-end walk, never cached.
func (s *Storage) Size(ctx context.Context, name string) (int64, error) {
	tx, err := s.db.ReadTx(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	f, err := s.Open(ctx, tx, name)
	if err != nil {
		return 0, err
	}
	size, err := f.Size(ctx)
	if cerr := f.Close(ctx); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}
	return size, tx.Commit()
}

// URL joins name against the configured base URL. The name must decode
// even though the loid is unused: malformed names get no URL.
func (s *Storage) URL(name string) (string, error) {
	if _, err := DecodeName(name); err != nil {
		return "", err
	}
	if s.baseURL == "" {
		return "", ErrNoBaseURL
	}
	return s.baseURL + name, nil
}

// List is unsupported: the store is a flat identifier space, not a
// hierarchy.
func (s *Storage) List(string) ([]string, error) {
	return nil, fmt.Errorf("%w: directory listing", ErrNotSupported)
}
