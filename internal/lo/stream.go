package lo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
)

const (
	// ChunkSize bounds a single bulk read or write round trip.
	ChunkSize = 64 * 1024

	// lineChunkSize bounds a single ReadLine scan round trip.
	lineChunkSize = 64
)

// Stream is a file-like adapter over one large object. It is bound to
// the transaction that opened it and is not safe for concurrent use.
type Stream struct {
	conn Conn
	loid int64
	name string
	mode Mode
	fd   int32
	open bool
}

// Open binds a remote descriptor to the large object identified by loid.
// A zero loid is the not-yet-created sentinel: it is only accepted with
// a creating mode, which allocates a fresh object first. Append modes
// position at end-of-object unless the object was just created.
func Open(ctx context.Context, conn Conn, loid int64, mode Mode, name string) (*Stream, error) {
	s := &Stream{conn: conn, loid: loid, name: name}
	if err := s.Reopen(ctx, mode); err != nil {
		return nil, err
	}
	return s, nil
}

// Reopen re-establishes a descriptor in the given mode, closing the
// previous one first if the stream is still open.
func (s *Stream) Reopen(ctx context.Context, mode Mode) error {
	if s.open {
		if err := s.Close(ctx); err != nil {
			return err
		}
	}
	if s.loid == 0 && !mode.Creates() {
		return fmt.Errorf("%w: mode %s cannot create an object", ErrInvalidMode, mode)
	}

	created := false
	if s.loid == 0 {
		loid, err := loCreate(ctx, s.conn)
		if err != nil {
			return err
		}
		s.loid = loid
		created = true
	}
	fd, err := loOpen(ctx, s.conn, s.loid, mode.flags())
	if err != nil {
		return err
	}
	s.fd = fd
	s.mode = mode
	s.open = true
	if mode.Appends() && !created {
		if _, err := loSeek(ctx, s.conn, s.fd, 0, SeekEnd); err != nil {
			return err
		}
	}
	return nil
}

// LOID returns the object identifier, which is zero only before a
// creating open has run.
func (s *Stream) LOID() int64 { return s.loid }

// Name returns the display name the stream was opened with, falling
// back to the decimal loid.
func (s *Stream) Name() string {
	if s.name != "" {
		return s.name
	}
	return strconv.FormatInt(s.loid, 10)
}

// Mode returns the access mode of the current descriptor.
func (s *Stream) Mode() Mode { return s.mode }

// Closed reports whether the remote descriptor has been released.
func (s *Stream) Closed() bool { return !s.open }

// Close releases the remote descriptor. It is idempotent: closing an
// already-closed stream is a no-op.
func (s *Stream) Close(ctx context.Context) error {
	if !s.open {
		return nil
	}
	fd := s.fd
	s.open = false
	return loClose(ctx, s.conn, fd)
}

func (s *Stream) readable() error {
	if !s.open {
		return ErrClosed
	}
	if !s.mode.Readable() {
		return ErrNotReadable
	}
	return nil
}

func (s *Stream) writable() error {
	if !s.open {
		return ErrClosed
	}
	if !s.mode.Writable() {
		return ErrNotWritable
	}
	return nil
}

// Read returns up to n bytes from the current position in a single
// round trip. A short result occurs only at end-of-object, and an empty
// result exactly at end-of-object. A negative n reads everything that
// remains, chunk by chunk.
func (s *Stream) Read(ctx context.Context, n int) ([]byte, error) {
	if err := s.readable(); err != nil {
		return nil, err
	}
	if n < 0 {
		return s.ReadAll(ctx)
	}
	if n == 0 {
		return []byte{}, nil
	}
	data, err := loRead(ctx, s.conn, s.fd, n)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// ReadAll reads from the current position to end-of-object in ChunkSize
// round trips.
func (s *Stream) ReadAll(ctx context.Context) ([]byte, error) {
	if err := s.readable(); err != nil {
		return nil, err
	}
	var all []byte
	for {
		chunk, err := loRead(ctx, s.conn, s.fd, ChunkSize)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			break
		}
		all = append(all, chunk...)
	}
	if all == nil {
		all = []byte{}
	}
	return all, nil
}

// Write stores p at the current position in a single round trip. The
// primitive does not model partial writes, so the count is len(p).
func (s *Stream) Write(ctx context.Context, p []byte) (int, error) {
	if err := s.writable(); err != nil {
		return 0, err
	}
	if err := loWrite(ctx, s.conn, s.fd, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteChunks writes each chunk in order, one round trip per chunk,
// with no coalescing.
func (s *Stream) WriteChunks(ctx context.Context, chunks [][]byte) (int64, error) {
	var total int64
	for _, chunk := range chunks {
		n, err := s.Write(ctx, chunk)
		if err != nil {
			return total, err
		}
		total += int64(n)
	}
	return total, nil
}

// WriteFrom copies r to the stream in ChunkSize writes until EOF.
func (s *Stream) WriteFrom(ctx context.Context, r io.Reader) (int64, error) {
	buf := make([]byte, ChunkSize)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := s.Write(ctx, buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("read source: %w", err)
		}
	}
}

// Seek repositions the stream and returns the resulting absolute
// position as reported by the store.
func (s *Stream) Seek(ctx context.Context, offset int64, whence int) (int64, error) {
	if !s.open {
		return 0, ErrClosed
	}
	switch whence {
	case SeekStart, SeekCurrent, SeekEnd:
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	return loSeek(ctx, s.conn, s.fd, offset, whence)
}

// Tell returns the current absolute position. It never moves the
// position as a side effect.
func (s *Stream) Tell(ctx context.Context) (int64, error) {
	if !s.open {
		return 0, ErrClosed
	}
	return loTell(ctx, s.conn, s.fd)
}

// Size returns the total object size in three round trips: remember the
// position, seek to end (which reports the size), seek back. The
// logical position is unchanged when it returns.
func (s *Stream) Size(ctx context.Context) (int64, error) {
	if !s.open {
		return 0, ErrClosed
	}
	pos, err := loTell(ctx, s.conn, s.fd)
	if err != nil {
		return 0, err
	}
	size, err := loSeek(ctx, s.conn, s.fd, 0, SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := loSeek(ctx, s.conn, s.fd, pos, SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}

// Truncate resizes the object to size bytes, or to the current position
// when size is negative, and returns the resolved size.
func (s *Stream) Truncate(ctx context.Context, size int64) (int64, error) {
	if err := s.writable(); err != nil {
		return 0, err
	}
	if size < 0 {
		pos, err := loTell(ctx, s.conn, s.fd)
		if err != nil {
			return 0, err
		}
		size = pos
	}
	if err := loTruncate(ctx, s.conn, s.fd, size); err != nil {
		return 0, err
	}
	return size, nil
}

// ReadLine reads up to and including the next newline, scanning in
// lineChunkSize increments. max bounds the result length; zero returns
// empty without reading, negative means unbounded. However many bytes
// were over-read while scanning, the stream ends positioned exactly at
// start + len(result).
func (s *Stream) ReadLine(ctx context.Context, max int) ([]byte, error) {
	if err := s.readable(); err != nil {
		return nil, err
	}
	if max == 0 {
		return []byte{}, nil
	}
	pos, err := loTell(ctx, s.conn, s.fd)
	if err != nil {
		return nil, err
	}
	var line []byte
	for {
		chunk, err := loRead(ctx, s.conn, s.fd, lineChunkSize)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			break
		}
		if i := bytes.IndexByte(chunk, '\n'); i >= 0 {
			line = append(line, chunk[:i+1]...)
			break
		}
		line = append(line, chunk...)
		if max > 0 && len(line) >= max {
			break
		}
	}
	if len(line) == 0 {
		return []byte{}, nil
	}
	if max > 0 && len(line) > max {
		line = line[:max]
	}
	if _, err := loSeek(ctx, s.conn, s.fd, pos+int64(len(line)), SeekStart); err != nil {
		return nil, err
	}
	return line, nil
}

// ReadLines collects up to max lines from the current position. A max
// of zero returns no lines; a negative max means no limit.
func (s *Stream) ReadLines(ctx context.Context, max int) ([][]byte, error) {
	if max == 0 {
		return nil, nil
	}
	var lines [][]byte
	it := s.Lines()
	for it.Next(ctx) {
		lines = append(lines, it.Line())
		if max > 0 && len(lines) == max {
			break
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
