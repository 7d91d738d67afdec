package lo

import (
	"bytes"
	"context"
)

// LineIterator is a lazy, finite, non-restartable walk over the
// newline-terminated slices of a stream, starting at its current
// position. Bytes are fetched in ChunkSize round trips and buffered
// ahead, but after every yielded line the stream is repositioned to the
// consumer's logical offset: abandoning the iteration mid-way leaves
// the stream exactly past the last line it handed out, not past
// whatever was fetched.
type LineIterator struct {
	s        *Stream
	buf      []byte
	fetchPos int64 // next unread store offset
	started  bool
	eof      bool
	done     bool
	line     []byte
	err      error
}

// Lines returns an iterator over the remaining lines of the stream.
func (s *Stream) Lines() *LineIterator {
	return &LineIterator{s: s}
}

// Next advances to the next line. It returns false at end-of-object or
// on error; check Err afterwards.
func (it *LineIterator) Next(ctx context.Context) bool {
	if it.done || it.err != nil {
		return false
	}
	if !it.started {
		if err := it.s.readable(); err != nil {
			it.err = err
			return false
		}
		pos, err := it.s.Tell(ctx)
		if err != nil {
			it.err = err
			return false
		}
		it.fetchPos = pos
		it.started = true
	}
	for {
		if i := bytes.IndexByte(it.buf, '\n'); i >= 0 {
			return it.yield(ctx, it.buf[:i+1])
		}
		if it.eof {
			it.done = true
			if len(it.buf) > 0 {
				// unterminated trailer
				return it.yield(ctx, it.buf)
			}
			return false
		}
		if err := it.fill(ctx); err != nil {
			it.err = err
			return false
		}
	}
}

// yield hands out line and advances the stream by exactly its length.
func (it *LineIterator) yield(ctx context.Context, line []byte) bool {
	it.line = line
	it.buf = it.buf[len(line):]
	if _, err := it.s.Seek(ctx, int64(len(line)), SeekCurrent); err != nil {
		it.err = err
		return false
	}
	return true
}

// fill fetches one more chunk from the fetch frontier, then restores
// the stream to the consumer's position.
func (it *LineIterator) fill(ctx context.Context) error {
	if _, err := it.s.Seek(ctx, it.fetchPos, SeekStart); err != nil {
		return err
	}
	chunk, err := it.s.Read(ctx, ChunkSize)
	if err != nil {
		return err
	}
	if len(chunk) == 0 {
		it.eof = true
	} else {
		it.fetchPos += int64(len(chunk))
		it.buf = append(it.buf, chunk...)
	}
	_, err = it.s.Seek(ctx, it.fetchPos-int64(len(it.buf)), SeekStart)
	return err
}

// Line returns the line produced by the last successful Next, including
// its terminator except for an unterminated final line.
func (it *LineIterator) Line() []byte { return it.line }

// Err returns the first error hit while iterating.
func (it *LineIterator) Err() error { return it.err }
