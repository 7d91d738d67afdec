package http

import (
	"bytes"
	"fmt"
	"os"
)

// spoolMemoryLimit is how much response body is held in memory before
// spilling to a temporary file.
const spoolMemoryLimit = 1 << 20

// spool is a write-then-read buffer for one response body: memory up
// to spoolMemoryLimit, a temporary file beyond it. Closing removes the
// file; the transport closes the spool after streaming it out.
type spool struct {
	buf  bytes.Buffer
	file *os.File
}

func newSpool() *spool {
	return &spool{}
}

func (s *spool) Write(p []byte) (int, error) {
	if s.file == nil && s.buf.Len()+len(p) <= spoolMemoryLimit {
		return s.buf.Write(p)
	}
	if s.file == nil {
		if err := s.spill(); err != nil {
			return 0, err
		}
	}
	return s.file.Write(p)
}

func (s *spool) spill() error {
	f, err := os.CreateTemp("", "lovault-spool-*")
	if err != nil {
		return fmt.Errorf("create spool file: %w", err)
	}
	if _, err := f.Write(s.buf.Bytes()); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("spill spool: %w", err)
	}
	s.buf.Reset()
	s.file = f
	return nil
}

// Rewind prepares the spool for reading from the start.
func (s *spool) Rewind() error {
	if s.file == nil {
		return nil
	}
	if _, err := s.file.Seek(0, 0); err != nil {
		return fmt.Errorf("rewind spool: %w", err)
	}
	return nil
}

func (s *spool) Read(p []byte) (int, error) {
	if s.file != nil {
		return s.file.Read(p)
	}
	return s.buf.Read(p)
}

func (s *spool) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	if rmErr := os.Remove(s.file.Name()); err == nil {
		err = rmErr
	}
	s.file = nil
	return err
}
