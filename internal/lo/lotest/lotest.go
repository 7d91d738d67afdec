// Package lotest provides an in-memory stand-in for the PostgreSQL
// large-object functions, keyed on the exact statements the lo package
// issues. Tests exercise the full primitive-call plumbing against it
// without a database server.
package lotest

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lovault/lovault/internal/lo"
)

const (
	invWrite = 0x20000
	invRead  = 0x40000
)

type descriptor struct {
	loid  int64
	pos   int64
	flags int32
}

// Store holds the large objects shared by every Conn handed out. The
// zero value is not usable; call NewStore.
type Store struct {
	objects  map[int64][]byte
	descs    map[int32]*descriptor
	nextLOID int64
	nextFD   int32
}

func NewStore() *Store {
	return &Store{
		objects:  make(map[int64][]byte),
		descs:    make(map[int32]*descriptor),
		nextLOID: 16384,
	}
}

// Conn returns a connection view of the store satisfying lo.Conn.
func (s *Store) Conn() lo.Conn { return conn{s} }

// Object returns the current bytes of loid and whether it exists.
func (s *Store) Object(loid int64) ([]byte, bool) {
	data, ok := s.objects[loid]
	return data, ok
}

// Put installs an object with the given content and returns its loid.
func (s *Store) Put(data []byte) int64 {
	s.nextLOID++
	s.objects[s.nextLOID] = append([]byte(nil), data...)
	return s.nextLOID
}

// OpenDescriptors reports how many descriptors have not been closed.
func (s *Store) OpenDescriptors() int { return len(s.descs) }

type conn struct{ store *Store }

type row struct {
	vals []any
	err  error
}

func errRow(format string, args ...any) row {
	return row{err: fmt.Errorf(format, args...)}
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("lotest: scan %d values into %d targets", len(r.vals), len(dest))
	}
	for i, v := range r.vals {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *int32:
			*d = v.(int32)
		case *[]byte:
			*d = append([]byte(nil), v.([]byte)...)
		case *bool:
			*d = v.(bool)
		default:
			return fmt.Errorf("lotest: unsupported scan target %T", dest[i])
		}
	}
	return nil
}

func (c conn) QueryRow(_ context.Context, query string, args ...any) lo.Row {
	s := c.store
	switch query {
	case "select lo_create(0)":
		s.nextLOID++
		s.objects[s.nextLOID] = []byte{}
		return row{vals: []any{s.nextLOID}}

	case "select lo_open($1, $2)":
		loid := asInt64(args[0])
		flags := asInt32(args[1])
		if _, ok := s.objects[loid]; !ok {
			return row{err: undefinedObject(loid)}
		}
		s.nextFD++
		s.descs[s.nextFD] = &descriptor{loid: loid, flags: flags}
		return row{vals: []any{s.nextFD}}

	case "select lo_close($1)":
		fd := asInt32(args[0])
		if _, ok := s.descs[fd]; !ok {
			return errRow("lotest: invalid large-object descriptor %d", fd)
		}
		delete(s.descs, fd)
		return row{vals: []any{int32(0)}}

	case "select loread($1, $2)":
		d, err := s.desc(asInt32(args[0]))
		if err != nil {
			return row{err: err}
		}
		if d.flags&invRead == 0 {
			return errRow("lotest: descriptor %d not opened for reading", asInt32(args[0]))
		}
		n := int64(asInt(args[1]))
		data := s.objects[d.loid]
		if d.pos >= int64(len(data)) {
			return row{vals: []any{[]byte{}}}
		}
		end := d.pos + n
		if end > int64(len(data)) {
			end = int64(len(data))
		}
		out := data[d.pos:end]
		d.pos = end
		return row{vals: []any{out}}

	case "select lowrite($1, $2)":
		d, err := s.desc(asInt32(args[0]))
		if err != nil {
			return row{err: err}
		}
		if d.flags&invWrite == 0 {
			return errRow("lotest: descriptor %d not opened for writing", asInt32(args[0]))
		}
		p := args[1].([]byte)
		data := s.objects[d.loid]
		if grow := d.pos + int64(len(p)) - int64(len(data)); grow > 0 {
			data = append(data, make([]byte, grow)...)
		}
		copy(data[d.pos:], p)
		s.objects[d.loid] = data
		d.pos += int64(len(p))
		return row{vals: []any{int32(len(p))}}

	case "select lo_lseek64($1, $2, $3)":
		d, err := s.desc(asInt32(args[0]))
		if err != nil {
			return row{err: err}
		}
		offset := asInt64(args[1])
		var pos int64
		switch asInt(args[2]) {
		case lo.SeekStart:
			pos = offset
		case lo.SeekCurrent:
			pos = d.pos + offset
		case lo.SeekEnd:
			pos = int64(len(s.objects[d.loid])) + offset
		default:
			return errRow("lotest: invalid whence %v", args[2])
		}
		if pos < 0 {
			return errRow("lotest: invalid seek offset %d", pos)
		}
		d.pos = pos
		return row{vals: []any{pos}}

	case "select lo_tell64($1)":
		d, err := s.desc(asInt32(args[0]))
		if err != nil {
			return row{err: err}
		}
		return row{vals: []any{d.pos}}

	case "select lo_truncate64($1, $2)":
		d, err := s.desc(asInt32(args[0]))
		if err != nil {
			return row{err: err}
		}
		if d.flags&invWrite == 0 {
			return errRow("lotest: descriptor %d not opened for writing", asInt32(args[0]))
		}
		size := asInt64(args[1])
		data := s.objects[d.loid]
		if size <= int64(len(data)) {
			s.objects[d.loid] = data[:size]
		} else {
			s.objects[d.loid] = append(data, make([]byte, size-int64(len(data)))...)
		}
		return row{vals: []any{int32(0)}}

	case "select lo_unlink($1)":
		loid := asInt64(args[0])
		if _, ok := s.objects[loid]; !ok {
			return row{err: undefinedObject(loid)}
		}
		delete(s.objects, loid)
		return row{vals: []any{int32(1)}}

	case "select exists(select 1 from pg_largeobject_metadata where oid = $1)":
		_, ok := s.objects[asInt64(args[0])]
		return row{vals: []any{ok}}

	default:
		return errRow("lotest: unexpected statement %q", query)
	}
}

func (s *Store) desc(fd int32) (*descriptor, error) {
	d, ok := s.descs[fd]
	if !ok {
		return nil, fmt.Errorf("lotest: invalid large-object descriptor %d", fd)
	}
	return d, nil
}

func undefinedObject(loid int64) error {
	return &pgconn.PgError{
		Severity: "ERROR",
		Code:     "42704",
		Message:  fmt.Sprintf("large object %d does not exist", loid),
	}
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	}
	panic(fmt.Sprintf("lotest: unsupported argument %T", v))
}

func asInt32(v any) int32 { return int32(asInt64(v)) }

func asInt(v any) int { return int(asInt64(v)) }
