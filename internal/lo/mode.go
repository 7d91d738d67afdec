package lo

import "fmt"

// Mode is the access mode of a Stream. The matrix mirrors the binary
// file modes the store accepts:
//
//	Mode    r   r+  w   w+  a   a+
//	Read    +   +       +       +
//	Write       +   +   +   +   +
//	Create          +   +   +   +
//	End                     +   +
type Mode int

const (
	ModeRead       Mode = iota // "rb": read an existing object
	ModeReadWrite              // "r+b": read and write an existing object
	ModeWrite                  // "wb": write, creating on demand
	ModeWriteRead              // "w+b": read and write, creating on demand
	ModeAppend                 // "ab": write positioned at end, creating on demand
	ModeAppendRead             // "a+b": read and write positioned at end, creating on demand
)

var modeStrings = map[string]Mode{
	"rb":  ModeRead,
	"r+b": ModeReadWrite,
	"wb":  ModeWrite,
	"w+b": ModeWriteRead,
	"ab":  ModeAppend,
	"a+b": ModeAppendRead,
}

// ParseMode decodes a mode string into the closed enumeration. Unknown
// combinations (including text modes) are rejected here, once, instead
// of being re-checked by every operation.
func ParseMode(s string) (Mode, error) {
	m, ok := modeStrings[s]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

func (m Mode) String() string {
	for s, mode := range modeStrings {
		if mode == m {
			return s
		}
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Readable reports whether reads are permitted in this mode.
func (m Mode) Readable() bool {
	switch m {
	case ModeRead, ModeReadWrite, ModeWriteRead, ModeAppendRead:
		return true
	}
	return false
}

// Writable reports whether writes and truncation are permitted.
func (m Mode) Writable() bool {
	switch m {
	case ModeReadWrite, ModeWrite, ModeWriteRead, ModeAppend, ModeAppendRead:
		return true
	}
	return false
}

// Creates reports whether opening with a zero loid may create the object.
func (m Mode) Creates() bool {
	switch m {
	case ModeWrite, ModeWriteRead, ModeAppend, ModeAppendRead:
		return true
	}
	return false
}

// Appends reports whether opening seeks to end-of-object.
func (m Mode) Appends() bool {
	return m == ModeAppend || m == ModeAppendRead
}

func (m Mode) flags() int32 {
	var f int32
	if m.Readable() {
		f |= invRead
	}
	if m.Writable() {
		f |= invWrite
	}
	return f
}
