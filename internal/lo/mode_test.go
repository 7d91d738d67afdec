package lo

import (
	"errors"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"rb", ModeRead},
		{"r+b", ModeReadWrite},
		{"wb", ModeWrite},
		{"w+b", ModeWriteRead},
		{"ab", ModeAppend},
		{"a+b", ModeAppendRead},
	}
	for _, tc := range tests {
		got, err := ParseMode(tc.in)
		if err != nil {
			t.Fatalf("ParseMode(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseMode_Rejected(t *testing.T) {
	for _, in := range []string{"", "r", "w", "rt", "x+b", "rw", "RB"} {
		if _, err := ParseMode(in); !errors.Is(err, ErrInvalidMode) {
			t.Fatalf("ParseMode(%q) error = %v, want ErrInvalidMode", in, err)
		}
	}
}

func TestModeMatrix(t *testing.T) {
	tests := []struct {
		mode                                 Mode
		readable, writable, creates, appends bool
	}{
		{ModeRead, true, false, false, false},
		{ModeReadWrite, true, true, false, false},
		{ModeWrite, false, true, true, false},
		{ModeWriteRead, true, true, true, false},
		{ModeAppend, false, true, true, true},
		{ModeAppendRead, true, true, true, true},
	}
	for _, tc := range tests {
		if got := tc.mode.Readable(); got != tc.readable {
			t.Fatalf("%v.Readable() = %v, want %v", tc.mode, got, tc.readable)
		}
		if got := tc.mode.Writable(); got != tc.writable {
			t.Fatalf("%v.Writable() = %v, want %v", tc.mode, got, tc.writable)
		}
		if got := tc.mode.Creates(); got != tc.creates {
			t.Fatalf("%v.Creates() = %v, want %v", tc.mode, got, tc.creates)
		}
		if got := tc.mode.Appends(); got != tc.appends {
			t.Fatalf("%v.Appends() = %v, want %v", tc.mode, got, tc.appends)
		}
	}
}

func TestModeFlags(t *testing.T) {
	tests := []struct {
		mode Mode
		want int32
	}{
		{ModeRead, invRead},
		{ModeWrite, invWrite},
		{ModeAppend, invWrite},
		{ModeReadWrite, invRead | invWrite},
		{ModeWriteRead, invRead | invWrite},
		{ModeAppendRead, invRead | invWrite},
	}
	for _, tc := range tests {
		if got := tc.mode.flags(); got != tc.want {
			t.Fatalf("%v.flags() = %#x, want %#x", tc.mode, got, tc.want)
		}
	}
}
