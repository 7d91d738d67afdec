package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// EncodeName derives the external name of a large object: the decimal
// loid followed by every dot-suffix of the original filename, in order.
// The original name's stem is discarded; the suffixes are metadata for
// content-type guessing, never an index key.
func EncodeName(loid int64, original string) string {
	return strconv.FormatInt(loid, 10) + suffixChain(original)
}

// DecodeName recovers the loid from an external name: the portion
// before the first dot-suffix, parsed as a base-10 integer. Any other
// form fails with ErrInvalidName. This is local validation with zero
// round trips; malformed client-supplied names never reach the store.
func DecodeName(name string) (int64, error) {
	base := baseName(name)
	stem := base
	if i := strings.IndexByte(base, '.'); i >= 0 {
		stem = base[:i]
	}
	loid, err := strconv.ParseInt(stem, 10, 64)
	if err != nil || loid <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return loid, nil
}

// suffixChain returns the full dot-suffix chain of a filename,
// ".tar.gz" for "release.tar.gz". Dotfiles and trailing dots carry no
// suffixes.
func suffixChain(name string) string {
	base := baseName(name)
	if base == "" || strings.HasSuffix(base, ".") {
		return ""
	}
	trimmed := strings.TrimLeft(base, ".")
	i := strings.IndexByte(trimmed, '.')
	if i < 0 {
		return ""
	}
	return trimmed[i:]
}

func baseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return name[strings.LastIndexByte(name, '/')+1:]
}
