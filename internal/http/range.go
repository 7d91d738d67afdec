package http

import (
	"errors"
	"strconv"
	"strings"
)

var errMalformedRange = errors.New("malformed range header")

// rawRange is one parsed "bytes=<start>-<end>" spec before resolution
// against the object size. A suffix request ("bytes=-N") is carried as
// a negative start with no end.
type rawRange struct {
	start  int64
	end    int64
	hasEnd bool
}

// parseRangeHeader accepts a single bytes range spec. Multiple
// comma-separated ranges, other units, or any other malformation fail
// with errMalformedRange, which callers treat as "no range requested".
func parseRangeHeader(header string) (rawRange, error) {
	units, spec, found := strings.Cut(strings.TrimSpace(header), "=")
	if !found || units != "bytes" {
		return rawRange{}, errMalformedRange
	}
	spec = strings.TrimSpace(spec)
	if strings.ContainsRune(spec, ',') {
		return rawRange{}, errMalformedRange
	}
	startStr, endStr, found := strings.Cut(spec, "-")
	if !found {
		return rawRange{}, errMalformedRange
	}

	var r rawRange
	if startStr == "" {
		// suffix form: the last N bytes
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return rawRange{}, errMalformedRange
		}
		r.start = -n
		return r, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return rawRange{}, errMalformedRange
	}
	r.start = start
	if endStr != "" {
		end, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < 0 {
			return rawRange{}, errMalformedRange
		}
		r.end = end
		r.hasEnd = true
	}
	return r, nil
}

// byteRange is a resolved interval, inclusive on both ends.
type byteRange struct {
	start, end int64
}

// resolve clamps the raw spec against size. A suffix start becomes
// size+start floored at zero; an absent or oversized end becomes
// size-1. The result is serviceable only when start <= end and start
// lies inside the object.
func (r rawRange) resolve(size int64) (byteRange, bool) {
	start := r.start
	if start < 0 {
		start = size + start
		if start < 0 {
			start = 0
		}
	}
	end := size - 1
	if r.hasEnd && r.end < end {
		end = r.end
	}
	if start > end || start >= size {
		return byteRange{}, false
	}
	return byteRange{start: start, end: end}, true
}
