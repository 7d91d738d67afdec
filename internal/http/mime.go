package http

import (
	"mime"
	"path"
	"strings"
)

const defaultContentType = "application/octet-stream"

// Compression suffixes that translate to a Content-Encoding rather
// than a content type, so "481293.tar.gz" serves as an x-tar with
// gzip encoding.
var encodingBySuffix = map[string]string{
	".gz":  "gzip",
	".bz2": "bzip2",
	".xz":  "xz",
	".br":  "br",
	".zst": "zstd",
}

// contentTypeFor guesses the content type and optional content
// encoding from an external name's suffixes.
func contentTypeFor(name string) (ctype, encoding string) {
	ext := path.Ext(name)
	if enc, ok := encodingBySuffix[strings.ToLower(ext)]; ok {
		encoding = enc
		name = strings.TrimSuffix(name, ext)
		ext = path.Ext(name)
	}
	ctype = mime.TypeByExtension(strings.ToLower(ext))
	if ctype == "" {
		ctype = defaultContentType
	}
	return ctype, encoding
}
