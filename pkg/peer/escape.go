// Package peer implements the direct peer-to-peer transfer leg: the
// listener and sender on the sharing side, the downloader on the fetching
// side.
//
// The wire protocol is a single request line "GET <path>\n" answered with
// raw file bytes to EOF, or with the literal 404 sentinel when the file is
// missing. There is no length framing; receivers rely on EOF and must
// inspect the first chunk for the sentinel.
package peer

import "strings"

// EscapePath encodes spaces as %20. Only the space/%20 pair is translated;
// this is deliberately not a full URL-encoding suite, for compatibility
// with existing peers.
func EscapePath(path string) string {
	return strings.ReplaceAll(path, " ", "%20")
}

// UnescapePath decodes %20 back to spaces.
func UnescapePath(path string) string {
	return strings.ReplaceAll(path, "%20", " ")
}
