package logger

// Standard field keys for structured logging. Use these consistently so log
// lines from the tracker and the peer agent can be aggregated and queried.
const (
	// Tracker RPCs
	KeyOperation = "operation" // RPC name: connect, resume, register_file, ...
	KeyTag       = "tag"       // outcome tag: OK, NEW, UPDATE, ERROR, ...
	KeyUser      = "user"      // user name on the session
	KeySessions  = "sessions"  // current live session count

	// File catalog
	KeyFileID   = "file_id"   // catalog file identifier
	KeyFileName = "file_name" // registered file name
	KeyFileType = "file_type" // registered file type/extension
	KeyPath     = "path"      // file path on the owning peer
	KeySize     = "size"      // file size in bytes
	KeyQuery    = "query"     // search query string

	// Peer transfers
	KeyPeerAddr     = "peer_addr"     // remote peer address
	KeyBytesWritten = "bytes_written" // bytes written so far
	KeyPercent      = "percent"       // transfer progress percentage

	// Connections
	KeyClientIP   = "client_ip"   // client IP address
	KeyClientPort = "client_port" // client source port
	KeyRequestID  = "request_id"  // HTTP request correlation ID

	// Operation metadata
	KeyDurationMs = "duration_ms" // operation duration in milliseconds
	KeyError      = "error"       // error message
)
