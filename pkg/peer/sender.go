package peer

import (
	"bufio"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/peerdex/peerdex/internal/logger"
)

// ChunkSize is the transfer unit on both legs of the peer protocol.
const ChunkSize = 1024

// RequestTimeout bounds the wait for the request line. A peer that
// connects and never sends must not pin a sender goroutine.
const RequestTimeout = 10 * time.Second

// NotFoundSentinel is the literal response for a missing file. It doubles
// as the receiver-side detection prefix, so it must never change.
const NotFoundSentinel = "HTTP/1.1 404 Not Found\n"

// ServeConn answers one transfer request on conn and closes it.
//
// The request is a single line "GET <%20-escaped path>\n". A readable file
// at that path is streamed raw in ChunkSize pieces; anything else gets the
// 404 sentinel.
func ServeConn(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()

	_ = conn.SetReadDeadline(time.Now().Add(RequestTimeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		logger.Warn("failed to read transfer request",
			logger.KeyPeerAddr, remote, logger.KeyError, err)
		return
	}
	_ = conn.SetReadDeadline(time.Time{})
	line = strings.TrimRight(line, "\r\n")

	verb, escaped, ok := strings.Cut(line, " ")
	if !ok || verb != "GET" {
		logger.Warn("malformed transfer request",
			logger.KeyPeerAddr, remote)
		return
	}
	path := UnescapePath(escaped)

	f, err := os.Open(path)
	if err != nil {
		logger.Info("requested file not found",
			logger.KeyPeerAddr, remote, logger.KeyPath, path)
		_, _ = io.WriteString(conn, NotFoundSentinel)
		return
	}
	defer f.Close()

	var sent int64
	buf := make([]byte, ChunkSize)
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			if _, err := conn.Write(buf[:n]); err != nil {
				logger.Warn("transfer aborted",
					logger.KeyPeerAddr, remote,
					logger.KeyPath, path,
					logger.KeyBytesWritten, sent,
					logger.KeyError, err)
				return
			}
			sent += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			logger.Error("failed reading shared file",
				logger.KeyPath, path, logger.KeyError, readErr)
			return
		}
	}

	logger.Info("file sent",
		logger.KeyPeerAddr, remote,
		logger.KeyPath, path,
		logger.KeyBytesWritten, sent)
}
