package peer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peerdex/peerdex/internal/logger"
)

// DefaultTimeout bounds the dial and each socket read.
const DefaultTimeout = 10 * time.Second

// maxCollisionSuffix caps the "(n)" collision probe; past it the base
// name is overwritten.
const maxCollisionSuffix = 1000

// ErrPeerMissingFile indicates the remote peer answered with the 404
// sentinel: the file is registered in the catalog but gone from the
// peer's disk.
var ErrPeerMissingFile = errors.New("peer does not have the file")

// ProgressFunc receives the running completion percentage of a download,
// computed as floor(bytes_written * 100 / expected_size).
type ProgressFunc func(percent int)

// Downloader fetches files from remote peers into a local directory.
type Downloader struct {
	// Dir is where downloads land. Defaults to the working directory.
	Dir string

	// Timeout bounds the dial and each read. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Download fetches the named file from the peer at host:port and returns
// the local path it was written to.
//
// remotePath is the directory on the remote peer; the request asks for
// remotePath + name + "." + fileType. A file of the same name already
// present locally is not clobbered: the download lands under "name(1)",
// "name(2)", ... instead, overwriting the base name only after
// maxCollisionSuffix attempts.
//
// On the 404 sentinel, a timeout or any mid-stream failure the partial
// file is deleted and an error is returned.
func (d *Downloader) Download(host string, port int, remotePath, name, fileType string, size int64, progress ProgressFunc) (string, error) {
	timeout := d.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	target := d.localTarget(name, fileType)

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", fmt.Errorf("failed to reach peer %s: %w", addr, err)
	}
	defer conn.Close()

	request := "GET " + EscapePath(remotePath+name+"."+fileType) + "\n"
	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return "", fmt.Errorf("failed to arm socket deadline: %w", err)
	}
	if _, err := conn.Write([]byte(request)); err != nil {
		return "", fmt.Errorf("failed to send request to %s: %w", addr, err)
	}

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", target, err)
	}

	written, err := d.receive(conn, out, size, timeout, progress)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to finish %s: %w", target, closeErr)
	}
	if err != nil {
		_ = os.Remove(target)
		return "", err
	}

	logger.Info("download complete",
		logger.KeyPeerAddr, addr,
		logger.KeyPath, target,
		logger.KeyBytesWritten, written)
	return target, nil
}

// receive streams the response body into out, watching the first chunk
// for the 404 sentinel.
func (d *Downloader) receive(conn net.Conn, out *os.File, size int64, timeout time.Duration, progress ProgressFunc) (int64, error) {
	sentinel := []byte(strings.TrimSuffix(NotFoundSentinel, "\n"))
	buf := make([]byte, ChunkSize)
	var written int64
	first := true

	for {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return written, fmt.Errorf("failed to arm socket deadline: %w", err)
		}
		n, err := conn.Read(buf)
		if n > 0 {
			if first {
				first = false
				if bytes.HasPrefix(buf[:n], sentinel) {
					return written, ErrPeerMissingFile
				}
			}
			if _, werr := out.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("failed writing download: %w", werr)
			}
			written += int64(n)
			if progress != nil {
				progress(percentOf(written, size))
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return written, nil
			}
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return written, fmt.Errorf("peer stalled for %s: %w", timeout, err)
			}
			return written, fmt.Errorf("transfer failed mid-stream: %w", err)
		}
	}
}

func percentOf(written, size int64) int {
	if size <= 0 {
		return 100
	}
	p := int(written * 100 / size)
	if p > 100 {
		p = 100
	}
	return p
}

// localTarget picks the landing path, probing "(n)" suffixes while a file
// of that name already exists.
func (d *Downloader) localTarget(name, fileType string) string {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}

	base := filepath.Join(dir, name+"."+fileType)
	if _, err := os.Stat(base); err != nil {
		return base
	}

	for i := 1; i <= maxCollisionSuffix; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s(%d).%s", name, i, fileType))
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
	return base
}
