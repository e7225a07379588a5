package peer

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "/srv/my%20files/report.pdf", EscapePath("/srv/my files/report.pdf"))
	assert.Equal(t, "/srv/my files/report.pdf", UnescapePath("/srv/my%20files/report.pdf"))

	// Only the space pair is translated; other percent escapes pass through.
	assert.Equal(t, "/a%41b", EscapePath("/a%41b"))
	assert.Equal(t, "/a%41b", UnescapePath("/a%41b"))
	assert.Equal(t, "/plain/path", EscapePath("/plain/path"))
}

// serveOnce runs ServeConn against a pipe and returns the raw response to
// the given request line.
func serveOnce(t *testing.T, request string) []byte {
	t.Helper()

	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		ServeConn(server)
	}()

	_, err := client.Write([]byte(request))
	require.NoError(t, err)

	response, err := io.ReadAll(client)
	require.NoError(t, err)
	client.Close()
	<-done
	return response
}

func TestSenderStreamsFile(t *testing.T) {
	dir := t.TempDir()
	content := make([]byte, 3*ChunkSize+17)
	_, err := rand.Read(content)
	require.NoError(t, err)

	path := filepath.Join(dir, "with space.bin")
	require.NoError(t, os.WriteFile(path, content, 0644))

	response := serveOnce(t, "GET "+EscapePath(path)+"\n")
	assert.Equal(t, content, response)
}

func TestSenderMissingFile(t *testing.T) {
	response := serveOnce(t, "GET /no/such/file.bin\n")
	assert.Equal(t, NotFoundSentinel, string(response))
}

func TestSenderMalformedRequest(t *testing.T) {
	assert.Empty(t, serveOnce(t, "FETCH /something\n"))
	assert.Empty(t, serveOnce(t, "GET\n"))
}

func TestDownloadRoundTrip(t *testing.T) {
	shareDir := t.TempDir()
	content := make([]byte, 5*ChunkSize+123)
	_, err := rand.Read(content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(shareDir, "report.pdf"), content, 0644))

	ln, err := Listen(0)
	require.NoError(t, err)
	go ln.Serve()
	defer ln.Close()

	downloadDir := t.TempDir()
	d := &Downloader{Dir: downloadDir, Timeout: 5 * time.Second}

	var last int
	target, err := d.Download("127.0.0.1", ln.Port(),
		shareDir+string(os.PathSeparator), "report", "pdf", int64(len(content)),
		func(p int) { last = p })
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(downloadDir, "report.pdf"), target)
	assert.Equal(t, 100, last)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestDownloadPeer404(t *testing.T) {
	ln, err := Listen(0)
	require.NoError(t, err)
	go ln.Serve()
	defer ln.Close()

	downloadDir := t.TempDir()
	d := &Downloader{Dir: downloadDir, Timeout: 5 * time.Second}

	_, err = d.Download("127.0.0.1", ln.Port(), "/no/such/dir/", "ghost", "bin", 42, nil)
	require.ErrorIs(t, err, ErrPeerMissingFile)

	// No partial file survives the failed download.
	entries, err := os.ReadDir(downloadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadCollisionNaming(t *testing.T) {
	dir := t.TempDir()
	d := &Downloader{Dir: dir}

	assert.Equal(t, filepath.Join(dir, "report.pdf"), d.localTarget("report", "pdf"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.pdf"), nil, 0644))
	assert.Equal(t, filepath.Join(dir, "report(1).pdf"), d.localTarget("report", "pdf"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "report(1).pdf"), nil, 0644))
	assert.Equal(t, filepath.Join(dir, "report(2).pdf"), d.localTarget("report", "pdf"))
}

func TestDownloadConnectionRefused(t *testing.T) {
	// Bind and immediately close to get a port nobody listens on.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	d := &Downloader{Dir: t.TempDir(), Timeout: 2 * time.Second}
	_, err = d.Download("127.0.0.1", port, "/srv/", "report", "pdf", 10, nil)
	assert.Error(t, err)
}

func TestListenerClose(t *testing.T) {
	ln, err := Listen(0)
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- ln.Serve() }()

	// A transfer works while open.
	conn, err := net.DialTimeout("tcp", ln.ln.Addr().String(), 2*time.Second)
	require.NoError(t, err)
	_, err = conn.Write([]byte("GET /no/such/file\n"))
	require.NoError(t, err)
	response, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix([]byte(response), []byte("HTTP/1.1 404")))
	conn.Close()

	require.NoError(t, ln.Close())
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Close")
	}

	// Closing twice is fine.
	assert.NoError(t, ln.Close())
}

func TestListenerCloseSeversSilentPeer(t *testing.T) {
	ln, err := Listen(0)
	require.NoError(t, err)
	go ln.Serve()

	// Connect and never send: the sender goroutine is parked on the
	// request read.
	conn, err := net.DialTimeout("tcp", ln.ln.Addr().String(), 2*time.Second)
	require.NoError(t, err)
	defer conn.Close()

	// Give the accept loop a moment to hand the connection off.
	time.Sleep(50 * time.Millisecond)

	closed := make(chan error, 1)
	go func() { closed <- ln.Close() }()

	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked on a silent peer connection")
	}
}
