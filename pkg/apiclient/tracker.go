package apiclient

import (
	"fmt"
	"strconv"
)

// Session is the client-side view of a live tracker session. Token is
// rotated by Resume; keep a Session per login and let the heartbeat
// runner maintain it.
type Session struct {
	Name  string
	Token string
	IP    string
	Port  int

	// Tag is the outcome tag of the login that opened the session
	// (NEW, OK or UPDATE).
	Tag string
}

// FileEntry is one row of the requester's own share list.
type FileEntry struct {
	ID   int
	Name string
	Type string
	Path string
	Size int64
}

// SearchResult is one catalog match owned by a live peer.
type SearchResult struct {
	ID   int
	Name string
	Type string
	Size int64
}

// Host is one live transfer endpoint for a file.
type Host struct {
	IP   string
	Port int
	Path string
}

// Connect logs in (creating the account on first contact) and returns
// the opened session.
func (c *Client) Connect(name, password, ip string, port int) (*Session, error) {
	out, err := c.rpc("connectToServer", map[string]any{
		"name": name, "password": password, "ip": ip, "port": port,
	})
	if err != nil {
		return nil, err
	}
	switch out[0] {
	case "NEW", "OK", "UPDATE":
		if len(out) < 2 {
			return nil, fmt.Errorf("login outcome missing token")
		}
		return &Session{Name: name, Token: out[1], IP: ip, Port: port, Tag: out[0]}, nil
	default:
		return nil, tagError(out)
	}
}

// Resume re-authenticates the session and swaps in the freshly rotated
// token.
func (c *Client) Resume(sess *Session) error {
	out, err := c.rpc("resumeSession", map[string]any{
		"token": sess.Token, "name": sess.Name, "ip": sess.IP, "port": sess.Port,
	})
	if err != nil {
		return err
	}
	switch out[0] {
	case "OK", "UPDATE":
		if len(out) < 2 {
			return fmt.Errorf("resume outcome missing token")
		}
		sess.Token = out[1]
		return nil
	default:
		return tagError(out)
	}
}

// Disconnect closes the session.
func (c *Client) Disconnect(sess *Session) error {
	out, err := c.rpc("disconnectFromServer", map[string]any{
		"token": sess.Token, "name": sess.Name,
	})
	if err != nil {
		return err
	}
	if out[0] != "OK" {
		return tagError(out)
	}
	return nil
}

// Heartbeat refreshes the session's liveness.
func (c *Client) Heartbeat(sess *Session) error {
	out, err := c.rpc("sendHeartBeat", map[string]any{
		"token": sess.Token, "name": sess.Name,
	})
	if err != nil {
		return err
	}
	if out[0] != "OK" {
		return tagError(out)
	}
	return nil
}

// RegisterFile announces a shared file to the catalog.
func (c *Client) RegisterFile(sess *Session, name, fileType, path string, size int64) error {
	out, err := c.rpc("registerFile", map[string]any{
		"token": sess.Token, "name": sess.Name,
		"file_name": name, "file_type": fileType, "file_path": path, "file_size": size,
	})
	if err != nil {
		return err
	}
	if out[0] != "OK" {
		return tagError(out)
	}
	return nil
}

// DeregisterFile withdraws a shared file from the catalog.
func (c *Client) DeregisterFile(sess *Session, name, fileType, path string) error {
	out, err := c.rpc("deregisterFile", map[string]any{
		"token": sess.Token, "name": sess.Name,
		"file_name": name, "file_type": fileType, "file_path": path,
	})
	if err != nil {
		return err
	}
	if out[0] != "OK" {
		return tagError(out)
	}
	return nil
}

// UserFiles lists the requester's own registered files.
func (c *Client) UserFiles(sess *Session) ([]FileEntry, error) {
	out, err := c.rpc("getUserFiles", map[string]any{
		"token": sess.Token, "name": sess.Name,
	})
	if err != nil {
		return nil, err
	}
	if out[0] != "OK" {
		return nil, tagError(out)
	}

	fields := out[1:]
	if len(fields)%5 != 0 {
		return nil, fmt.Errorf("malformed file listing: %d fields", len(fields))
	}
	entries := make([]FileEntry, 0, len(fields)/5)
	for i := 0; i < len(fields); i += 5 {
		id, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, fmt.Errorf("malformed file id %q: %w", fields[i], err)
		}
		size, err := strconv.ParseInt(fields[i+4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed file size %q: %w", fields[i+4], err)
		}
		entries = append(entries, FileEntry{
			ID:   id,
			Name: fields[i+1],
			Type: fields[i+2],
			Path: fields[i+3],
			Size: size,
		})
	}
	return entries, nil
}

// Search queries the catalog for files shared by live peers.
func (c *Client) Search(sess *Session, query string) ([]SearchResult, error) {
	out, err := c.rpc("searchFile", map[string]any{
		"token": sess.Token, "name": sess.Name, "query": query,
	})
	if err != nil {
		return nil, err
	}
	if out[0] != "OK" {
		return nil, tagError(out)
	}

	fields := out[1:]
	if len(fields)%4 != 0 {
		return nil, fmt.Errorf("malformed search result: %d fields", len(fields))
	}
	results := make([]SearchResult, 0, len(fields)/4)
	for i := 0; i < len(fields); i += 4 {
		id, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, fmt.Errorf("malformed file id %q: %w", fields[i], err)
		}
		size, err := strconv.ParseInt(fields[i+3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed file size %q: %w", fields[i+3], err)
		}
		results = append(results, SearchResult{
			ID:   id,
			Name: fields[i+1],
			Type: fields[i+2],
			Size: size,
		})
	}
	return results, nil
}

// HostInfo resolves a file identifier to the live peers that share it.
func (c *Client) HostInfo(sess *Session, fileID int) ([]Host, error) {
	out, err := c.rpc("getFileHostInfo", map[string]any{
		"token": sess.Token, "name": sess.Name, "file_id": fileID,
	})
	if err != nil {
		return nil, err
	}
	if out[0] != "OK" {
		return nil, tagError(out)
	}

	fields := out[1:]
	if len(fields)%3 != 0 {
		return nil, fmt.Errorf("malformed host listing: %d fields", len(fields))
	}
	hosts := make([]Host, 0, len(fields)/3)
	for i := 0; i < len(fields); i += 3 {
		port, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return nil, fmt.Errorf("malformed host port %q: %w", fields[i+1], err)
		}
		hosts = append(hosts, Host{
			IP:   fields[i],
			Port: port,
			Path: fields[i+2],
		})
	}
	return hosts, nil
}

// Arm sets the tracker session capacity through the admin endpoint.
func (c *Client) Arm(maxUsers int) error {
	return c.post("/admin/capacity", map[string]int{"max_users": maxUsers}, nil)
}
