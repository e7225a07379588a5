package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/peerdex/peerdex/internal/logger"
	"github.com/peerdex/peerdex/pkg/tracker/models"
)

// Register adds a file to the requester's share list. The file bytes stay
// on the peer; only the descriptor enters the catalog.
//
// Outcome shapes: [OK, msg] on success; ERROR, CRED, FULL or COPY.
func (s *Service) Register(ctx context.Context, token, name, fileName, fileType, filePath string, fileSize int64) Outcome {
	started := time.Now()
	out := s.register(ctx, token, name, fileName, fileType, filePath, fileSize)
	logger.Info("register file",
		logger.KeyUser, name,
		logger.KeyFileName, fileName,
		logger.KeyFileType, fileType,
		logger.KeyTag, out.Tag())
	return s.observe("registerFile", started, out)
}

func (s *Service) register(ctx context.Context, token, name, fileName, fileType, filePath string, fileSize int64) Outcome {
	if !s.table.Ready() {
		return outcome(TagError, msgNotReady)
	}
	if !s.table.VerifyActive(name, token) {
		return outcome(TagCred, msgBadCredentials)
	}

	file := &models.SharedFile{
		Name:  fileName,
		Type:  fileType,
		Path:  filePath,
		Size:  fileSize,
		Owner: name,
	}
	err := s.store.RegisterFile(ctx, file)
	switch {
	case errors.Is(err, models.ErrQuotaExceeded):
		return outcome(TagFull, msgQuotaReached)
	case errors.Is(err, models.ErrDuplicateFile):
		return outcome(TagCopy, msgDuplicateFile)
	case err != nil:
		return storageOutcome("registerFile", err)
	}
	s.recordCatalogSize(ctx)
	return outcome(TagOK, msgFileRegistered)
}

// Deregister removes the requester's exact (name, type, path) file row.
//
// Outcome shapes: [OK, msg] on success; ERROR or CRED. A missing row is
// ERROR, not 404: the caller claimed a share it does not hold.
func (s *Service) Deregister(ctx context.Context, token, name, fileName, fileType, filePath string) Outcome {
	started := time.Now()
	out := s.deregister(ctx, token, name, fileName, fileType, filePath)
	logger.Info("deregister file",
		logger.KeyUser, name,
		logger.KeyFileName, fileName,
		logger.KeyFileType, fileType,
		logger.KeyTag, out.Tag())
	return s.observe("deregisterFile", started, out)
}

func (s *Service) deregister(ctx context.Context, token, name, fileName, fileType, filePath string) Outcome {
	if !s.table.Ready() {
		return outcome(TagError, msgNotReady)
	}
	if !s.table.VerifyActive(name, token) {
		return outcome(TagCred, msgBadCredentials)
	}

	err := s.store.DeleteFile(ctx, name, fileName, fileType, filePath)
	switch {
	case errors.Is(err, models.ErrFileNotFound):
		return outcome(TagError, msgInternal)
	case err != nil:
		return storageOutcome("deregisterFile", err)
	}
	s.recordCatalogSize(ctx)
	return outcome(TagOK, msgFileRemoved)
}

// UserFiles lists everything the requester has registered.
//
// Outcome shapes: [OK, id, name, type, path, size, ...] five fields per
// file; 404 when the requester has nothing registered; ERROR or CRED.
func (s *Service) UserFiles(ctx context.Context, token, name string) Outcome {
	started := time.Now()
	out := s.userFiles(ctx, token, name)
	logger.Debug("list files", logger.KeyUser, name, logger.KeyTag, out.Tag())
	return s.observe("getUserFiles", started, out)
}

func (s *Service) userFiles(ctx context.Context, token, name string) Outcome {
	if !s.table.Ready() {
		return outcome(TagError, msgNotReady)
	}
	if !s.table.VerifyActive(name, token) {
		return outcome(TagCred, msgBadCredentials)
	}

	files, err := s.store.FilesOf(ctx, name)
	if err != nil {
		return storageOutcome("getUserFiles", err)
	}
	if len(files) == 0 {
		return outcome(TagNotFound, msgNoFiles)
	}

	out := outcome(TagOK)
	for _, f := range files {
		out = append(out,
			strconv.Itoa(f.ID),
			f.Name,
			f.Type,
			f.Path,
			strconv.FormatInt(f.Size, 10))
	}
	return out
}

// Search matches the query against the catalog, excluding the requester's
// own rows and any owner without a live session. This is where the durable
// catalog meets session liveness: a registered file is only findable while
// its owner is connected.
//
// Outcome shapes: [OK, id, name, type, size, ...] four fields per match;
// 404 when nothing survives the liveness filter; ERROR or CRED.
func (s *Service) Search(ctx context.Context, token, name, query string) Outcome {
	started := time.Now()
	out := s.search(ctx, token, name, query)
	logger.Info("search",
		logger.KeyUser, name,
		logger.KeyQuery, query,
		logger.KeyTag, out.Tag())
	return s.observe("searchFile", started, out)
}

func (s *Service) search(ctx context.Context, token, name, query string) Outcome {
	if !s.table.Ready() {
		return outcome(TagError, msgNotReady)
	}
	if !s.table.VerifyActive(name, token) {
		return outcome(TagCred, msgBadCredentials)
	}

	files, err := s.store.SearchFiles(ctx, name, query)
	if err != nil {
		return storageOutcome("searchFile", err)
	}

	out := outcome(TagOK)
	matches := 0
	for _, f := range files {
		if !s.table.IsLive(f.Owner) {
			continue
		}
		out = append(out,
			strconv.Itoa(f.ID),
			f.Name,
			f.Type,
			strconv.FormatInt(f.Size, 10))
		matches++
	}
	if matches == 0 {
		return outcome(TagNotFound, msgNoMatches)
	}
	return out
}

// HostInfo resolves a file identifier to the transfer endpoints of its
// live owners, excluding the requester.
//
// Outcome shapes: [OK, ip, port, path, ...] three fields per host; 404
// when no live host shares the file; ERROR or CRED.
func (s *Service) HostInfo(ctx context.Context, token, name string, fileID int) Outcome {
	started := time.Now()
	out := s.hostInfo(ctx, token, name, fileID)
	logger.Info("host lookup",
		logger.KeyUser, name,
		logger.KeyFileID, fileID,
		logger.KeyTag, out.Tag())
	return s.observe("getFileHostInfo", started, out)
}

func (s *Service) hostInfo(ctx context.Context, token, name string, fileID int) Outcome {
	if !s.table.Ready() {
		return outcome(TagError, msgNotReady)
	}
	if !s.table.VerifyActive(name, token) {
		return outcome(TagCred, msgBadCredentials)
	}

	hosts, err := s.store.HostsOf(ctx, name, fileID)
	if err != nil {
		return storageOutcome("getFileHostInfo", err)
	}

	out := outcome(TagOK)
	matches := 0
	for _, h := range hosts {
		if !s.table.IsLive(h.Owner) {
			continue
		}
		out = append(out, h.IP, strconv.Itoa(h.Port), h.Path)
		matches++
	}
	if matches == 0 {
		return outcome(TagNotFound, msgNoHosts)
	}
	return out
}
