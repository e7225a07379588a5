// Package service implements the tracker operations on top of the durable
// catalog store and the in-memory session table.
//
// Every operation returns an Outcome: an ordered string list tagged by its
// first element. Internal failures never escape; they are logged and
// converted to an ERROR outcome at this boundary.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/peerdex/peerdex/internal/logger"
	"github.com/peerdex/peerdex/pkg/metrics"
	"github.com/peerdex/peerdex/pkg/tracker/models"
	"github.com/peerdex/peerdex/pkg/tracker/peers"
	"github.com/peerdex/peerdex/pkg/tracker/store"
)

// Service wires the session table and the catalog store into the tracker
// operations.
type Service struct {
	store   *store.Store
	table   *peers.Table
	metrics metrics.TrackerMetrics
}

// New creates a tracker service. metrics may be nil to disable collection.
func New(st *store.Store, table *peers.Table, m metrics.TrackerMetrics) *Service {
	return &Service{
		store:   st,
		table:   table,
		metrics: m,
	}
}

// Arm opens the session table with the given capacity. Until this
// succeeds every operation returns ERROR with the not-ready message.
func (s *Service) Arm(capacity int) error {
	if err := s.table.Arm(capacity); err != nil {
		return err
	}
	logger.Info("session table armed", logger.KeySessions, capacity)
	return nil
}

// Ready reports whether the session table has been armed.
func (s *Service) Ready() bool {
	return s.table.Ready()
}

// Sessions returns the number of live sessions.
func (s *Service) Sessions() int {
	return s.table.Len()
}

// observe feeds the operation outcome into the metrics sink.
func (s *Service) observe(op string, started time.Time, out Outcome) Outcome {
	if s.metrics != nil {
		s.metrics.RecordRPC(op, out.Tag(), time.Since(started))
		s.metrics.SetLiveSessions(s.table.Len())
	}
	return out
}

// recordCatalogSize refreshes the registered-file gauge after a catalog
// mutation. Count failures only cost a stale gauge reading.
func (s *Service) recordCatalogSize(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	total, err := s.store.TotalFiles(ctx)
	if err != nil {
		logger.Debug("catalog count unavailable", logger.KeyError, err)
		return
	}
	s.metrics.RecordCatalogSize(total)
}

// storageOutcome maps a store error onto the ERROR outcome, logging it.
func storageOutcome(op string, err error) Outcome {
	logger.Error("storage failure", logger.KeyOperation, op, logger.KeyError, err)
	if errors.Is(err, models.ErrStorageUnavailable) {
		return outcome(TagError, msgStorageDown)
	}
	return outcome(TagError, msgInternal)
}

// Login authenticates (or creates) the named account and opens a session.
//
// Outcome shapes: [NEW|OK|UPDATE, token] on success; ERROR, FULL, COPY or
// PASSWORD otherwise. OK means the stored endpoint already matched,
// UPDATE means ip and/or port were rewritten.
func (s *Service) Login(ctx context.Context, name, password, ip string, port int) Outcome {
	started := time.Now()
	out := s.login(ctx, name, password, ip, port)
	logger.Info("login",
		logger.KeyUser, name,
		logger.KeyClientIP, ip,
		logger.KeyClientPort, port,
		logger.KeyTag, out.Tag())
	return s.observe("connectToServer", started, out)
}

func (s *Service) login(ctx context.Context, name, password, ip string, port int) Outcome {
	if !s.table.Ready() {
		return outcome(TagError, msgNotReady)
	}
	if s.table.Len() >= s.table.Capacity() {
		return outcome(TagFull, msgSessionFull)
	}
	if s.table.IsLive(name) {
		return outcome(TagCopy, msgAlreadyActive)
	}

	user, err := s.store.FetchUser(ctx, name)
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		return s.firstLogin(ctx, name, password, ip, port)
	case err != nil:
		return storageOutcome("connectToServer", err)
	}

	if !user.CheckPassword(password) {
		return outcome(TagPassword, msgBadPassword)
	}

	changed := false
	if user.IP != ip {
		if err := s.store.UpdateUserIP(ctx, name, ip); err != nil {
			return storageOutcome("connectToServer", err)
		}
		changed = true
	}
	if user.Port != port {
		if err := s.store.UpdateUserPort(ctx, name, port); err != nil {
			return storageOutcome("connectToServer", err)
		}
		changed = true
	}

	token, err := s.table.Add(name, ip, port)
	if err != nil {
		return sessionOutcome(err)
	}
	if changed {
		return outcome(TagUpdate, token)
	}
	return outcome(TagOK, token)
}

// firstLogin creates the account row and its first session.
func (s *Service) firstLogin(ctx context.Context, name, password, ip string, port int) Outcome {
	user := &models.User{Name: name, IP: ip, Port: port}
	if err := user.SetPassword(password); err != nil {
		logger.Error("password hash failure", logger.KeyUser, name, logger.KeyError, err)
		return outcome(TagError, msgInternal)
	}
	if err := s.store.InsertUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateUser) {
			// Lost a race with a concurrent first login under this name.
			return outcome(TagCopy, msgAlreadyActive)
		}
		return storageOutcome("connectToServer", err)
	}

	token, err := s.table.Add(name, ip, port)
	if err != nil {
		return sessionOutcome(err)
	}
	return outcome(TagNew, token)
}

// sessionOutcome maps a session table error onto its outcome tag.
func sessionOutcome(err error) Outcome {
	switch {
	case errors.Is(err, peers.ErrTableFull):
		return outcome(TagFull, msgSessionFull)
	case errors.Is(err, peers.ErrSessionExists):
		return outcome(TagCopy, msgAlreadyActive)
	case errors.Is(err, peers.ErrNotReady):
		return outcome(TagError, msgNotReady)
	default:
		logger.Error("session table failure", logger.KeyError, err)
		return outcome(TagError, msgInternal)
	}
}

// Resume re-authenticates a live session by its token, reconciles the
// announced endpoint and rotates the token. The old token is dead once the
// new one is issued.
//
// Outcome shapes: [OK|UPDATE, new_token] on success; ERROR or CRED.
func (s *Service) Resume(ctx context.Context, token, name, ip string, port int) Outcome {
	started := time.Now()
	out := s.resume(ctx, token, name, ip, port)
	logger.Info("resume", logger.KeyUser, name, logger.KeyTag, out.Tag())
	return s.observe("resumeSession", started, out)
}

func (s *Service) resume(ctx context.Context, token, name, ip string, port int) Outcome {
	if !s.table.Ready() {
		return outcome(TagError, msgNotReady)
	}
	if token == "" || !s.table.VerifyActive(name, token) {
		return outcome(TagCred, msgBadCredentials)
	}

	user, err := s.store.FetchUser(ctx, name)
	if err != nil {
		// A live session without an account row means the catalog and the
		// table disagree; refuse rather than guess.
		return storageOutcome("resumeSession", err)
	}

	changed := false
	if user.IP != ip {
		if err := s.store.UpdateUserIP(ctx, name, ip); err != nil {
			return storageOutcome("resumeSession", err)
		}
		changed = true
	}
	if user.Port != port {
		if err := s.store.UpdateUserPort(ctx, name, port); err != nil {
			return storageOutcome("resumeSession", err)
		}
		changed = true
	}

	fresh, err := s.table.Rotate(name, token, ip, port)
	if err != nil {
		return outcome(TagCred, msgBadCredentials)
	}
	if changed {
		return outcome(TagUpdate, fresh)
	}
	return outcome(TagOK, fresh)
}

// Disconnect closes the session identified by the (name, token) pair.
//
// Outcome shapes: [OK, msg] on success; ERROR or CRED.
func (s *Service) Disconnect(ctx context.Context, token, name string) Outcome {
	started := time.Now()
	out := s.disconnect(token, name)
	logger.Info("disconnect", logger.KeyUser, name, logger.KeyTag, out.Tag())
	return s.observe("disconnectFromServer", started, out)
}

func (s *Service) disconnect(token, name string) Outcome {
	if !s.table.Ready() {
		return outcome(TagError, msgNotReady)
	}
	if !s.table.Remove(name, token) {
		return outcome(TagCred, msgBadCredentials)
	}
	return outcome(TagOK, msgDisconnected)
}

// Heartbeat refreshes the session's activity timestamp so the idle reaper
// leaves it alone.
//
// Outcome shapes: [OK, msg] on success; ERROR or CRED.
func (s *Service) Heartbeat(ctx context.Context, token, name string) Outcome {
	started := time.Now()
	out := s.heartbeat(token, name)
	logger.Debug("heartbeat", logger.KeyUser, name, logger.KeyTag, out.Tag())
	return s.observe("sendHeartBeat", started, out)
}

func (s *Service) heartbeat(token, name string) Outcome {
	if !s.table.Ready() {
		return outcome(TagError, msgNotReady)
	}
	if !s.table.Touch(name, token) {
		return outcome(TagCred, msgBadCredentials)
	}
	return outcome(TagOK, msgAlive)
}
