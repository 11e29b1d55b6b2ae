package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"stagehand/internal/api"
	"stagehand/internal/catalog"
	"stagehand/internal/daemon"
	"stagehand/internal/logging"
	"stagehand/internal/services"
	"stagehand/internal/stage"
	"stagehand/internal/workflow"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	connMu sync.Mutex
	conns  map[net.Conn]struct{}
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Stagehand", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
		conns:     make(map[net.Conn]struct{}),
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.trackConn(conn, true)
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				defer s.trackConn(c, false)
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

func (s *Server) trackConn(conn net.Conn, add bool) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

// Close stops the server, disconnects remaining clients, and removes the
// socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.connMu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.connMu.Unlock()
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Debug("daemon stop requested")
	// Stop asynchronously so the response reaches the client before the
	// daemon tears the socket down.
	go s.daemon.Stop()
	resp.Stopped = true
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = s.daemon.PID()
	resp.CatalogPath = status.CatalogPath
	resp.LockPath = status.LockFilePath
	resp.Pipeline = status.Pipeline
	return nil
}

func (s *service) SongList(req SongListRequest, resp *SongListResponse) error {
	stages := make([]stage.Key, 0, len(req.Stages))
	for _, value := range req.Stages {
		key, ok := stage.ParseKey(value)
		if !ok {
			return fmt.Errorf("unknown stage %q", value)
		}
		stages = append(stages, key)
	}
	songs, err := s.daemon.Songs().List(s.ctx, stages...)
	if err != nil {
		return err
	}
	resp.Songs = songs
	return nil
}

func (s *service) SongAdd(req SongAddRequest, resp *SongAddResponse) error {
	song, err := s.daemon.Store().AddSong(s.ctx, req.Title, req.Artist)
	if err != nil {
		return err
	}
	resp.Song = api.FromSong(song, time.Now())
	return nil
}

func (s *service) SongDescribe(req SongDescribeRequest, resp *SongDescribeResponse) error {
	detail, err := s.daemon.Songs().Detail(s.ctx, req.ID)
	if err != nil {
		return err
	}
	if detail == nil {
		return fmt.Errorf("song %d not found", req.ID)
	}
	resp.Detail = *detail
	return nil
}

func (s *service) Transition(req TransitionIPCRequest, resp *TransitionIPCResponse) error {
	target, ok := stage.ParseKey(req.TargetStage)
	if !ok {
		return fmt.Errorf("unknown stage %q", req.TargetStage)
	}
	result, err := s.daemon.Engine().Transition(s.ctx, workflow.TransitionRequest{
		SongID:            req.SongID,
		Target:            target,
		Notes:             req.Notes,
		IsRejection:       req.IsRejection,
		RejectionCategory: req.RejectionCategory,
		Actor:             req.Actor,
	})
	if err != nil {
		return errors.New(services.Detail(err, "Failed to transition song stage"))
	}
	resp.Song = api.FromSong(result.Song, time.Now())
	resp.Transition = api.FromTransition(result.Record)
	resp.Issues = result.Issues
	return nil
}

func (s *service) StageAct(req StageActRequest, resp *StageActResponse) error {
	key, ok := stage.ParseKey(req.Stage)
	if !ok {
		return fmt.Errorf("unknown stage %q", req.Stage)
	}
	action, ok := stage.ParseAction(req.Action)
	if !ok {
		return fmt.Errorf("unknown action %q", req.Action)
	}
	status, err := s.daemon.Engine().Act(s.ctx, workflow.StageActionRequest{
		SongID: req.SongID,
		Stage:  key,
		Action: action,
		Reason: req.Reason,
		Actor:  req.Actor,
	})
	if err != nil {
		return errors.New(services.Detail(err, "Failed to update stage status"))
	}
	resp.Status = api.FromStageStatus(status)
	return nil
}

func (s *service) Checklist(req ChecklistRequest, resp *ChecklistResponse) error {
	view, err := s.daemon.Songs().Checklist(s.ctx, req.SongID)
	if err != nil {
		return err
	}
	if view == nil {
		return fmt.Errorf("song %d not found", req.SongID)
	}
	resp.View = *view
	return nil
}

func (s *service) ChecklistAdd(req ChecklistAddRequest, resp *ChecklistAddResponse) error {
	key, ok := stage.ParseKey(req.Stage)
	if !ok {
		return fmt.Errorf("unknown stage %q", req.Stage)
	}
	item, err := s.daemon.Store().AddChecklistItem(s.ctx, req.SongID, key, req.Label)
	if err != nil {
		return err
	}
	s.daemon.Engine().Cache().Invalidate(req.SongID)
	resp.Item = api.FromChecklistItem(item)
	return nil
}

func (s *service) ChecklistComplete(req ChecklistCompleteRequest, resp *ChecklistCompleteResponse) error {
	item, err := s.daemon.Store().SetChecklistItemComplete(s.ctx, req.ItemID, req.IsComplete)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("checklist item %d not found", req.ItemID)
	}
	s.daemon.Engine().Cache().Invalidate(item.SongID)
	resp.Item = api.FromChecklistItem(item)
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	view, err := s.daemon.Songs().History(s.ctx, req.SongID)
	if err != nil {
		return err
	}
	if view == nil {
		return fmt.Errorf("song %d not found", req.SongID)
	}
	resp.View = *view
	return nil
}

func (s *service) AttachLink(req AttachLinkRequest, resp *AttachLinkResponse) error {
	kind, ok := catalog.ParseLinkKind(req.Kind)
	if !ok {
		return fmt.Errorf("unknown link kind %q", req.Kind)
	}
	song, err := s.daemon.Store().AttachLink(s.ctx, req.SongID, kind, req.Ref)
	if err != nil {
		return err
	}
	if song == nil {
		return fmt.Errorf("song %d not found", req.SongID)
	}
	s.daemon.Engine().Cache().Invalidate(req.SongID)
	resp.Song = api.FromSong(song, time.Now())
	return nil
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	health, err := s.daemon.DatabaseHealth(s.ctx)
	resp.DBPath = health.DBPath
	resp.DatabaseExists = health.DatabaseExists
	resp.DatabaseReadable = health.DatabaseReadable
	resp.TablesPresent = health.TablesPresent
	resp.MissingTables = health.MissingTables
	resp.IntegrityCheck = health.IntegrityCheck
	resp.TotalSongs = health.TotalSongs
	resp.Error = health.Error
	if err != nil && resp.Error == "" {
		resp.Error = err.Error()
	}
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
