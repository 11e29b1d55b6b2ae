package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stagehand/internal/api"
	"stagehand/internal/catalog"
	"stagehand/internal/config"
	"stagehand/internal/logging"
	"stagehand/internal/services"
	"stagehand/internal/stage"
	"stagehand/internal/workflow"
)

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	songSvc *api.SongService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	mux := http.NewServeMux()
	srv := &apiServer{
		bind:    bind,
		logger:  logger,
		daemon:  d,
		songSvc: d.songSvc,
	}

	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/songs", srv.handleSongs)
	mux.HandleFunc("/api/songs/", srv.handleSongSubtree)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          s.daemon.PID(),
		CatalogPath:  status.CatalogPath,
		LockFilePath: status.LockFilePath,
		Pipeline:     status.Pipeline,
	}
	s.writeJSON(w, http.StatusOK, payload)
}

type addSongRequest struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

func (s *apiServer) handleSongs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var stages []stage.Key
		for _, value := range r.URL.Query()["stage"] {
			key, ok := stage.ParseKey(value)
			if !ok {
				s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown stage %q", value))
				return
			}
			stages = append(stages, key)
		}
		songs, err := s.songSvc.List(r.Context(), stages...)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.SongListResponse{Songs: songs})
	case http.MethodPost:
		var req addSongRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		song, err := s.daemon.store.AddSong(r.Context(), req.Title, req.Artist)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeJSON(w, http.StatusCreated, api.FromSong(song, time.Now()))
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSongSubtree routes /api/songs/{id}[/...] by hand; the resource tree
// is small enough that a router dependency buys nothing.
func (s *apiServer) handleSongSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/songs/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		s.writeError(w, http.StatusNotFound, "song not found")
		return
	}
	songID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid song id")
		return
	}

	switch {
	case len(parts) == 1:
		s.handleSong(w, r, songID)
	case len(parts) == 2 && parts[1] == "checklist":
		s.handleChecklist(w, r, songID)
	case len(parts) == 3 && parts[1] == "checklist":
		s.handleChecklistItem(w, r, songID, parts[2])
	case len(parts) == 2 && parts[1] == "transition":
		s.handleTransition(w, r, songID)
	case len(parts) == 2 && parts[1] == "transitions":
		s.handleTransitions(w, r, songID)
	case len(parts) == 3 && parts[1] == "stages":
		s.handleStageStatus(w, r, songID, parts[2])
	case len(parts) == 2 && parts[1] == "links":
		s.handleLinks(w, r, songID)
	default:
		s.writeError(w, http.StatusNotFound, "unknown resource")
	}
}

func (s *apiServer) handleSong(w http.ResponseWriter, r *http.Request, songID int64) {
	switch r.Method {
	case http.MethodGet:
		detail, err := s.songSvc.Detail(r.Context(), songID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		if detail == nil {
			s.writeError(w, http.StatusNotFound, "song not found")
			return
		}
		s.writeJSON(w, http.StatusOK, detail)
	case http.MethodDelete:
		removed, err := s.daemon.store.RemoveSong(r.Context(), songID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		if !removed {
			s.writeError(w, http.StatusNotFound, "song not found")
			return
		}
		s.daemon.engine.Cache().Invalidate(songID)
		s.writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type addChecklistItemRequest struct {
	Stage string `json:"stage"`
	Label string `json:"label"`
}

func (s *apiServer) handleChecklist(w http.ResponseWriter, r *http.Request, songID int64) {
	switch r.Method {
	case http.MethodGet:
		view, err := s.songSvc.Checklist(r.Context(), songID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		if view == nil {
			s.writeError(w, http.StatusNotFound, "song not found")
			return
		}
		s.writeJSON(w, http.StatusOK, view)
	case http.MethodPost:
		var req addChecklistItemRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		key, ok := stage.ParseKey(req.Stage)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown stage %q", req.Stage))
			return
		}
		item, err := s.daemon.store.AddChecklistItem(r.Context(), songID, key, req.Label)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.daemon.engine.Cache().Invalidate(songID)
		s.writeJSON(w, http.StatusCreated, api.FromChecklistItem(item))
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type updateChecklistItemRequest struct {
	IsComplete bool `json:"isComplete"`
}

func (s *apiServer) handleChecklistItem(w http.ResponseWriter, r *http.Request, songID int64, rawID string) {
	if r.Method != http.MethodPatch {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	itemID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid checklist item id")
		return
	}
	var req updateChecklistItemRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := s.daemon.store.SetChecklistItemComplete(r.Context(), itemID, req.IsComplete)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if item == nil || item.SongID != songID {
		s.writeError(w, http.StatusNotFound, "checklist item not found")
		return
	}
	s.daemon.engine.Cache().Invalidate(songID)
	s.writeJSON(w, http.StatusOK, api.FromChecklistItem(item))
}

type transitionRequest struct {
	TargetStage       string `json:"target_stage"`
	Notes             string `json:"notes"`
	IsRejection       bool   `json:"is_rejection"`
	RejectionCategory string `json:"rejection_category"`
	Actor             string `json:"actor"`
}

func (s *apiServer) handleTransition(w http.ResponseWriter, r *http.Request, songID int64) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req transitionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	target, ok := stage.ParseKey(req.TargetStage)
	if !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown stage %q", req.TargetStage))
		return
	}

	result, err := s.daemon.engine.Transition(r.Context(), workflow.TransitionRequest{
		SongID:            songID,
		Target:            target,
		Notes:             req.Notes,
		IsRejection:       req.IsRejection,
		RejectionCategory: req.RejectionCategory,
		Actor:             actorFor(r, req.Actor),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.TransitionOutcome{
		Song:       api.FromSong(result.Song, time.Now()),
		Transition: api.FromTransition(result.Record),
		Issues:     result.Issues,
	})
}

func (s *apiServer) handleTransitions(w http.ResponseWriter, r *http.Request, songID int64) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	view, err := s.songSvc.History(r.Context(), songID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if view == nil {
		s.writeError(w, http.StatusNotFound, "song not found")
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

type stageStatusRequest struct {
	Status        string `json:"status"`
	Action        string `json:"action"`
	BlockedReason string `json:"blocked_reason"`
	Actor         string `json:"actor"`
}

func (s *apiServer) handleStageStatus(w http.ResponseWriter, r *http.Request, songID int64, rawStage string) {
	if r.Method != http.MethodPatch {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	key, ok := stage.ParseKey(rawStage)
	if !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown stage %q", rawStage))
		return
	}
	var req stageStatusRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := actorFor(r, req.Actor)
	var (
		status *catalog.StageStatus
		err    error
	)
	switch {
	case strings.TrimSpace(req.Action) != "":
		action, ok := stage.ParseAction(req.Action)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
			return
		}
		status, err = s.daemon.engine.Act(r.Context(), workflow.StageActionRequest{
			SongID: songID,
			Stage:  key,
			Action: action,
			Reason: req.BlockedReason,
			Actor:  actor,
		})
	case strings.TrimSpace(req.Status) != "":
		requested, ok := stage.ParseStatus(req.Status)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
			return
		}
		status, err = s.daemon.engine.SetStageStatus(r.Context(), songID, key, requested, req.BlockedReason, actor)
	default:
		s.writeError(w, http.StatusBadRequest, "status or action is required")
		return
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromStageStatus(status))
}

type attachLinkRequest struct {
	Kind string `json:"kind"`
	Ref  string `json:"ref"`
}

func (s *apiServer) handleLinks(w http.ResponseWriter, r *http.Request, songID int64) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req attachLinkRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	kind, ok := catalog.ParseLinkKind(req.Kind)
	if !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown link kind %q", req.Kind))
		return
	}
	song, err := s.daemon.store.AttachLink(r.Context(), songID, kind, req.Ref)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if song == nil {
		s.writeError(w, http.StatusNotFound, "song not found")
		return
	}
	s.daemon.engine.Cache().Invalidate(songID)
	s.writeJSON(w, http.StatusOK, api.FromSong(song, time.Now()))
}

func actorFor(r *http.Request, bodyActor string) string {
	if actor := strings.TrimSpace(bodyActor); actor != "" {
		return actor
	}
	return strings.TrimSpace(r.Header.Get("X-Stagehand-Actor"))
}

func decodeBody(r *http.Request, dst any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

type errorResponse struct {
	Error  string `json:"error"`
	Issues any    `json:"issues,omitempty"`
}

// writeServiceError maps taxonomy errors to status codes, attaching itemized
// issues when validation blocked the request.
func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	resp := errorResponse{Error: services.Detail(err, "request failed")}

	var verr *workflow.ValidationError
	if errors.As(err, &verr) {
		resp.Issues = verr.Issues
	}
	s.writeJSON(w, status, resp)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
