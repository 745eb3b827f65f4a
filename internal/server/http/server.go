package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/portaltarot/oraculo/internal/errs"
	"github.com/portaltarot/oraculo/internal/oracle"
	"github.com/portaltarot/oraculo/internal/repository"
	"github.com/portaltarot/oraculo/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth     service.AuthService
	profiles service.ProfileService
	sessions *oracle.Sessions
	conns    repository.ConnectionRepository
	notifs   repository.NotificationRepository
	signKey  []byte
	log      *zap.Logger
}

// New constructs the API server with injected services.
func New(auth service.AuthService, profiles service.ProfileService, sessions *oracle.Sessions,
	conns repository.ConnectionRepository, notifs repository.NotificationRepository,
	signKey []byte, log *zap.Logger) *Server {
	return &Server{
		auth:     auth,
		profiles: profiles,
		sessions: sessions,
		conns:    conns,
		notifs:   notifs,
		signKey:  signKey,
		log:      log,
	}
}

// Handler builds the routed handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)

	authed := Auth(s.signKey)
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }

	mux.Handle("GET /api/me", protect(s.handleMe))
	mux.Handle("PATCH /api/me", protect(s.handleUpdateMe))

	mux.Handle("GET /api/oraculo/current", protect(s.handleCurrent))
	mux.Handle("POST /api/oraculo/reject", protect(s.handleReject))
	mux.Handle("POST /api/oraculo/connect", protect(s.handleConnect))
	mux.Handle("POST /api/oraculo/close", protect(s.handleClose))
	mux.Handle("POST /api/oraculo/restart", protect(s.handleRestart))

	mux.Handle("GET /api/connections", protect(s.handleConnections))
	mux.Handle("GET /api/connections/mutual", protect(s.handleMutuals))
	mux.Handle("DELETE /api/connections/{id}", protect(s.handleUnfollow))

	mux.Handle("GET /api/notifications", protect(s.handleNotifications))
	mux.Handle("POST /api/notifications/{id}/read", protect(s.handleMarkRead))

	var h http.Handler = mux
	h = CORS(h)
	h = Logging(s.log)(h)
	h = Recover(s.log)(h)
	return h
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": code, "message": msg})
}

// writeServiceError maps sentinel errors onto HTTP statuses. Pipeline write
// failures surface as 502 so the client can retry the same candidate.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "")
	case errors.Is(err, errs.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
	case errors.Is(err, errs.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", "try again later")
	case errors.Is(err, errs.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already_exists", "")
	case errors.Is(err, errs.ErrBusy):
		writeError(w, http.StatusConflict, "busy", "a connect is already in flight")
	case errors.Is(err, errs.ErrInvalidEnum):
		writeError(w, http.StatusBadRequest, "invalid_value", err.Error())
	default:
		writeError(w, http.StatusBadGateway, "write_failed", "the swipe was not recorded, retry")
	}
}

func mustUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
	}
	return id, ok
}

// --- handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "timestamp": time.Now().UTC()})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "empty username/password")
		return
	}
	userID, err := s.auth.Register(r.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "already_exists", "username taken")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"user_id": userID})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	tokens, profile, err := s.auth.LoginWithIP(r.Context(), req.Username, req.Password, r.RemoteAddr)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": tokens.AccessToken,
		"expires_at":   tokens.ExpiresAt,
		"profile":      toProfileDTO(&profile),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	p, err := s.profiles.GetCurrentUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	p, err := s.profiles.UpdateCurrentUser(r.Context(), userID, req.toModel())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	deck, err := s.sessions.Deck(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	candidate, pos, err := deck.Current()
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"exhausted": true, "position": pos})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"exhausted": false,
		"position":  pos,
		"remaining": deck.Remaining(),
		"candidate": toProfileDTO(&candidate),
	})
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Reject(r.Context(), userID); err != nil {
		if errors.Is(err, errs.ErrExhausted) {
			writeJSON(w, http.StatusOK, map[string]any{"exhausted": true})
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exhausted": false})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	res, err := s.sessions.Connect(r.Context(), userID)
	if err != nil {
		if errors.Is(err, errs.ErrExhausted) {
			writeJSON(w, http.StatusOK, map[string]any{"exhausted": true})
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"exhausted": false,
		"match": map[string]any{
			"target":   toProfileDTO(&res.Target),
			"xp_bonus": res.XPBonus,
			"new_xp":   res.NewXP,
		},
	})
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	if err := s.sessions.CloseCelebration(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Restart(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	conns, err := s.conns.ListFollowing(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]connectionDTO, 0, len(conns))
	for _, c := range conns {
		out = append(out, toConnectionDTO(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMutuals(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	conns, err := s.conns.Mutuals(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]connectionDTO, 0, len(conns))
	for _, c := range conns {
		out = append(out, toConnectionDTO(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var target uuid.UUID
	if err := target.UnmarshalText([]byte(r.PathValue("id"))); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid user id")
		return
	}
	if err := s.conns.Delete(r.Context(), userID, target); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	notifs, err := s.notifs.ListForUser(r.Context(), userID, 50)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]notificationDTO, 0, len(notifs))
	for _, n := range notifs {
		out = append(out, toNotificationDTO(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var nid uuid.UUID
	if err := nid.UnmarshalText([]byte(r.PathValue("id"))); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid notification id")
		return
	}
	if err := s.notifs.MarkRead(r.Context(), userID, nid); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
