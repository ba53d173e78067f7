package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Suyash56/quizzy-pop/internal/session"
	httperrors "github.com/Suyash56/quizzy-pop/pkg/http/errors"
)

// HTTPHandler exposes the leaderboard read endpoint.
type HTTPHandler struct {
	svc          *Service
	participants session.ParticipantStore
	logger       zerolog.Logger
}

// NewHTTPHandler constructs a leaderboard HTTP handler. The participant
// store is the fallback when the Redis snapshot is gone (expired TTL or a
// quiz that never enabled the leaderboard).
func NewHTTPHandler(svc *Service, participants session.ParticipantStore, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:          svc,
		participants: participants,
		logger:       logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

// HandleGet responds with a session's standings.
// Route: GET /v1/sessions/{id}/leaderboard?limit=10
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "session id must be a UUID", "id")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	ctx := r.Context()
	var (
		top    []Entry
		source = "redis"
	)

	if entries, err := h.svc.Top(ctx, sessionID, limit); err == nil {
		top = entries
	} else {
		h.logger.Warn().Err(err).Str("session_id", sessionID.String()).Msg("redis standings fetch failed")
	}

	if len(top) == 0 {
		source = "store"
		top = h.storeFallback(ctx, sessionID, limit)
	}

	resp := map[string]interface{}{
		"session_id":  sessionID.String(),
		"top":         top,
		"source":      source,
		"retrievedAt": time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (h *HTTPHandler) storeFallback(ctx context.Context, sessionID uuid.UUID, limit int) []Entry {
	if h.participants == nil {
		return nil
	}
	rows, err := h.participants.ListBySession(ctx, sessionID)
	if err != nil {
		h.logger.Warn().Err(err).Str("session_id", sessionID.String()).Msg("store standings fetch failed")
		return nil
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	entries := make([]Entry, 0, len(rows))
	for i, p := range rows {
		entries = append(entries, Entry{
			Rank:          i + 1,
			ParticipantID: p.ID,
			Name:          p.Name,
			Score:         p.Score,
		})
	}
	return entries
}
