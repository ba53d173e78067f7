package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Suyash56/quizzy-pop/internal/auth"
	httperrors "github.com/Suyash56/quizzy-pop/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for session operations.
type HTTPHandlers struct {
	service *Service
	intake  *Intake
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for session endpoints.
func NewHTTPHandlers(service *Service, intake *Intake, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		intake:  intake,
		logger:  logger.With().Str("component", "session_http").Logger(),
	}
}

type sessionResponse struct {
	ID                string  `json:"id"`
	QuizID            string  `json:"quiz_id"`
	RoomCode          string  `json:"room_code"`
	Status            string  `json:"status"`
	CurrentQuestionID *string `json:"current_question_id,omitempty"`
	CreatedAt         string  `json:"created_at,omitempty"`
	Resumed           bool    `json:"resumed,omitempty"`
}

func toSessionResponse(s *Session, resumed bool) sessionResponse {
	resp := sessionResponse{
		ID:       s.ID.String(),
		QuizID:   s.QuizID.String(),
		RoomCode: s.RoomCode,
		Status:   string(s.Status),
		Resumed:  resumed,
	}
	if s.CurrentQuestionID != nil {
		q := s.CurrentQuestionID.String()
		resp.CurrentQuestionID = &q
	}
	if !s.CreatedAt.IsZero() {
		resp.CreatedAt = s.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

type participantResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	JoinedAt string `json:"joined_at,omitempty"`
}

func toParticipantResponse(p Participant) participantResponse {
	resp := participantResponse{
		ID:    p.ID.String(),
		Name:  p.Name,
		Score: p.Score,
	}
	if !p.JoinedAt.IsZero() {
		resp.JoinedAt = p.JoinedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// Create handles POST /v1/sessions
func (h *HTTPHandlers) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hostID, ok := auth.HostFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req struct {
		QuizID string `json:"quiz_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	quizID, err := uuid.Parse(req.QuizID)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "quiz_id must be a UUID", "quiz_id")
		return
	}

	sess, resumed, err := h.service.Create(r.Context(), hostID, quizID)
	if err != nil {
		h.respondServiceError(w, r, err, "create session")
		return
	}

	status := http.StatusCreated
	if resumed {
		status = http.StatusOK
	}
	h.respondJSON(w, status, toSessionResponse(sess, resumed))
}

// hostTransition covers the start/advance/complete/restart endpoints, which
// share the same shape: authenticated host, session id in the path.
func (h *HTTPHandlers) hostTransition(w http.ResponseWriter, r *http.Request, op string,
	fn func(hostID, sessionID uuid.UUID) (*Session, error)) {

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hostID, ok := auth.HostFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "session id must be a UUID", "id")
		return
	}

	sess, err := fn(hostID, sessionID)
	if err != nil {
		h.respondServiceError(w, r, err, op)
		return
	}
	h.respondJSON(w, http.StatusOK, toSessionResponse(sess, false))
}

// Start handles POST /v1/sessions/{id}/start
func (h *HTTPHandlers) Start(w http.ResponseWriter, r *http.Request) {
	h.hostTransition(w, r, "start session", func(hostID, sessionID uuid.UUID) (*Session, error) {
		return h.service.Start(r.Context(), hostID, sessionID)
	})
}

// Advance handles POST /v1/sessions/{id}/advance
func (h *HTTPHandlers) Advance(w http.ResponseWriter, r *http.Request) {
	h.hostTransition(w, r, "advance session", func(hostID, sessionID uuid.UUID) (*Session, error) {
		return h.service.Advance(r.Context(), hostID, sessionID)
	})
}

// Complete handles POST /v1/sessions/{id}/complete
func (h *HTTPHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	h.hostTransition(w, r, "complete session", func(hostID, sessionID uuid.UUID) (*Session, error) {
		return h.service.Complete(r.Context(), hostID, sessionID)
	})
}

// Restart handles POST /v1/sessions/{id}/restart
func (h *HTTPHandlers) Restart(w http.ResponseWriter, r *http.Request) {
	h.hostTransition(w, r, "restart session", func(hostID, sessionID uuid.UUID) (*Session, error) {
		return h.service.Restart(r.Context(), hostID, sessionID)
	})
}

// Get handles GET /v1/sessions/{id}
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "session id must be a UUID", "id")
		return
	}

	sess, err := h.service.GetByID(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, r, err, "get session")
		return
	}
	h.respondJSON(w, http.StatusOK, toSessionResponse(sess, false))
}

// GetByCode handles GET /v1/sessions/code/{code}
func (h *HTTPHandlers) GetByCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, err := h.service.GetByRoomCode(r.Context(), r.PathValue("code"))
	if err != nil {
		h.respondServiceError(w, r, err, "get session by code")
		return
	}
	h.respondJSON(w, http.StatusOK, toSessionResponse(sess, false))
}

// Join handles POST /v1/sessions/{id}/join
func (h *HTTPHandlers) Join(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "session id must be a UUID", "id")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	p, err := h.service.Join(r.Context(), sessionID, req.Name)
	if err != nil {
		h.respondServiceError(w, r, err, "join session")
		return
	}
	h.respondJSON(w, http.StatusCreated, toParticipantResponse(*p))
}

// SubmitAnswer handles POST /v1/sessions/{id}/answers
func (h *HTTPHandlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "session id must be a UUID", "id")
		return
	}

	var req struct {
		ParticipantID string   `json:"participant_id"`
		QuestionID    string   `json:"question_id"`
		OptionIDs     []string `json:"option_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	participantID, err := uuid.Parse(req.ParticipantID)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "participant_id must be a UUID", "participant_id")
		return
	}
	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "question_id must be a UUID", "question_id")
		return
	}
	optionIDs := make([]uuid.UUID, 0, len(req.OptionIDs))
	for _, raw := range req.OptionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "option_ids must be UUIDs", "option_ids")
			return
		}
		optionIDs = append(optionIDs, id)
	}

	count, err := h.intake.Submit(r.Context(), sessionID, participantID, questionID, optionIDs)
	if err != nil {
		h.respondServiceError(w, r, err, "submit answer")
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]any{"recorded": count})
}

// ListParticipants handles GET /v1/sessions/{id}/participants
func (h *HTTPHandlers) ListParticipants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "session id must be a UUID", "id")
		return
	}

	participants, err := h.service.ListParticipants(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, r, err, "list participants")
		return
	}

	out := make([]participantResponse, 0, len(participants))
	for _, p := range participants {
		out = append(out, toParticipantResponse(p))
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"participants": out})
}

// ListSubmissions handles GET /v1/sessions/{id}/questions/{questionId}/submissions
func (h *HTTPHandlers) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "session id must be a UUID", "id")
		return
	}
	questionID, err := uuid.Parse(r.PathValue("questionId"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "question id must be a UUID", "questionId")
		return
	}

	subs, err := h.service.ListSubmissions(r.Context(), sessionID, questionID)
	if err != nil {
		h.respondServiceError(w, r, err, "list submissions")
		return
	}

	type submissionResponse struct {
		ParticipantID string `json:"participant_id"`
		OptionID      string `json:"option_id"`
		OptionText    string `json:"option_text"`
		IsCorrect     bool   `json:"is_correct"`
		SubmittedAt   string `json:"submitted_at,omitempty"`
	}
	out := make([]submissionResponse, 0, len(subs))
	for _, sub := range subs {
		resp := submissionResponse{
			ParticipantID: sub.ParticipantID.String(),
			OptionID:      sub.OptionID.String(),
			OptionText:    sub.OptionText,
			IsCorrect:     sub.IsCorrect,
		}
		if !sub.SubmittedAt.IsZero() {
			resp.SubmittedAt = sub.SubmittedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, resp)
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"submissions": out})
}

// respondServiceError maps service sentinels onto the HTTP error taxonomy.
func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		httperrors.RespondForbidden(w, httperrors.ErrCodeUnauthorized, "You do not host this session")
	case errors.Is(err, ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "Resource not found")
	case errors.Is(err, ErrInvalidState):
		httperrors.RespondConflict(w, httperrors.ErrCodeInvalidState, err.Error())
	case errors.Is(err, ErrAlreadySubmitted):
		httperrors.RespondConflict(w, httperrors.ErrCodeAlreadySubmitted, "Answer already submitted for this question")
	case errors.Is(err, ErrValidation):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, err.Error())
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msgf("%s failed", op)
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStoreFailure, "Store operation failed")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
