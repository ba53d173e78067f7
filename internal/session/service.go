// Package session owns the live-session lifecycle and answer intake.
// The Postgres store is authoritative for every state transition; the
// change feed only tells watchers that something changed.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Suyash56/quizzy-pop/internal/quiz"
	"github.com/Suyash56/quizzy-pop/internal/scoring"
)

// roomCodeRetries bounds the regenerate-on-collision loop. With a 36^6
// code space a second collision in a row already means something is wrong.
const roomCodeRetries = 5

// Deps collects the stores and collaborators the session services need.
type Deps struct {
	Quizzes      QuizStore
	Sessions     SessionStore
	Participants ParticipantStore
	Submissions  SubmissionStore
	Feed         FeedPublisher
	Standings    StandingsRecorder // optional; nil disables leaderboard snapshots
}

// Service is the session lifecycle manager.
type Service struct {
	quizzes      QuizStore
	sessions     SessionStore
	participants ParticipantStore
	submissions  SubmissionStore
	feed         FeedPublisher
	standings    StandingsRecorder
	engine       *scoring.Engine
	logger       zerolog.Logger
}

// NewService constructs the lifecycle manager.
func NewService(deps Deps, logger zerolog.Logger) *Service {
	return &Service{
		quizzes:      deps.Quizzes,
		sessions:     deps.Sessions,
		participants: deps.Participants,
		submissions:  deps.Submissions,
		feed:         deps.Feed,
		standings:    deps.Standings,
		engine:       scoring.NewEngine(scoring.DefaultConfig()),
		logger:       logger.With().Str("component", "session_service").Logger(),
	}
}

// Create starts a session for a quiz, or hands back one that is already
// running. Resume order matters: a live session wins over a waiting one, so
// a host reconnecting mid-game lands back in the same room. The returned
// bool is true when an existing session was resumed.
func (s *Service) Create(ctx context.Context, hostID, quizID uuid.UUID) (*Session, bool, error) {
	q, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, false, fmt.Errorf("fetch quiz: %w", err)
	}
	if q == nil {
		return nil, false, fmt.Errorf("quiz %s: %w", quizID, ErrNotFound)
	}
	if q.OwnerID != hostID {
		return nil, false, ErrUnauthorized
	}

	for _, status := range []Status{StatusLive, StatusWaiting} {
		existing, err := s.sessions.FindByQuizAndStatus(ctx, quizID, hostID, status)
		if err != nil {
			return nil, false, fmt.Errorf("find %s session: %w", status, err)
		}
		if existing != nil {
			s.logger.Info().
				Str("session_id", existing.ID.String()).
				Str("status", string(existing.Status)).
				Msg("resumed existing session")
			return existing, true, nil
		}
	}

	for attempt := 0; attempt < roomCodeRetries; attempt++ {
		code, err := GenerateRoomCode()
		if err != nil {
			return nil, false, err
		}

		sess := &Session{
			ID:       uuid.New(),
			QuizID:   quizID,
			HostID:   hostID,
			RoomCode: code,
			Status:   StatusWaiting,
		}
		if err := s.sessions.Insert(ctx, sess); err != nil {
			if errors.Is(err, ErrConflict) {
				s.logger.Warn().Str("room_code", code).Msg("room code collision, regenerating")
				continue
			}
			return nil, false, fmt.Errorf("insert session: %w", err)
		}

		s.feed.SessionUpdate(ctx, sess)
		return sess, false, nil
	}

	return nil, false, fmt.Errorf("exhausted %d room code attempts", roomCodeRetries)
}

// Start moves a waiting session to live on its first question.
func (s *Service) Start(ctx context.Context, hostID, sessionID uuid.UUID) (*Session, error) {
	sess, err := s.getOwned(ctx, hostID, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Status.CanTransitionTo(StatusLive) {
		return nil, fmt.Errorf("start from %s: %w", sess.Status, ErrInvalidState)
	}

	questions, err := s.quizzes.GetQuestions(ctx, sess.QuizID)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("quiz has no questions: %w", ErrValidation)
	}

	first := questions[0].ID
	if err := s.sessions.Transition(ctx, sess.ID, StatusLive, &first); err != nil {
		return nil, fmt.Errorf("transition to live: %w", err)
	}
	sess.Status = StatusLive
	sess.CurrentQuestionID = &first

	s.logger.Info().Str("session_id", sess.ID.String()).Msg("session started")
	s.feed.SessionUpdate(ctx, sess)
	return sess, nil
}

// Advance moves a live session to the next question in order. Advancing
// past the last question is rejected; the host ends the session instead.
func (s *Service) Advance(ctx context.Context, hostID, sessionID uuid.UUID) (*Session, error) {
	sess, err := s.getOwned(ctx, hostID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusLive {
		return nil, fmt.Errorf("advance from %s: %w", sess.Status, ErrInvalidState)
	}

	questions, err := s.quizzes.GetQuestions(ctx, sess.QuizID)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}

	next, err := nextQuestion(questions, sess.CurrentQuestionID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Transition(ctx, sess.ID, StatusLive, &next); err != nil {
		return nil, fmt.Errorf("advance question: %w", err)
	}
	sess.CurrentQuestionID = &next

	s.feed.SessionUpdate(ctx, sess)
	return sess, nil
}

func nextQuestion(questions []quiz.Question, current *uuid.UUID) (uuid.UUID, error) {
	if current == nil {
		return uuid.Nil, fmt.Errorf("session has no current question: %w", ErrInvalidState)
	}
	for i, q := range questions {
		if q.ID == *current {
			if i == len(questions)-1 {
				return uuid.Nil, fmt.Errorf("already on last question: %w", ErrInvalidState)
			}
			return questions[i+1].ID, nil
		}
	}
	return uuid.Nil, fmt.Errorf("current question not in quiz: %w", ErrInvalidState)
}

// Complete runs the scoring pass and ends the session.
//
// Fetch failures abort before any write (fail closed). Per-participant
// score writes are best-effort: a failed write is logged and the pass
// continues, so one bad row cannot strand the session outside ended.
func (s *Service) Complete(ctx context.Context, hostID, sessionID uuid.UUID) (*Session, error) {
	sess, err := s.getOwned(ctx, hostID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusLive {
		return nil, fmt.Errorf("complete from %s: %w", sess.Status, ErrInvalidState)
	}

	q, err := s.quizzes.GetQuiz(ctx, sess.QuizID)
	if err != nil {
		return nil, fmt.Errorf("fetch quiz: %w", err)
	}
	questions, err := s.quizzes.GetQuestions(ctx, sess.QuizID)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	participants, err := s.participants.ListBySession(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch participants: %w", err)
	}
	submissions, err := s.submissions.ListBySession(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions: %w", err)
	}

	grades := scoring.GradeQuestions(questions)
	tallies := tallyByParticipant(submissions)

	standings := make([]Standing, 0, len(participants))
	for i := range participants {
		p := &participants[i]
		score := s.engine.Total(grades, tallies[p.ID])
		if err := s.participants.UpdateScore(ctx, p.ID, score); err != nil {
			s.logger.Warn().Err(err).
				Str("session_id", sess.ID.String()).
				Str("participant_id", p.ID.String()).
				Msg("score write failed, continuing")
		}
		p.Score = score
		standings = append(standings, Standing{ParticipantID: p.ID, Name: p.Name, Score: score})
	}

	// The session ends even when some score writes failed above.
	if err := s.sessions.Transition(ctx, sess.ID, StatusEnded, sess.CurrentQuestionID); err != nil {
		return nil, fmt.Errorf("transition to ended: %w", err)
	}
	sess.Status = StatusEnded
	sessionsCompleted.Inc()

	if q != nil && q.Settings.LeaderboardEnabled && s.standings != nil {
		if err := s.standings.RecordStandings(ctx, sess.ID, standings); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("standings snapshot failed")
		}
	}

	s.logger.Info().
		Str("session_id", sess.ID.String()).
		Int("participants", len(participants)).
		Msg("session completed")
	s.feed.ScoresReady(ctx, sess.ID)
	s.feed.SessionUpdate(ctx, sess)
	return sess, nil
}

// tallyByParticipant groups submissions into per-question tallies.
func tallyByParticipant(submissions []Submission) map[uuid.UUID]map[uuid.UUID]scoring.Tally {
	tallies := make(map[uuid.UUID]map[uuid.UUID]scoring.Tally)
	for _, sub := range submissions {
		byQuestion, ok := tallies[sub.ParticipantID]
		if !ok {
			byQuestion = make(map[uuid.UUID]scoring.Tally)
			tallies[sub.ParticipantID] = byQuestion
		}
		t := byQuestion[sub.QuestionID]
		if sub.IsCorrect {
			t.Correct++
		} else {
			t.Incorrect++
		}
		byQuestion[sub.QuestionID] = t
	}
	return tallies
}

// Restart opens a fresh room for the same quiz. The previous session stays
// ended; participants re-join with the new code.
func (s *Service) Restart(ctx context.Context, hostID, sessionID uuid.UUID) (*Session, error) {
	old, err := s.getOwned(ctx, hostID, sessionID)
	if err != nil {
		return nil, err
	}
	sess, _, err := s.Create(ctx, hostID, old.QuizID)
	return sess, err
}

// GetByID fetches a session.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return sess, nil
}

// GetByRoomCode fetches a session by its room code, case-insensitively.
func (s *Service) GetByRoomCode(ctx context.Context, code string) (*Session, error) {
	code = NormalizeRoomCode(code)
	if !ValidRoomCode(code) {
		return nil, fmt.Errorf("malformed room code %q: %w", code, ErrValidation)
	}
	sess, err := s.sessions.GetByRoomCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("fetch session by code: %w", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("room %s: %w", code, ErrNotFound)
	}
	return sess, nil
}

// Join adds a participant to a session. Joining an ended session is
// rejected; joining mid-game is allowed.
func (s *Service) Join(ctx context.Context, sessionID uuid.UUID, name string) (*Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("participant name required: %w", ErrValidation)
	}

	sess, err := s.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == StatusEnded {
		return nil, fmt.Errorf("session has ended: %w", ErrInvalidState)
	}

	p := &Participant{
		ID:        uuid.New(),
		SessionID: sess.ID,
		Name:      name,
	}
	if err := s.participants.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("insert participant: %w", err)
	}

	s.feed.ParticipantJoined(ctx, sess.ID, p)
	return p, nil
}

// ListParticipants returns a session's participants sorted by score.
func (s *Service) ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]Participant, error) {
	if _, err := s.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	participants, err := s.participants.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetch participants: %w", err)
	}
	return participants, nil
}

// ListSubmissions returns the submissions for one question of a session,
// with option text joined in for the host's tally view.
func (s *Service) ListSubmissions(ctx context.Context, sessionID, questionID uuid.UUID) ([]SubmissionWithOption, error) {
	if _, err := s.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	subs, err := s.submissions.ListByQuestion(ctx, sessionID, questionID)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions: %w", err)
	}
	return subs, nil
}

// getOwned fetches a session and verifies the caller hosts it.
func (s *Service) getOwned(ctx context.Context, hostID, sessionID uuid.UUID) (*Session, error) {
	sess, err := s.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.HostID != hostID {
		return nil, ErrUnauthorized
	}
	return sess, nil
}
