package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Suyash56/quizzy-pop/internal/quiz"
)

type mockQuizStore struct {
	mock.Mock
}

func (m *mockQuizStore) GetQuiz(ctx context.Context, id uuid.UUID) (*quiz.Quiz, error) {
	args := m.Called(ctx, id)
	q, _ := args.Get(0).(*quiz.Quiz)
	return q, args.Error(1)
}

func (m *mockQuizStore) GetQuestions(ctx context.Context, quizID uuid.UUID) ([]quiz.Question, error) {
	args := m.Called(ctx, quizID)
	qs, _ := args.Get(0).([]quiz.Question)
	return qs, args.Error(1)
}

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) Insert(ctx context.Context, s *Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*Session)
	return s, args.Error(1)
}

func (m *mockSessionStore) GetByRoomCode(ctx context.Context, code string) (*Session, error) {
	args := m.Called(ctx, code)
	s, _ := args.Get(0).(*Session)
	return s, args.Error(1)
}

func (m *mockSessionStore) FindByQuizAndStatus(ctx context.Context, quizID, hostID uuid.UUID, status Status) (*Session, error) {
	args := m.Called(ctx, quizID, hostID, status)
	s, _ := args.Get(0).(*Session)
	return s, args.Error(1)
}

func (m *mockSessionStore) Transition(ctx context.Context, id uuid.UUID, status Status, currentQuestionID *uuid.UUID) error {
	return m.Called(ctx, id, status, currentQuestionID).Error(0)
}

type mockParticipantStore struct {
	mock.Mock
}

func (m *mockParticipantStore) Insert(ctx context.Context, p *Participant) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockParticipantStore) GetByID(ctx context.Context, id uuid.UUID) (*Participant, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*Participant)
	return p, args.Error(1)
}

func (m *mockParticipantStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Participant, error) {
	args := m.Called(ctx, sessionID)
	ps, _ := args.Get(0).([]Participant)
	return ps, args.Error(1)
}

func (m *mockParticipantStore) UpdateScore(ctx context.Context, id uuid.UUID, score int) error {
	return m.Called(ctx, id, score).Error(0)
}

type mockSubmissionStore struct {
	mock.Mock
}

func (m *mockSubmissionStore) InsertBatch(ctx context.Context, subs []Submission) error {
	return m.Called(ctx, subs).Error(0)
}

func (m *mockSubmissionStore) ExistsForQuestion(ctx context.Context, sessionID, participantID, questionID uuid.UUID) (bool, error) {
	args := m.Called(ctx, sessionID, participantID, questionID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSubmissionStore) ListByQuestion(ctx context.Context, sessionID, questionID uuid.UUID) ([]SubmissionWithOption, error) {
	args := m.Called(ctx, sessionID, questionID)
	subs, _ := args.Get(0).([]SubmissionWithOption)
	return subs, args.Error(1)
}

func (m *mockSubmissionStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Submission, error) {
	args := m.Called(ctx, sessionID)
	subs, _ := args.Get(0).([]Submission)
	return subs, args.Error(1)
}

// stubFeed counts published events; the feed contract is fire-and-forget.
type stubFeed struct {
	sessionUpdates      int
	participantJoins    int
	submissionsRecorded int
	scoresReady         int
}

func (f *stubFeed) SessionUpdate(ctx context.Context, s *Session)  { f.sessionUpdates++ }
func (f *stubFeed) ParticipantJoined(ctx context.Context, sessionID uuid.UUID, p *Participant) {
	f.participantJoins++
}
func (f *stubFeed) SubmissionRecorded(ctx context.Context, sessionID, questionID uuid.UUID, count int) {
	f.submissionsRecorded++
}
func (f *stubFeed) ScoresReady(ctx context.Context, sessionID uuid.UUID) { f.scoresReady++ }

// stubStandings captures the snapshot handed to the leaderboard.
type stubStandings struct {
	recorded  [][]Standing
	returnErr error
}

func (s *stubStandings) RecordStandings(ctx context.Context, sessionID uuid.UUID, standings []Standing) error {
	s.recorded = append(s.recorded, standings)
	return s.returnErr
}
