package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Suyash56/quizzy-pop/internal/quiz"
)

type fixture struct {
	quizzes      *mockQuizStore
	sessions     *mockSessionStore
	participants *mockParticipantStore
	submissions  *mockSubmissionStore
	feed         *stubFeed
	standings    *stubStandings
	svc          *Service
}

func newFixture() *fixture {
	f := &fixture{
		quizzes:      new(mockQuizStore),
		sessions:     new(mockSessionStore),
		participants: new(mockParticipantStore),
		submissions:  new(mockSubmissionStore),
		feed:         &stubFeed{},
		standings:    &stubStandings{},
	}
	f.svc = NewService(Deps{
		Quizzes:      f.quizzes,
		Sessions:     f.sessions,
		Participants: f.participants,
		Submissions:  f.submissions,
		Feed:         f.feed,
		Standings:    f.standings,
	}, zerolog.Nop())
	return f
}

func ownedQuiz(hostID uuid.UUID) *quiz.Quiz {
	return &quiz.Quiz{
		ID:       uuid.New(),
		OwnerID:  hostID,
		Title:    "Geography warmup",
		Settings: quiz.DefaultSettings(),
	}
}

func twoQuestions(quizID uuid.UUID) []quiz.Question {
	q1ID, q2ID := uuid.New(), uuid.New()
	return []quiz.Question{
		{
			ID: q1ID, QuizID: quizID, Type: quiz.TypeSingle, OrderIndex: 0,
			Options: []quiz.Option{
				{ID: uuid.New(), QuestionID: q1ID, IsCorrect: true},
				{ID: uuid.New(), QuestionID: q1ID},
			},
		},
		{
			ID: q2ID, QuizID: quizID, Type: quiz.TypeMulti, OrderIndex: 1,
			Options: []quiz.Option{
				{ID: uuid.New(), QuestionID: q2ID, IsCorrect: true},
				{ID: uuid.New(), QuestionID: q2ID, IsCorrect: true},
				{ID: uuid.New(), QuestionID: q2ID},
			},
		},
	}
}

func TestStatusTransitionsAreForwardOnly(t *testing.T) {
	assert.True(t, StatusWaiting.CanTransitionTo(StatusLive))
	assert.True(t, StatusLive.CanTransitionTo(StatusEnded))

	assert.False(t, StatusWaiting.CanTransitionTo(StatusEnded))
	assert.False(t, StatusLive.CanTransitionTo(StatusWaiting))
	assert.False(t, StatusEnded.CanTransitionTo(StatusLive))
	assert.False(t, StatusEnded.CanTransitionTo(StatusWaiting))
}

func TestCreateResumesLiveSession(t *testing.T) {
	f := newFixture()
	hostID := uuid.New()
	q := ownedQuiz(hostID)
	live := &Session{ID: uuid.New(), QuizID: q.ID, HostID: hostID, RoomCode: "AAA111", Status: StatusLive}

	f.quizzes.On("GetQuiz", mock.Anything, q.ID).Return(q, nil)
	f.sessions.On("FindByQuizAndStatus", mock.Anything, q.ID, hostID, StatusLive).Return(live, nil)

	got, resumed, err := f.svc.Create(context.Background(), hostID, q.ID)
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, live.ID, got.ID)
	f.sessions.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCreateResumesWaitingWhenNoLive(t *testing.T) {
	f := newFixture()
	hostID := uuid.New()
	q := ownedQuiz(hostID)
	waiting := &Session{ID: uuid.New(), QuizID: q.ID, HostID: hostID, RoomCode: "BBB222", Status: StatusWaiting}

	f.quizzes.On("GetQuiz", mock.Anything, q.ID).Return(q, nil)
	f.sessions.On("FindByQuizAndStatus", mock.Anything, q.ID, hostID, StatusLive).Return(nil, nil)
	f.sessions.On("FindByQuizAndStatus", mock.Anything, q.ID, hostID, StatusWaiting).Return(waiting, nil)

	got, resumed, err := f.svc.Create(context.Background(), hostID, q.ID)
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, waiting.ID, got.ID)
}

func TestCreateInsertsFreshSession(t *testing.T) {
	f := newFixture()
	hostID := uuid.New()
	q := ownedQuiz(hostID)

	f.quizzes.On("GetQuiz", mock.Anything, q.ID).Return(q, nil)
	f.sessions.On("FindByQuizAndStatus", mock.Anything, q.ID, hostID, mock.Anything).Return(nil, nil)
	f.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)

	got, resumed, err := f.svc.Create(context.Background(), hostID, q.ID)
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Equal(t, StatusWaiting, got.Status)
	assert.True(t, ValidRoomCode(got.RoomCode))
	assert.Equal(t, 1, f.feed.sessionUpdates)
}

func TestCreateRegeneratesCodeOnCollision(t *testing.T) {
	f := newFixture()
	hostID := uuid.New()
	q := ownedQuiz(hostID)

	f.quizzes.On("GetQuiz", mock.Anything, q.ID).Return(q, nil)
	f.sessions.On("FindByQuizAndStatus", mock.Anything, q.ID, hostID, mock.Anything).Return(nil, nil)
	f.sessions.On("Insert", mock.Anything, mock.Anything).
		Return(fmt.Errorf("room code taken: %w", ErrConflict)).Once()
	f.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()

	got, resumed, err := f.svc.Create(context.Background(), hostID, q.ID)
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.True(t, ValidRoomCode(got.RoomCode))
	f.sessions.AssertNumberOfCalls(t, "Insert", 2)
}

func TestCreateRejectsForeignQuiz(t *testing.T) {
	f := newFixture()
	q := ownedQuiz(uuid.New())

	f.quizzes.On("GetQuiz", mock.Anything, q.ID).Return(q, nil)

	_, _, err := f.svc.Create(context.Background(), uuid.New(), q.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateUnknownQuiz(t *testing.T) {
	f := newFixture()
	quizID := uuid.New()
	f.quizzes.On("GetQuiz", mock.Anything, quizID).Return(nil, nil)

	_, _, err := f.svc.Create(context.Background(), uuid.New(), quizID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStartSetsFirstQuestion(t *testing.T) {
	f := newFixture()
	hostID := uuid.New()
	q := ownedQuiz(hostID)
	questions := twoQuestions(q.ID)
	sess := &Session{ID: uuid.New(), QuizID: q.ID, HostID: hostID, Status: StatusWaiting}

	f.sessions.On("GetByID", mock.Anything, sess.ID).Return(sess, nil)
	f.quizzes.On("GetQuestions", mock.Anything, q.ID).Return(questions, nil)
	f.sessions.On("Transition", mock.Anything, sess.ID, StatusLive, &questions[0].ID).Return(nil)

	got, err := f.svc.Start(context.Background(), hostID, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusLive, got.Status)
	require.NotNil(t, got.CurrentQuestionID)
	assert.Equal(t, questions[0].ID, *got.CurrentQuestionID)
	assert.Equal(t, 1, f.feed.sessionUpdates)
}

func TestStartRejectsNonWaiting(t *testing.T) {
	for _, status := range []Status{StatusLive, StatusEnded} {
		f := newFixture()
		hostID := uuid.New()
		sess := &Session{ID: uuid.New(), HostID: hostID, Status: status}
		f.sessions.On("GetByID", mock.Anything, sess.ID).Return(sess, nil)

		_, err := f.svc.Start(context.Background(), hostID, sess.ID)
		assert.ErrorIs(t, err, ErrInvalidState, "status %s", status)
	}
}

func TestStartRejectsQuizWithoutQuestions(t *testing.T) {
	f := newFixture()
	hostID := uuid.New()
	sess := &Session{ID: uuid.New(), QuizID: uuid.New(), HostID: hostID, Status: StatusWaiting}

	f.sessions.On("GetByID", mock.Anything, sess.ID).Return(sess, nil)
	f.quizzes.On("GetQuestions", mock.Anything, sess.QuizID).Return([]quiz.Question{}, nil)

	_, err := f.svc.Start(context.Background(), hostID, sess.ID)
	assert.ErrorIs(t, err, ErrValidation)
	f.sessions.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStartRejectsForeignHost(t *testing.T) {
	f := newFixture()
	sess := &Session{ID: uuid.New(), HostID: uuid.New(), Status: StatusWaiting}
	f.sessions.On("GetByID", mock.Anything, sess.ID).Return(sess, nil)

	_, err := f.svc.Start(context.Background(), uuid.New(), sess.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAdvanceMovesToNextQuestion(t *testing.T) {
	f := newFixture()
	hostID := uuid.New()
	q := ownedQuiz(hostID)
	questions := twoQuestions(q.ID)
	sess := &Session{
		ID: uuid.New(), QuizID: q.ID, HostID: hostID,
		Status: StatusLive, CurrentQuestionID: &questions[0].ID,
	}

	f.sessions.On("GetByID", mock.Anything, sess.ID).Return(sess, nil)
	f.quizzes.On("GetQuestions", mock.Anything, q.ID).Return(questions, nil)
	f.sessions.On("Transition", mock.Anything, sess.ID, StatusLive, &questions[1].ID).Return(nil)

	got, err := f.svc.Advance(context.Background(), hostID, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, questions[1].ID, *got.CurrentQuestionID)
}

func TestAdvanceRejectsOnLastQuestion(t *testing.T) {
	f := newFixture()
	hostID := uuid.New()
	q := ownedQuiz(hostID)
	questions := twoQuestions(q.ID)
	sess := &Session{
		ID: uuid.New(), QuizID: q.ID, HostID: hostID,
		Status: StatusLive, CurrentQuestionID: &questions[1].ID,
	}

	f.sessions.On("GetByID", mock.Anything, sess.ID).Return(sess, nil)
	f.quizzes.On("GetQuestions", mock.Anything, q.ID).Return(questions, nil)

	_, err := f.svc.Advance(context.Background(), hostID, sess.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCompleteScoresAndEnds(t *testing.T) {
	f := newFixture()
	hostID := uuid.New()
	q := ownedQuiz(hostID)
	questions := twoQuestions(q.ID)
	sess := &Session{
		ID: uuid.New(), QuizID: q.ID, HostID: hostID,
		Status: StatusLive, CurrentQuestionID: &questions[1].ID,
	}

	alice := Participant{ID: uuid.New(), SessionID: sess.ID, Name: "alice"}
	bob := Participant{ID: uuid.New(), SessionID: sess.ID, Name: "bob"}

	// Alice answers both questions perfectly; Bob picks a wrong option on
	// the single and skips the multi.
	subs := []Submission{
		{ParticipantID: alice.ID, QuestionID: questions[0].ID, OptionID: questions[0].Options[0].ID, IsCorrect: true},
		{ParticipantID: alice.ID, QuestionID: questions[1].ID, OptionID: questions[1].Options[0].ID, IsCorrect: true},
		{ParticipantID: alice.ID, QuestionID: questions[1].ID, OptionID: questions[1].Options[1].ID, IsCorrect: true},
		{ParticipantID: bob.ID, QuestionID: questions[0].ID, OptionID: questions[0].Options[1].ID, IsCorrect: false},
	}
	for i := range subs {
		subs[i].SessionID = sess.ID
	}

	f.sessions.On("GetByID", mock.Anything, sess.ID).Return(sess, nil)
	f.quizzes.On("GetQuiz", mock.Anything, q.ID).Return(q, nil)
	f.quizzes.On("GetQuestions", mock.Anything, q.ID).Return(questions, nil)
	f.participants.On("ListBySession", mock.Anything, sess.ID).Return([]Participant{alice, bob}, nil)
	f.submissions.On("ListBySession", mock.Anything, sess.ID).Return(subs, nil)
	f.participants.On("UpdateScore", mock.Anything, alice.ID, 2).Return(nil)
	f.participants.On("UpdateScore", mock.Anything, bob.ID, 0).Return(nil)
	f.sessions.On("Transition", mock.Anything, sess.ID, StatusEnded, sess.CurrentQuestionID).Return(nil)

	got, err := f.svc.Complete(context.Background(), hostID, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusEnded, got.Status)
	assert.Equal(t, 1, f.feed.scoresReady)

	// Leaderboard snapshot recorded because the quiz enables it.
	require.Len(t, f.standings.recorded, 1)
	assert.Len(t, f.standings.recorded[0], 2)

	f.participants.AssertExpectations(t)
	f.sessions.AssertExpectations(t)
}

func TestCompleteContinuesWhenScoreWriteFails(t *testing.T) {
	f := newFixture()
	hostID := uuid.New()
	q := ownedQuiz(hostID)
	questions := twoQuestions(q.ID)
	sess := &Session{ID: uuid.New(), QuizID: q.ID, HostID: hostID, Status: StatusLive}

	alice := Participant{ID: uuid.New(), SessionID: sess.ID, Name: "alice"}
	bob := Participant{ID: uuid.New(), SessionID: sess.ID, Name: "bob"}

	f.sessions.On("GetByID", mock.Anything, sess.ID).Return(sess, nil)
	f.quizzes.On("GetQuiz", mock.Anything, q.ID).Return(q, nil)
	f.quizzes.On("GetQuestions", mock.Anything, q.ID).Return(questions, nil)
	f.participants.On("ListBySession", mock.Anything, sess.ID).Return([]Participant{alice, bob}, nil)
	f.submissions.On("ListBySession", mock.Anything, sess.ID).Return([]Submission{}, nil)
	f.participants.On("UpdateScore", mock.Anything, alice.ID, 0).Return(errors.New("connection reset"))
	f.participants.On("UpdateScore", mock.Anything, bob.ID, 0).Return(nil)
	f.sessions.On("Transition", mock.Anything, sess.ID, StatusEnded, mock.Anything).Return(nil)

	got, err := f.svc.Complete(context.Background(), hostID, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusEnded, got.Status)
	f.sessions.AssertExpectations(t)
}

func TestCompleteFailsClosedOnFetchError(t *testing.T) {
	f := newFixture()
	hostID := uuid.New()
	q := ownedQuiz(hostID)
	sess := &Session{ID: uuid.New(), QuizID: q.ID, HostID: hostID, Status: StatusLive}

	f.sessions.On("GetByID", mock.Anything, sess.ID).Return(sess, nil)
	f.quizzes.On("GetQuiz", mock.Anything, q.ID).Return(q, nil)
	f.quizzes.On("GetQuestions", mock.Anything, q.ID).Return(nil, errors.New("connection reset"))

	_, err := f.svc.Complete(context.Background(), hostID, sess.ID)
	require.Error(t, err)
	f.sessions.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.participants.AssertNotCalled(t, "UpdateScore", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteRejectsEndedSession(t *testing.T) {
	f := newFixture()
	hostID := uuid.New()
	sess := &Session{ID: uuid.New(), HostID: hostID, Status: StatusEnded}
	f.sessions.On("GetByID", mock.Anything, sess.ID).Return(sess, nil)

	_, err := f.svc.Complete(context.Background(), hostID, sess.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRestartOpensFreshRoom(t *testing.T) {
	f := newFixture()
	hostID := uuid.New()
	q := ownedQuiz(hostID)
	ended := &Session{ID: uuid.New(), QuizID: q.ID, HostID: hostID, RoomCode: "OLD123", Status: StatusEnded}

	f.sessions.On("GetByID", mock.Anything, ended.ID).Return(ended, nil)
	f.quizzes.On("GetQuiz", mock.Anything, q.ID).Return(q, nil)
	f.sessions.On("FindByQuizAndStatus", mock.Anything, q.ID, hostID, mock.Anything).Return(nil, nil)
	f.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)

	got, err := f.svc.Restart(context.Background(), hostID, ended.ID)
	require.NoError(t, err)
	assert.NotEqual(t, ended.ID, got.ID)
	assert.NotEqual(t, "OLD123", got.RoomCode)
	assert.Equal(t, StatusWaiting, got.Status)
}

func TestGetByRoomCodeIsCaseInsensitive(t *testing.T) {
	f := newFixture()
	sess := &Session{ID: uuid.New(), RoomCode: "AB12CD", Status: StatusWaiting}
	f.sessions.On("GetByRoomCode", mock.Anything, "AB12CD").Return(sess, nil)

	got, err := f.svc.GetByRoomCode(context.Background(), "ab12cd")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestGetByRoomCodeRejectsMalformed(t *testing.T) {
	f := newFixture()
	_, err := f.svc.GetByRoomCode(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetByRoomCodeUnknown(t *testing.T) {
	f := newFixture()
	f.sessions.On("GetByRoomCode", mock.Anything, "ZZZ999").Return(nil, nil)

	_, err := f.svc.GetByRoomCode(context.Background(), "zzz999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJoinRejectsEndedSession(t *testing.T) {
	f := newFixture()
	sess := &Session{ID: uuid.New(), Status: StatusEnded}
	f.sessions.On("GetByID", mock.Anything, sess.ID).Return(sess, nil)

	_, err := f.svc.Join(context.Background(), sess.ID, "carol")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestJoinRequiresName(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Join(context.Background(), uuid.New(), "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestJoinMidGameIsAllowed(t *testing.T) {
	f := newFixture()
	sess := &Session{ID: uuid.New(), Status: StatusLive}
	f.sessions.On("GetByID", mock.Anything, sess.ID).Return(sess, nil)
	f.participants.On("Insert", mock.Anything, mock.Anything).Return(nil)

	p, err := f.svc.Join(context.Background(), sess.ID, "carol")
	require.NoError(t, err)
	assert.Equal(t, "carol", p.Name)
	assert.Equal(t, sess.ID, p.SessionID)
	assert.Equal(t, 1, f.feed.participantJoins)
}
