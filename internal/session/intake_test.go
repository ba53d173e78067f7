package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Suyash56/quizzy-pop/internal/quiz"
)

type intakeFixture struct {
	*fixture
	intake *Intake

	sess        *Session
	participant *Participant
	questions   []quiz.Question
}

// newIntakeFixture wires a live session with one joined participant and a
// two-question quiz, the common starting point for submission tests.
func newIntakeFixture() *intakeFixture {
	f := newFixture()
	quizID := uuid.New()
	questions := twoQuestions(quizID)

	sess := &Session{
		ID: uuid.New(), QuizID: quizID, HostID: uuid.New(),
		Status: StatusLive, CurrentQuestionID: &questions[0].ID,
	}
	p := &Participant{ID: uuid.New(), SessionID: sess.ID, Name: "alice"}

	f.sessions.On("GetByID", mock.Anything, sess.ID).Return(sess, nil)
	f.participants.On("GetByID", mock.Anything, p.ID).Return(p, nil)
	f.quizzes.On("GetQuestions", mock.Anything, quizID).Return(questions, nil)

	return &intakeFixture{
		fixture:     f,
		intake:      NewIntake(Deps{Quizzes: f.quizzes, Sessions: f.sessions, Participants: f.participants, Submissions: f.submissions, Feed: f.feed}, zerolog.Nop()),
		sess:        sess,
		participant: p,
		questions:   questions,
	}
}

func TestSubmitRecordsSingleAnswer(t *testing.T) {
	f := newIntakeFixture()
	q := f.questions[0]

	f.submissions.On("ExistsForQuestion", mock.Anything, f.sess.ID, f.participant.ID, q.ID).Return(false, nil)
	f.submissions.On("InsertBatch", mock.Anything, mock.MatchedBy(func(rows []Submission) bool {
		return len(rows) == 1 &&
			rows[0].SessionID == f.sess.ID &&
			rows[0].ParticipantID == f.participant.ID &&
			rows[0].QuestionID == q.ID &&
			rows[0].OptionID == q.Options[0].ID &&
			rows[0].IsCorrect
	})).Return(nil)

	n, err := f.intake.Submit(context.Background(), f.sess.ID, f.participant.ID, q.ID, []uuid.UUID{q.Options[0].ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, f.feed.submissionsRecorded)
}

func TestSubmitDedupesOptionIDs(t *testing.T) {
	f := newIntakeFixture()
	q := f.questions[1]
	a, b := q.Options[0].ID, q.Options[1].ID

	f.submissions.On("ExistsForQuestion", mock.Anything, f.sess.ID, f.participant.ID, q.ID).Return(false, nil)
	f.submissions.On("InsertBatch", mock.Anything, mock.MatchedBy(func(rows []Submission) bool {
		return len(rows) == 2 && rows[0].OptionID == a && rows[1].OptionID == b
	})).Return(nil)

	n, err := f.intake.Submit(context.Background(), f.sess.ID, f.participant.ID, q.ID, []uuid.UUID{a, a, b})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSubmitUnknownOptionStoredAsIncorrect(t *testing.T) {
	f := newIntakeFixture()
	q := f.questions[0]
	stale := uuid.New()

	f.submissions.On("ExistsForQuestion", mock.Anything, f.sess.ID, f.participant.ID, q.ID).Return(false, nil)
	f.submissions.On("InsertBatch", mock.Anything, mock.MatchedBy(func(rows []Submission) bool {
		return len(rows) == 1 && rows[0].OptionID == stale && !rows[0].IsCorrect
	})).Return(nil)

	n, err := f.intake.Submit(context.Background(), f.sess.ID, f.participant.ID, q.ID, []uuid.UUID{stale})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSubmitRequiresOptions(t *testing.T) {
	f := newIntakeFixture()

	_, err := f.intake.Submit(context.Background(), f.sess.ID, f.participant.ID, f.questions[0].ID, nil)
	assert.ErrorIs(t, err, ErrValidation)
	f.submissions.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestSubmitRejectsDuplicate(t *testing.T) {
	f := newIntakeFixture()
	q := f.questions[0]

	f.submissions.On("ExistsForQuestion", mock.Anything, f.sess.ID, f.participant.ID, q.ID).Return(true, nil)

	_, err := f.intake.Submit(context.Background(), f.sess.ID, f.participant.ID, q.ID, []uuid.UUID{q.Options[0].ID})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	f.submissions.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestSubmitDuplicateUnderRace(t *testing.T) {
	// The read-side check passes but the store's uniqueness constraint
	// catches the concurrent insert.
	f := newIntakeFixture()
	q := f.questions[0]

	f.submissions.On("ExistsForQuestion", mock.Anything, f.sess.ID, f.participant.ID, q.ID).Return(false, nil)
	f.submissions.On("InsertBatch", mock.Anything, mock.Anything).
		Return(fmt.Errorf("insert row: %w", ErrConflict))

	_, err := f.intake.Submit(context.Background(), f.sess.ID, f.participant.ID, q.ID, []uuid.UUID{q.Options[0].ID})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Equal(t, 0, f.feed.submissionsRecorded)
}

func TestSubmitRejectsNonLiveSession(t *testing.T) {
	for _, status := range []Status{StatusWaiting, StatusEnded} {
		f := newFixture()
		sess := &Session{ID: uuid.New(), Status: status}
		f.sessions.On("GetByID", mock.Anything, sess.ID).Return(sess, nil)
		intake := NewIntake(Deps{Quizzes: f.quizzes, Sessions: f.sessions, Participants: f.participants, Submissions: f.submissions, Feed: f.feed}, zerolog.Nop())

		_, err := intake.Submit(context.Background(), sess.ID, uuid.New(), uuid.New(), []uuid.UUID{uuid.New()})
		assert.ErrorIs(t, err, ErrInvalidState, "status %s", status)
	}
}

func TestSubmitUnknownQuestion(t *testing.T) {
	f := newIntakeFixture()

	_, err := f.intake.Submit(context.Background(), f.sess.ID, f.participant.ID, uuid.New(), []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitRejectsParticipantFromOtherSession(t *testing.T) {
	f := newIntakeFixture()
	stranger := &Participant{ID: uuid.New(), SessionID: uuid.New(), Name: "mallory"}
	f.participants.On("GetByID", mock.Anything, stranger.ID).Return(stranger, nil)

	_, err := f.intake.Submit(context.Background(), f.sess.ID, stranger.ID, f.questions[0].ID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitUnknownParticipant(t *testing.T) {
	f := newIntakeFixture()
	ghost := uuid.New()
	f.participants.On("GetByID", mock.Anything, ghost).Return(nil, nil)

	_, err := f.intake.Submit(context.Background(), f.sess.ID, ghost, f.questions[0].ID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)
}
