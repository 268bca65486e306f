package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/qa-forum/internal/auth"
	"github.com/baharkarakas/qa-forum/internal/models"
	"github.com/baharkarakas/qa-forum/internal/notify"
	"github.com/baharkarakas/qa-forum/internal/policy"
	"github.com/baharkarakas/qa-forum/internal/render"
	"github.com/baharkarakas/qa-forum/internal/repository/memory"
)

type mailbox struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (m *mailbox) Dispatch(msg notify.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
}

func (m *mailbox) last(kind string) (notify.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.msgs) - 1; i >= 0; i-- {
		if m.msgs[i].Kind == kind {
			return m.msgs[i], true
		}
	}
	return notify.Message{}, false
}

type env struct {
	db        *memory.DB
	users     *UserService
	questions *QuestionService
	answers   *AnswerService
	votes     *VoteService
	mail      *mailbox
	tm        *auth.TokenManager
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := memory.New()
	store := db.Store()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rr, err := render.New(16)
	require.NoError(t, err)
	tm := auth.NewTokenManager("test-secret", "qa-forum", time.Hour, 15*time.Minute)
	mail := &mailbox{}
	p := policy.Policy{}

	return &env{
		db:        db,
		users:     NewUserService(store.Users, tm, mail, "http://localhost:3000/", log),
		questions: NewQuestionService(store.Questions, p, rr),
		answers:   NewAnswerService(store.Answers, store.Questions, p, rr),
		votes:     NewVoteService(store.Votes, store.Questions, store.Answers, log),
		mail:      mail,
		tm:        tm,
	}
}

func (e *env) register(t *testing.T, username string) models.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), RegisterInput{
		FirstName: "Test", LastName: "User", Username: username,
		Email: username + "@example.com", Password: "password123",
	})
	require.NoError(t, err)
	return u
}

func (e *env) ask(t *testing.T, owner models.User) models.Question {
	t.Helper()
	q, err := e.questions.Create(context.Background(), owner.ID, QuestionInput{
		Title: "Why is the sky blue", Description: "Looking for the physics behind it.",
	})
	require.NoError(t, err)
	return q
}
