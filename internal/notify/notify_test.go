package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/baharkarakas/qa-forum/internal/worker"
)

type recorder struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (r *recorder) Send(_ context.Context, m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, m)
	return r.err
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestDispatcherDeliversInBackground(t *testing.T) {
	rec := &recorder{}
	pool := worker.NewPool(2, 8)
	d := NewDispatcher(rec, pool, discard())

	d.Dispatch(Welcome("a@example.com", "Ada Lovelace"))
	d.Dispatch(PasswordChanged("a@example.com", time.Now()))
	pool.Stop()

	assert.Len(t, rec.sent, 2)
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	rec := &recorder{err: errors.New("smtp down")}
	pool := worker.NewPool(1, 4)
	d := NewDispatcher(rec, pool, discard())

	assert.NotPanics(t, func() { d.Dispatch(Welcome("a@example.com", "Ada")) })
	pool.Stop()
	assert.Len(t, rec.sent, 1)
}

func TestPasswordResetMessage(t *testing.T) {
	m := PasswordReset("a@example.com", "https://forum.example.com/reset-password/tok", time.Now().Add(15*time.Minute))
	assert.Equal(t, KindPasswordReset, m.Kind)
	assert.Contains(t, m.HTML, "https://forum.example.com/reset-password/tok")
	assert.Contains(t, m.HTML, "from now")
}

func TestLogNotifierNeverFails(t *testing.T) {
	assert.NoError(t, LogNotifier{Logger: discard()}.Send(context.Background(), Welcome("x@example.com", "X")))
}
