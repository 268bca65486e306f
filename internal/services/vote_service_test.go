package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/qa-forum/internal/apperr"
	"github.com/baharkarakas/qa-forum/internal/models"
)

func TestVoteScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, b, c := e.register(t, "usera"), e.register(t, "userb"), e.register(t, "userc")
	q := e.ask(t, a)
	require.EqualValues(t, 1, q.ID)
	target := models.QuestionTarget(q.ID)

	res, err := e.votes.Toggle(ctx, b.ID, target, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Score)
	assert.Equal(t, models.VoteInsert, res.Action)
	assert.Equal(t, 1, res.MyVote)

	res, err = e.votes.Toggle(ctx, b.ID, target, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Score)
	assert.Equal(t, models.VoteDelete, res.Action)
	assert.Equal(t, 0, res.MyVote)

	res, err = e.votes.Toggle(ctx, c.ID, target, -1)
	require.NoError(t, err)
	assert.EqualValues(t, -1, res.Score)
}

func TestToggleIdempotenceUnderRepetition(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner, voter := e.register(t, "owner"), e.register(t, "voter")
	q := e.ask(t, owner)
	target := models.QuestionTarget(q.ID)

	before, err := e.votes.Score(ctx, target)
	require.NoError(t, err)

	_, err = e.votes.Toggle(ctx, voter.ID, target, 1)
	require.NoError(t, err)
	res, err := e.votes.Toggle(ctx, voter.ID, target, 1)
	require.NoError(t, err)
	assert.Equal(t, before, res.Score)
	assert.Equal(t, 0, e.db.VoteCount(voter.ID, target))

	res, err = e.votes.Toggle(ctx, voter.ID, target, 1)
	require.NoError(t, err)
	assert.Equal(t, before+1, res.Score)
	assert.Equal(t, 1, e.db.VoteCount(voter.ID, target))
}

func TestFlipLeavesNoGhostRow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner, voter := e.register(t, "owner"), e.register(t, "voter")
	q := e.ask(t, owner)
	ans, err := e.answers.Create(ctx, owner.ID, q.ID, AnswerInput{Body: "Rayleigh scattering of sunlight."})
	require.NoError(t, err)
	target := models.AnswerTarget(ans.ID)

	_, err = e.votes.Toggle(ctx, voter.ID, target, 1)
	require.NoError(t, err)
	res, err := e.votes.Toggle(ctx, voter.ID, target, -1)
	require.NoError(t, err)
	assert.Equal(t, models.VoteUpdate, res.Action)
	assert.EqualValues(t, -1, res.Score)
	assert.Equal(t, 1, e.db.VoteCount(voter.ID, target))

	// the question's score is untouched by votes on its answer
	qs, err := e.votes.Score(ctx, models.QuestionTarget(q.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 0, qs)
}

func TestScoreIsSumOfVotes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "owner")
	q := e.ask(t, owner)
	target := models.QuestionTarget(q.ID)

	values := []int{1, 1, -1, 1, -1, -1, 1}
	var want int64
	for i, v := range values {
		voter := e.register(t, "voter"+string(rune('a'+i)))
		res, err := e.votes.Toggle(ctx, voter.ID, target, v)
		require.NoError(t, err)
		want += int64(v)
		assert.Equal(t, want, res.Score)
	}
}

func TestToggleRejectsBadInputBeforeTouchingStore(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "owner")
	q := e.ask(t, owner)

	tests := []struct {
		name   string
		actor  string
		target models.Target
		value  int
		want   apperr.Kind
	}{
		{"zero value", owner.ID, models.QuestionTarget(q.ID), 0, apperr.InvalidInput},
		{"value two", owner.ID, models.QuestionTarget(q.ID), 2, apperr.InvalidInput},
		{"non-positive id", owner.ID, models.QuestionTarget(0), 1, apperr.InvalidInput},
		{"missing question", owner.ID, models.QuestionTarget(999), 1, apperr.NotFound},
		{"missing answer", owner.ID, models.AnswerTarget(999), -1, apperr.NotFound},
		{"anonymous", "", models.QuestionTarget(q.ID), 1, apperr.Unauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.votes.Toggle(ctx, tt.actor, tt.target, tt.value)
			assert.Equal(t, tt.want, apperr.KindOf(err))
		})
	}
	score, err := e.votes.Score(ctx, models.QuestionTarget(q.ID))
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestConcurrentTogglesFromManyUsers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "owner")
	q := e.ask(t, owner)
	target := models.QuestionTarget(q.ID)

	voters := make([]models.User, 10)
	for i := range voters {
		voters[i] = e.register(t, "voter"+string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	for _, v := range voters {
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := e.votes.Toggle(ctx, id, target, 1)
				assert.NoError(t, err)
			}(v.ID)
		}
	}
	wg.Wait()

	// three identical toggles per voter: on, off, on
	score, err := e.votes.Score(ctx, target)
	require.NoError(t, err)
	assert.EqualValues(t, len(voters), score)
	for _, v := range voters {
		assert.Equal(t, 1, e.db.VoteCount(v.ID, target))
	}
}

func TestMyVote(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner, voter := e.register(t, "owner"), e.register(t, "voter")
	target := models.QuestionTarget(e.ask(t, owner).ID)

	mine, err := e.votes.MyVote(ctx, voter.ID, target)
	require.NoError(t, err)
	assert.Zero(t, mine)

	_, err = e.votes.Toggle(ctx, voter.ID, target, -1)
	require.NoError(t, err)
	mine, err = e.votes.MyVote(ctx, voter.ID, target)
	require.NoError(t, err)
	assert.Equal(t, -1, mine)

	mine, err = e.votes.MyVote(ctx, "", target)
	require.NoError(t, err)
	assert.Zero(t, mine)

	_, err = e.votes.MyVote(ctx, voter.ID, models.QuestionTarget(0))
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}
