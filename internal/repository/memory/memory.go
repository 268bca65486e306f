// Package memory is an in-process backend for the repository interfaces.
// It honours the same uniqueness and cascade rules as the Postgres schema and
// is used by tests and by STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/qa-forum/internal/apperr"
	"github.com/baharkarakas/qa-forum/internal/models"
	"github.com/baharkarakas/qa-forum/internal/repository"
)

type voteKey struct {
	userID string
	target models.Target
}

type DB struct {
	mu        sync.RWMutex
	users     map[string]models.User
	questions map[int64]models.Question
	answers   map[int64]models.Answer
	votes     map[voteKey]models.Vote

	lastQuestionID int64
	lastAnswerID   int64
	lastVoteID     int64

	slots *keyLocks
	Now   func() time.Time
}

func New() *DB {
	return &DB{
		users:     make(map[string]models.User),
		questions: make(map[int64]models.Question),
		answers:   make(map[int64]models.Answer),
		votes:     make(map[voteKey]models.Vote),
		slots:     newKeyLocks(),
		Now:       time.Now,
	}
}

func (db *DB) Store() repository.Store {
	return repository.Store{
		Users:     &usersRepo{db},
		Questions: &questionsRepo{db},
		Answers:   &answersRepo{db},
		Votes:     &votesRepo{db},
		Ping:      func(context.Context) error { return nil },
	}
}

// VoteCount reports how many vote rows exist for (userID, target).
// The map key makes it at most one; tests use it to assert exactly that.
func (db *DB) VoteCount(userID string, target models.Target) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if _, ok := db.votes[voteKey{userID, target}]; ok {
		return 1
	}
	return 0
}

// ---------- users ----------

type usersRepo struct{ db *DB }

func (r *usersRepo) Create(_ context.Context, u models.User) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return models.User{}, apperr.New(apperr.Conflict, "username already taken")
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return models.User{}, apperr.New(apperr.Conflict, "email already registered")
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.db.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.db.users[u.ID] = u
	return u, nil
}

func (r *usersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return models.User{}, apperr.New(apperr.NotFound, "user not found")
	}
	return u, nil
}

func (r *usersRepo) find(match func(models.User) bool) (models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, apperr.New(apperr.NotFound, "user not found")
}

func (r *usersRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *usersRepo) GetByUsername(_ context.Context, username string) (models.User, error) {
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *usersRepo) Availability(_ context.Context, username, email string) (models.Availability, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var a models.Availability
	for _, u := range r.db.users {
		if username != "" && strings.EqualFold(u.Username, username) {
			a.UsernameTaken = true
		}
		if email != "" && strings.EqualFold(u.Email, email) {
			a.EmailTaken = true
		}
	}
	return a, nil
}

func (r *usersRepo) UpdatePasswordHash(_ context.Context, id, oldHash, newHash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok || u.PasswordHash != oldHash {
		return apperr.New(apperr.NotFound, "user not found")
	}
	u.PasswordHash = newHash
	u.UpdatedAt = r.db.Now().UTC()
	r.db.users[id] = u
	return nil
}

// ---------- questions ----------

type questionsRepo struct{ db *DB }

func (r *questionsRepo) Create(_ context.Context, q models.Question) (models.Question, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[q.UserID]; !ok {
		return models.Question{}, apperr.New(apperr.NotFound, "user not found")
	}
	r.db.lastQuestionID++
	q.ID = r.db.lastQuestionID
	now := r.db.Now().UTC()
	q.CreatedAt, q.UpdatedAt = now, now
	r.db.questions[q.ID] = q
	return q, nil
}

func (r *questionsRepo) GetByID(_ context.Context, id int64) (models.Question, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	q, ok := r.db.questions[id]
	if !ok {
		return models.Question{}, apperr.New(apperr.NotFound, "question not found")
	}
	return q, nil
}

func (r *questionsRepo) View(_ context.Context, id int64, viewerID string) (models.QuestionView, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	q, ok := r.db.questions[id]
	if !ok {
		return models.QuestionView{}, apperr.New(apperr.NotFound, "question not found")
	}
	return r.db.questionView(q, viewerID), nil
}

func (r *questionsRepo) List(_ context.Context, page models.Page, viewerID string) ([]models.QuestionView, error) {
	page = page.Normalize()
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	all := make([]models.Question, 0, len(r.db.questions))
	for _, q := range r.db.questions {
		all = append(all, q)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	out := []models.QuestionView{}
	for i := page.Offset; i < len(all) && len(out) < page.Limit; i++ {
		out = append(out, r.db.questionView(all[i], viewerID))
	}
	return out, nil
}

func (r *questionsRepo) Update(_ context.Context, q models.Question) (models.Question, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.questions[q.ID]
	if !ok {
		return models.Question{}, apperr.New(apperr.NotFound, "question not found")
	}
	cur.Title = q.Title
	cur.Description = q.Description
	cur.UpdatedAt = r.db.Now().UTC()
	r.db.questions[q.ID] = cur
	return cur, nil
}

func (r *questionsRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.questions[id]; !ok {
		return apperr.New(apperr.NotFound, "question not found")
	}
	for aid, a := range r.db.answers {
		if a.QuestionID == id {
			r.db.deleteAnswerLocked(aid)
		}
	}
	r.db.deleteVotesLocked(models.QuestionTarget(id))
	delete(r.db.questions, id)
	return nil
}

// ---------- answers ----------

type answersRepo struct{ db *DB }

func (r *answersRepo) Create(_ context.Context, a models.Answer) (models.Answer, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.questions[a.QuestionID]; !ok {
		return models.Answer{}, apperr.New(apperr.NotFound, "question not found")
	}
	r.db.lastAnswerID++
	a.ID = r.db.lastAnswerID
	now := r.db.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	r.db.answers[a.ID] = a
	return a, nil
}

func (r *answersRepo) GetByID(_ context.Context, id int64) (models.Answer, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	a, ok := r.db.answers[id]
	if !ok {
		return models.Answer{}, apperr.New(apperr.NotFound, "answer not found")
	}
	return a, nil
}

func (r *answersRepo) ListByQuestion(_ context.Context, questionID int64, viewerID string) ([]models.AnswerView, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if _, ok := r.db.questions[questionID]; !ok {
		return nil, apperr.New(apperr.NotFound, "question not found")
	}
	var list []models.Answer
	for _, a := range r.db.answers {
		if a.QuestionID == questionID {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	out := make([]models.AnswerView, 0, len(list))
	for _, a := range list {
		t := models.AnswerTarget(a.ID)
		out = append(out, models.AnswerView{
			Answer:   a,
			Username: r.db.users[a.UserID].Username,
			Score:    r.db.scoreLocked(t),
			MyVote:   r.db.myVoteLocked(viewerID, t),
		})
	}
	return out, nil
}

func (r *answersRepo) Update(_ context.Context, a models.Answer) (models.Answer, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.answers[a.ID]
	if !ok {
		return models.Answer{}, apperr.New(apperr.NotFound, "answer not found")
	}
	cur.Body = a.Body
	cur.UpdatedAt = r.db.Now().UTC()
	r.db.answers[a.ID] = cur
	return cur, nil
}

func (r *answersRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.answers[id]; !ok {
		return apperr.New(apperr.NotFound, "answer not found")
	}
	r.db.deleteAnswerLocked(id)
	return nil
}

// ---------- votes ----------

type votesRepo struct{ db *DB }

func (r *votesRepo) Toggle(_ context.Context, userID string, target models.Target, value models.VoteValue, decide repository.DecideFunc) (models.VoteAction, error) {
	key := voteKey{userID, target}
	unlock := r.db.slots.lock(key)
	defer unlock()

	r.db.mu.RLock()
	existing, found := r.db.votes[key]
	exists := r.db.targetExistsLocked(target)
	r.db.mu.RUnlock()
	if !exists {
		return "", apperr.New(apperr.NotFound, string(target.Kind)+" not found")
	}

	var current *models.VoteValue
	if found {
		v := existing.Value
		current = &v
	}
	action := decide(current, value)

	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	// the target may have been deleted while the slot was being decided
	if !r.db.targetExistsLocked(target) {
		return "", apperr.New(apperr.NotFound, string(target.Kind)+" not found")
	}
	if _, ok := r.db.users[userID]; !ok && action == models.VoteInsert {
		return "", apperr.New(apperr.NotFound, "user not found")
	}
	now := r.db.Now().UTC()
	switch action {
	case models.VoteInsert:
		r.db.lastVoteID++
		r.db.votes[key] = models.Vote{
			ID: r.db.lastVoteID, UserID: userID, Target: target, Value: value,
			CreatedAt: now, UpdatedAt: now,
		}
	case models.VoteDelete:
		delete(r.db.votes, key)
	case models.VoteUpdate:
		existing.Value = value
		existing.UpdatedAt = now
		r.db.votes[key] = existing
	}
	return action, nil
}

func (r *votesRepo) Score(_ context.Context, target models.Target) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.scoreLocked(target), nil
}

func (r *votesRepo) Get(_ context.Context, userID string, target models.Target) (models.Vote, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	v, ok := r.db.votes[voteKey{userID, target}]
	if !ok {
		return models.Vote{}, apperr.New(apperr.NotFound, "vote not found")
	}
	return v, nil
}

// ---------- helpers (callers hold db.mu) ----------

func (db *DB) questionView(q models.Question, viewerID string) models.QuestionView {
	t := models.QuestionTarget(q.ID)
	var answers int64
	for _, a := range db.answers {
		if a.QuestionID == q.ID {
			answers++
		}
	}
	return models.QuestionView{
		Question:    q,
		Username:    db.users[q.UserID].Username,
		Score:       db.scoreLocked(t),
		AnswerCount: answers,
		MyVote:      db.myVoteLocked(viewerID, t),
	}
}

func (db *DB) scoreLocked(t models.Target) int64 {
	var sum int64
	for k, v := range db.votes {
		if k.target == t {
			sum += int64(v.Value)
		}
	}
	return sum
}

func (db *DB) myVoteLocked(userID string, t models.Target) int {
	if userID == "" {
		return 0
	}
	if v, ok := db.votes[voteKey{userID, t}]; ok {
		return int(v.Value)
	}
	return 0
}

func (db *DB) targetExistsLocked(t models.Target) bool {
	switch t.Kind {
	case models.TargetQuestion:
		_, ok := db.questions[t.ID]
		return ok
	case models.TargetAnswer:
		_, ok := db.answers[t.ID]
		return ok
	}
	return false
}

func (db *DB) deleteVotesLocked(t models.Target) {
	for k := range db.votes {
		if k.target == t {
			delete(db.votes, k)
		}
	}
}

func (db *DB) deleteAnswerLocked(id int64) {
	db.deleteVotesLocked(models.AnswerTarget(id))
	delete(db.answers, id)
}
