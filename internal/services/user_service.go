package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/baharkarakas/qa-forum/internal/apperr"
	"github.com/baharkarakas/qa-forum/internal/auth"
	"github.com/baharkarakas/qa-forum/internal/metrics"
	"github.com/baharkarakas/qa-forum/internal/models"
	"github.com/baharkarakas/qa-forum/internal/notify"
	repo "github.com/baharkarakas/qa-forum/internal/repository"
	"github.com/baharkarakas/qa-forum/internal/validate"
)

// Mailer queues an outgoing notification without waiting for delivery.
type Mailer interface {
	Dispatch(m notify.Message)
}

type UserService struct {
	r           repo.Users
	tm          *auth.TokenManager
	mail        Mailer
	frontendURL string
	log         *slog.Logger
}

func NewUserService(r repo.Users, tm *auth.TokenManager, mail Mailer, frontendURL string, log *slog.Logger) *UserService {
	return &UserService{r: r, tm: tm, mail: mail, frontendURL: strings.TrimRight(frontendURL, "/"), log: log}
}

type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (in RegisterInput) normalize() (RegisterInput, error) {
	out := RegisterInput{
		FirstName: validate.Text(in.FirstName),
		LastName:  validate.Text(in.LastName),
		Username:  strings.ToLower(strings.TrimSpace(in.Username)),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Password:  in.Password,
	}
	var errs validate.Errs
	errs.Add(validate.Length("first_name", out.FirstName, 2, 50))
	errs.Add(validate.Length("last_name", out.LastName, 2, 50))
	errs.Add(validate.Username("username", out.Username))
	errs.Add(validate.Email("email", out.Email))
	errs.Add(validate.Password("password", out.Password))
	return out, errs.Err()
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in, err := in.normalize()
	if err != nil {
		return models.User{}, err
	}
	avail, err := s.r.Availability(ctx, in.Username, in.Email)
	if err != nil {
		return models.User{}, err
	}
	if avail.EmailTaken {
		return models.User{}, apperr.New(apperr.Conflict, "email already registered")
	}
	if avail.UsernameTaken {
		return models.User{}, apperr.New(apperr.Conflict, "username already taken")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "hash password", err)
	}
	u, err := s.r.Create(ctx, models.User{
		Username: in.Username, Email: in.Email,
		FirstName: in.FirstName, LastName: in.LastName,
		PasswordHash: hash,
	})
	if err != nil {
		metrics.AuthEventsTotal.WithLabelValues("register", "failed").Inc()
		return models.User{}, err
	}
	metrics.AuthEventsTotal.WithLabelValues("register", "ok").Inc()
	s.mail.Dispatch(notify.Welcome(u.Email, u.DisplayName()))
	return u, nil
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	ExpiresIn int64       `json:"expires_in"` // seconds
	User      models.User `json:"user"`
}

// Login accepts either the email or the username as identifier.
func (s *UserService) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	var errs validate.Errs
	errs.Add(validate.Required("identifier", identifier))
	errs.Add(validate.Required("password", password))
	if err := errs.Err(); err != nil {
		return LoginResult{}, err
	}

	var (
		u   models.User
		err error
	)
	if strings.Contains(identifier, "@") {
		u, err = s.r.GetByEmail(ctx, identifier)
	} else {
		u, err = s.r.GetByUsername(ctx, identifier)
	}
	invalid := apperr.New(apperr.Unauthenticated, "invalid credentials")
	switch {
	case apperr.Is(err, apperr.NotFound):
		auth.BurnCompare(password)
		metrics.AuthEventsTotal.WithLabelValues("login", "failed").Inc()
		return LoginResult{}, invalid
	case err != nil:
		return LoginResult{}, err
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		metrics.AuthEventsTotal.WithLabelValues("login", "failed").Inc()
		return LoginResult{}, invalid
	}

	tok, exp, err := s.tm.IssueAccess(u.ID, u.Username)
	if err != nil {
		return LoginResult{}, apperr.Wrap(apperr.Internal, "issue token", err)
	}
	metrics.AuthEventsTotal.WithLabelValues("login", "ok").Inc()
	return LoginResult{
		Token:     tok,
		ExpiresAt: exp,
		ExpiresIn: int64(s.tm.AccessTTL().Seconds()),
		User:      u,
	}, nil
}

func (s *UserService) Me(ctx context.Context, actorID string) (models.User, error) {
	if actorID == "" {
		return models.User{}, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	u, err := s.r.GetByID(ctx, actorID)
	if apperr.Is(err, apperr.NotFound) {
		// a valid token for a user that no longer exists
		return models.User{}, apperr.New(apperr.Unauthenticated, "unknown user")
	}
	return u, err
}

func (s *UserService) CheckAvailability(ctx context.Context, username, email string) (models.Availability, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" && email == "" {
		return models.Availability{}, apperr.Invalid(apperr.FieldError{Field: "username", Msg: "username or email required"})
	}
	return s.r.Availability(ctx, username, email)
}

// RequestPasswordReset always succeeds from the caller's point of view so
// the response does not reveal which emails have accounts.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if f := validate.Email("email", email); f != nil {
		return apperr.Invalid(*f)
	}
	u, err := s.r.GetByEmail(ctx, email)
	if err != nil {
		if !apperr.Is(err, apperr.NotFound) {
			s.log.Error("password reset lookup", slog.Any("err", err))
		}
		metrics.AuthEventsTotal.WithLabelValues("reset_request", "unknown").Inc()
		return nil
	}
	tok, exp, err := s.tm.IssueReset(u.ID, u.PasswordHash)
	if err != nil {
		s.log.Error("issue reset token", slog.Any("err", err))
		return nil
	}
	metrics.AuthEventsTotal.WithLabelValues("reset_request", "ok").Inc()
	s.mail.Dispatch(notify.PasswordReset(u.Email, s.frontendURL+"/reset-password/"+tok, exp))
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	badToken := apperr.New(apperr.InvalidInput, "invalid or expired reset token")
	claims, err := s.tm.ParseReset(token)
	if err != nil {
		return badToken
	}
	if f := validate.Password("password", newPassword); f != nil {
		return apperr.Invalid(*f)
	}
	u, err := s.r.GetByID(ctx, claims.UserID)
	switch {
	case apperr.Is(err, apperr.NotFound):
		return badToken
	case err != nil:
		return err
	}
	if auth.Fingerprint(u.PasswordHash) != claims.Fingerprint {
		// already used: the password changed since the token was issued
		return badToken
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "hash password", err)
	}
	// a concurrent reset with the same token loses here
	err = s.r.UpdatePasswordHash(ctx, u.ID, u.PasswordHash, hash)
	switch {
	case apperr.Is(err, apperr.NotFound):
		return badToken
	case err != nil:
		return err
	}
	metrics.AuthEventsTotal.WithLabelValues("reset", "ok").Inc()
	s.mail.Dispatch(notify.PasswordChanged(u.Email, time.Now()))
	return nil
}
