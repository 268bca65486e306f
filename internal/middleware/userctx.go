package middleware

import "context"

type actorKey struct{}

// Actor is the authenticated caller attached to a request.
type Actor struct {
	UserID   string
	Username string
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok && a.UserID != ""
}

// ActorID returns the caller's user id, or "" for anonymous requests.
func ActorID(ctx context.Context) string {
	a, _ := ActorFrom(ctx)
	return a.UserID
}
