// Package policy decides who may create, read, edit or delete forum content.
package policy

import "github.com/baharkarakas/qa-forum/internal/apperr"

type Action string

const (
	Create Action = "create"
	Read   Action = "read"
	Update Action = "update"
	Delete Action = "delete"
)

// Owned is any content item with a single owning user.
type Owned interface {
	OwnerID() string
}

// Policy gates mutations on owned content. With Strict set, content that
// exists but belongs to someone else is reported as NotFound instead of
// Forbidden so callers cannot tell whether it exists.
type Policy struct {
	Strict bool
}

// Authorize returns nil when actorID may perform action on target. For
// Update and Delete the caller must have looked the target up already and
// pass nil when it does not exist.
func (p Policy) Authorize(actorID string, action Action, target Owned, what string) error {
	switch action {
	case Read:
		return nil
	case Create:
		if actorID == "" {
			return apperr.New(apperr.Unauthenticated, "authentication required")
		}
		return nil
	case Update, Delete:
		if actorID == "" {
			return apperr.New(apperr.Unauthenticated, "authentication required")
		}
		if target == nil {
			return apperr.New(apperr.NotFound, what+" not found")
		}
		if target.OwnerID() != actorID {
			if p.Strict {
				return apperr.New(apperr.NotFound, what+" not found")
			}
			return apperr.New(apperr.Forbidden, "you can only "+string(action)+" your own "+what)
		}
		return nil
	}
	return apperr.New(apperr.Forbidden, "unsupported action")
}
