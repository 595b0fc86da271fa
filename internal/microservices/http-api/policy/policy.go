// Package policy decides who may do what. It has no I/O: callers build an
// Actor from the authenticated user and a Target from the resource.
package policy

import (
	"reviewhub/internal/apperr"
	"reviewhub/internal/microservices/http-api/models"
)

type Action string

const (
	ActionList     Action = "list"
	ActionRetrieve Action = "retrieve"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

// IsRead reports whether a is a read-only action.
func (a Action) IsRead() bool {
	return a == ActionList || a == ActionRetrieve
}

type Resource string

const (
	ResourceCategory Resource = "category"
	ResourceGenre    Resource = "genre"
	ResourceTitle    Resource = "title"
	ResourceReview   Resource = "review"
	ResourceComment  Resource = "comment"
	ResourceUser     Resource = "user"
	// ResourceMe is the caller's own profile.
	ResourceMe Resource = "user_me"
)

// Actor is the caller. The zero value is an anonymous caller.
type Actor struct {
	ID            int64
	Role          models.Role
	IsStaff       bool
	Authenticated bool
}

// Anonymous returns an unauthenticated actor.
func Anonymous() Actor {
	return Actor{}
}

// ActorFromUser builds an authenticated actor from a loaded user.
func ActorFromUser(u *models.User) Actor {
	if u == nil {
		return Anonymous()
	}
	return Actor{ID: u.ID, Role: u.Role, IsStaff: u.IsStaff, Authenticated: true}
}

func (a Actor) IsAdmin() bool {
	return a.Authenticated && (a.Role == models.RoleAdmin || a.IsStaff)
}

func (a Actor) IsModerator() bool {
	return a.Authenticated && a.Role == models.RoleModerator
}

// Target identifies the resource acted on. AuthorID is only meaningful for
// object-level review and comment checks; zero means "collection".
type Target struct {
	Kind     Resource
	AuthorID int64
}

func On(kind Resource) Target {
	return Target{Kind: kind}
}

func OnAuthored(kind Resource, authorID int64) Target {
	return Target{Kind: kind, AuthorID: authorID}
}

type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) Allowed() bool {
	return d == Allow
}

// Err maps a denial to the domain error; nil when allowed.
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case DenyUnauthenticated:
		return apperr.ErrUnauthenticated
	default:
		return apperr.ErrForbidden
	}
}

// CanPerform is the whole authorization table.
func CanPerform(actor Actor, action Action, target Target) Decision {
	switch target.Kind {
	case ResourceCategory, ResourceGenre, ResourceTitle:
		if action.IsRead() {
			return Allow
		}
		return requireAdmin(actor)

	case ResourceReview, ResourceComment:
		if action.IsRead() {
			return Allow
		}
		if !actor.Authenticated {
			return DenyUnauthenticated
		}
		if action == ActionCreate {
			return Allow
		}
		if actor.IsAdmin() || actor.IsModerator() {
			return Allow
		}
		if target.AuthorID != 0 && target.AuthorID == actor.ID {
			return Allow
		}
		return DenyForbidden

	case ResourceUser:
		return requireAdmin(actor)

	case ResourceMe:
		if !actor.Authenticated {
			return DenyUnauthenticated
		}
		if action == ActionRetrieve || action == ActionUpdate {
			return Allow
		}
		return DenyForbidden
	}
	return DenyForbidden
}

// CanChangeRole reports whether the actor may set a role on target. Roles
// are never self-assigned through the profile endpoint.
func CanChangeRole(actor Actor, target Resource) bool {
	return target == ResourceUser && actor.IsAdmin()
}

func requireAdmin(actor Actor) Decision {
	if !actor.Authenticated {
		return DenyUnauthenticated
	}
	if actor.IsAdmin() {
		return Allow
	}
	return DenyForbidden
}
