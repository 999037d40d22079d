// Package policy decides whether an actor may perform an action on a
// resource. It is a pure function of role, superuser flag and ownership, so
// the whole role x action matrix can be tested without a database.
package policy

import (
	"errors"

	"yamdb/internal/microservices/http-api/models"
)

var (
	// ErrUnauthenticated means the request carried no usable credentials.
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	// ErrForbidden means the actor is known but lacks role or ownership.
	ErrForbidden = errors.New("you do not have permission to perform this action")
)

type Action int

const (
	Read Action = iota
	Create
	Update
	Delete
)

func (a Action) String() string {
	switch a {
	case Read:
		return "read"
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	}
	return "unknown"
}

type Kind int

const (
	Category Kind = iota
	Genre
	Title
	Review
	Comment
	// Users is the management surface over every user record.
	Users
	// Profile is the caller's own record behind /users/me/.
	Profile
)

// Actor is an authenticated caller. A nil *Actor is an anonymous caller.
type Actor struct {
	ID          string
	Role        string
	IsSuperuser bool
}

// ActorFromUser builds an Actor from a stored user, nil stays nil.
func ActorFromUser(u *models.User) *Actor {
	if u == nil {
		return nil
	}
	return &Actor{ID: u.ID, Role: u.Role, IsSuperuser: u.IsSuperuser}
}

// Resource identifies what is acted on. AuthorID is only meaningful for
// reviews and comments and is empty for collection-level checks.
type Resource struct {
	Kind     Kind
	AuthorID string
}

// On is shorthand for a resource without an author.
func On(kind Kind) Resource {
	return Resource{Kind: kind}
}

// Owned is shorthand for an authored resource.
func Owned(kind Kind, authorID string) Resource {
	return Resource{Kind: kind, AuthorID: authorID}
}

// IsAdmin reports whether the actor holds the admin role or the superuser flag.
func (a *Actor) IsAdmin() bool {
	return a != nil && (a.Role == models.RoleAdmin || a.IsSuperuser)
}

// IsStaff reports whether the actor may moderate other people's content.
func (a *Actor) IsStaff() bool {
	return a.IsAdmin() || (a != nil && a.Role == models.RoleModerator)
}

// Authorize returns nil when the action is allowed, ErrUnauthenticated when an
// anonymous caller attempts something that needs credentials, and ErrForbidden
// otherwise.
func Authorize(actor *Actor, action Action, res Resource) error {
	switch res.Kind {
	case Category, Genre, Title:
		if action == Read {
			return nil
		}
		return requireAdmin(actor)

	case Review, Comment:
		if action == Read {
			return nil
		}
		if actor == nil {
			return ErrUnauthenticated
		}
		if action == Create {
			return nil
		}
		if actor.ID == res.AuthorID || actor.IsStaff() {
			return nil
		}
		return ErrForbidden

	case Users:
		return requireAdmin(actor)

	case Profile:
		if actor == nil {
			return ErrUnauthenticated
		}
		if action == Read || action == Update {
			return nil
		}
		return ErrForbidden
	}
	return ErrForbidden
}

func requireAdmin(actor *Actor) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if actor.IsAdmin() {
		return nil
	}
	return ErrForbidden
}
