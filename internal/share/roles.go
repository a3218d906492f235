// Package share computes the session user's effective role on a
// collection and gates UI affordances with it. The backend is the
// actual enforcement point; nothing here is a security boundary.
// The role only decides which controls the client shows.
package share

import (
	"strings"

	"github.com/Ref-Hub/refhub-cli/internal/api"
)

// Role is the effective permission level on a collection
type Role int

const (
	// RoleNone means the user has no access; the client should not
	// have fetched the collection at all
	RoleNone Role = iota
	// RoleViewer may browse references
	RoleViewer
	// RoleEditor may add and edit references
	RoleEditor
	// RoleOwner created the collection and fully controls it
	RoleOwner
)

// String returns the wire/display name of the role
func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleEditor:
		return "editor"
	case RoleViewer:
		return "viewer"
	default:
		return "none"
	}
}

// ParseRole maps a wire role name onto a Role
func ParseRole(s string) Role {
	switch strings.ToLower(s) {
	case "owner":
		return RoleOwner
	case "editor":
		return RoleEditor
	case "viewer":
		return RoleViewer
	default:
		return RoleNone
	}
}

// Resolve computes the session user's role on a collection. Never
// persisted; recomputed on every fetch.
func Resolve(sessionEmail string, collection *api.Collection) Role {
	if collection == nil || sessionEmail == "" {
		return RoleNone
	}

	if strings.EqualFold(sessionEmail, collection.CreatorEmail) {
		return RoleOwner
	}

	for _, su := range collection.SharedUsers {
		if strings.EqualFold(sessionEmail, su.Email) {
			return ParseRole(su.Role)
		}
	}

	return RoleNone
}

// ResolveSharing computes the role from a sharing payload rather than
// a full collection.
func ResolveSharing(sessionEmail string, state *api.SharingState) Role {
	if state == nil {
		return RoleNone
	}
	return Resolve(sessionEmail, &api.Collection{
		CreatorEmail: state.CreatorEmail,
		SharedUsers:  state.SharedUsers,
	})
}

// Action is a role-gated UI affordance
type Action int

const (
	// ActionView browses the collection and its references
	ActionView Action = iota
	// ActionEditRefs creates, updates, or deletes references
	ActionEditRefs
	// ActionRename renames the collection
	ActionRename
	// ActionDelete deletes the collection
	ActionDelete
	// ActionShare manages collaborators
	ActionShare
	// ActionLeave removes the user's own membership
	ActionLeave
)

// Can reports whether the role allows the action
func (r Role) Can(a Action) bool {
	switch a {
	case ActionView:
		return r >= RoleViewer
	case ActionEditRefs:
		return r >= RoleEditor
	case ActionRename, ActionDelete, ActionShare:
		return r == RoleOwner
	case ActionLeave:
		// Owners cannot leave their own collection.
		return r == RoleViewer || r == RoleEditor
	default:
		return false
	}
}
