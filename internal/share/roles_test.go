package share

import (
	"testing"

	"github.com/Ref-Hub/refhub-cli/internal/api"
)

// TestResolve tests role derivation from collection metadata
func TestResolve(t *testing.T) {
	collection := &api.Collection{
		ID:           "c1",
		CreatorEmail: "owner@x.com",
		IsShared:     true,
		SharedUsers: []api.SharedUser{
			{Email: "editor@x.com", Role: "editor"},
			{Email: "viewer@x.com", Role: "viewer"},
		},
	}

	tests := []struct {
		name  string
		email string
		want  Role
	}{
		{"creator is owner", "owner@x.com", RoleOwner},
		{"creator case-insensitive", "OWNER@X.COM", RoleOwner},
		{"shared editor", "editor@x.com", RoleEditor},
		{"shared viewer", "viewer@x.com", RoleViewer},
		{"stranger has none", "other@x.com", RoleNone},
		{"empty session", "", RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.email, collection); got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}

	if got := Resolve("owner@x.com", nil); got != RoleNone {
		t.Errorf("Resolve on nil collection = %v, want RoleNone", got)
	}
}

// TestResolveSharing tests role derivation from a sharing payload
func TestResolveSharing(t *testing.T) {
	state := &api.SharingState{
		CollectionID: "c1",
		IsShared:     true,
		CreatorEmail: "owner@x.com",
		SharedUsers:  []api.SharedUser{{Email: "editor@x.com", Role: "editor"}},
	}

	if got := ResolveSharing("editor@x.com", state); got != RoleEditor {
		t.Errorf("Expected RoleEditor, got %v", got)
	}
	if got := ResolveSharing("owner@x.com", nil); got != RoleNone {
		t.Errorf("Expected RoleNone for nil state, got %v", got)
	}
}

// TestCan tests the action gates per role
func TestCan(t *testing.T) {
	tests := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleOwner, ActionView, true},
		{RoleOwner, ActionEditRefs, true},
		{RoleOwner, ActionRename, true},
		{RoleOwner, ActionDelete, true},
		{RoleOwner, ActionShare, true},
		{RoleOwner, ActionLeave, false},

		{RoleEditor, ActionView, true},
		{RoleEditor, ActionEditRefs, true},
		{RoleEditor, ActionRename, false},
		{RoleEditor, ActionDelete, false},
		{RoleEditor, ActionShare, false},
		{RoleEditor, ActionLeave, true},

		{RoleViewer, ActionView, true},
		{RoleViewer, ActionEditRefs, false},
		{RoleViewer, ActionShare, false},
		{RoleViewer, ActionLeave, true},

		{RoleNone, ActionView, false},
		{RoleNone, ActionLeave, false},
	}

	for _, tt := range tests {
		if got := tt.role.Can(tt.action); got != tt.want {
			t.Errorf("%v.Can(%v) = %v, want %v", tt.role, tt.action, got, tt.want)
		}
	}
}

// TestParseRole tests wire-name mapping
func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"owner", RoleOwner},
		{"Editor", RoleEditor},
		{"VIEWER", RoleViewer},
		{"", RoleNone},
		{"admin", RoleNone},
	}

	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestRoleString tests round-tripping role names
func TestRoleString(t *testing.T) {
	for _, role := range []Role{RoleOwner, RoleEditor, RoleViewer, RoleNone} {
		if got := ParseRole(role.String()); got != role && role != RoleNone {
			t.Errorf("ParseRole(%v.String()) = %v", role, got)
		}
	}
}
