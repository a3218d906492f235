package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// SharingState is the sharing metadata of one collection
type SharingState struct {
	CollectionID string       `json:"collectionId"`
	IsShared     bool         `json:"isShared"`
	CreatorEmail string       `json:"creatorEmail"`
	SharedUsers  []SharedUser `json:"sharedUsers"`
}

func sharingPath(collectionID string) string {
	return fmt.Sprintf("/api/collections/%s/sharing", url.PathEscape(collectionID))
}

// GetSharing retrieves the sharing state of a collection
func (c *Client) GetSharing(ctx context.Context, collectionID string) (*SharingState, error) {
	var state SharingState
	if err := c.doJSON(ctx, http.MethodGet, sharingPath(collectionID), nil, &state, reqOpts{}); err != nil {
		return nil, err
	}

	return &state, nil
}

// InviteUser adds a collaborator with the given role
func (c *Client) InviteUser(ctx context.Context, collectionID, email, role string) (*SharingState, error) {
	req := map[string]string{
		"email": email,
		"role":  role,
	}

	var state SharingState
	if err := c.doJSON(ctx, http.MethodPatch, sharingPath(collectionID), req, &state, reqOpts{}); err != nil {
		return nil, err
	}

	return &state, nil
}

// ChangeRole updates an existing collaborator's role
func (c *Client) ChangeRole(ctx context.Context, collectionID, email, role string) (*SharingState, error) {
	// Same PATCH surface as InviteUser; the backend upserts the entry.
	return c.InviteUser(ctx, collectionID, email, role)
}

// RemoveUser removes one collaborator from a collection
func (c *Client) RemoveUser(ctx context.Context, collectionID, email string) (*SharingState, error) {
	req := map[string]string{
		"email": email,
	}

	var state SharingState
	if err := c.doJSON(ctx, http.MethodDelete, sharingPath(collectionID), req, &state, reqOpts{}); err != nil {
		return nil, err
	}

	return &state, nil
}

// SetPrivate removes all collaborators, making the collection private.
// Idempotent: calling it on an already-private collection yields the
// same state as calling it once.
func (c *Client) SetPrivate(ctx context.Context, collectionID string) (*SharingState, error) {
	req := map[string]bool{
		"private": true,
	}

	var state SharingState
	if err := c.doJSON(ctx, http.MethodPatch, sharingPath(collectionID), req, &state, reqOpts{}); err != nil {
		return nil, err
	}

	return &state, nil
}
