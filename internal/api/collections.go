package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Collection represents a named grouping of references
type Collection struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	CreatorEmail string       `json:"creatorEmail"`
	SharedUsers  []SharedUser `json:"sharedUsers,omitempty"`
	IsShared     bool         `json:"isShared"`
	RefCount     int          `json:"refCount"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// SharedUser is one collaborator entry on a shared collection
type SharedUser struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ListParams are the query parameters common to all list endpoints
type ListParams struct {
	Page     int
	PageSize int
	Sort     string
	Search   string
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

func (p ListParams) query() string {
	q := p.values()
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListCollectionsResponse represents a paginated list of collections
type ListCollectionsResponse struct {
	Collections []Collection `json:"collections"`
	TotalCount  int          `json:"totalCount"`
	Page        int          `json:"page"`
	PageSize    int          `json:"pageSize"`
}

// ListCollections retrieves the collections visible to the
// authenticated user.
func (c *Client) ListCollections(ctx context.Context, params ListParams) (*ListCollectionsResponse, error) {
	var resp ListCollectionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/collections"+params.query(), nil, &resp, reqOpts{}); err != nil {
		return nil, err
	}

	return &resp, nil
}

// GetCollection retrieves a collection by ID
func (c *Client) GetCollection(ctx context.Context, collectionID string) (*Collection, error) {
	path := fmt.Sprintf("/api/collections/%s", url.PathEscape(collectionID))

	var collection Collection
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &collection, reqOpts{}); err != nil {
		return nil, err
	}

	return &collection, nil
}

// CreateCollection creates a new collection
func (c *Client) CreateCollection(ctx context.Context, title string) (*Collection, error) {
	req := map[string]string{
		"title": title,
	}

	var collection Collection
	if err := c.doJSON(ctx, http.MethodPost, "/api/collections", req, &collection, reqOpts{}); err != nil {
		return nil, err
	}

	return &collection, nil
}

// RenameCollection changes a collection's title
func (c *Client) RenameCollection(ctx context.Context, collectionID, title string) (*Collection, error) {
	path := fmt.Sprintf("/api/collections/%s", url.PathEscape(collectionID))
	req := map[string]string{
		"title": title,
	}

	var collection Collection
	if err := c.doJSON(ctx, http.MethodPatch, path, req, &collection, reqOpts{}); err != nil {
		return nil, err
	}

	return &collection, nil
}

// DeleteCollections deletes one or more collections by ID
func (c *Client) DeleteCollections(ctx context.Context, collectionIDs []string) error {
	req := map[string][]string{
		"collectionIds": collectionIDs,
	}

	return c.doJSON(ctx, http.MethodDelete, "/api/collections", req, nil, reqOpts{})
}
