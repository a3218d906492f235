package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/zeebo/blake3"
)

// Reference represents a saved item: a link, image, PDF, or file
type Reference struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collectionId"`
	Title        string    `json:"title"`
	Kind         string    `json:"kind"`
	Keywords     []string  `json:"keywords,omitempty"`
	Memo         string    `json:"memo,omitempty"`
	URL          string    `json:"url,omitempty"`
	FileName     string    `json:"fileName,omitempty"`
	FileSize     int64     `json:"fileSize,omitempty"`
	Checksum     string    `json:"checksum,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListReferencesResponse represents a paginated list of references
type ListReferencesResponse struct {
	References []Reference `json:"references"`
	TotalCount int         `json:"totalCount"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
}

// Upload is one file attached to a reference create/update
type Upload struct {
	Name string
	Data []byte
}

// ReferenceInput is the payload of a reference create or update
type ReferenceInput struct {
	CollectionID string
	Title        string
	Keywords     []string
	Memo         string

	// Links are saved verbatim and returned verbatim on fetch
	Links []string

	// Files are uploaded as multipart parts
	Files []Upload
}

// ListReferences retrieves the references of one collection
func (c *Client) ListReferences(ctx context.Context, collectionID string, params ListParams) (*ListReferencesResponse, error) {
	q := params.values()
	q.Set("collectionId", collectionID)
	path := "/api/references?" + q.Encode()

	var resp ListReferencesResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp, reqOpts{}); err != nil {
		return nil, err
	}

	return &resp, nil
}

// CreateReference creates a reference, uploading any files as a
// multipart payload.
func (c *Client) CreateReference(ctx context.Context, input ReferenceInput) (*Reference, error) {
	return c.sendReference(ctx, http.MethodPost, "/api/references", input)
}

// UpdateReference updates an existing reference
func (c *Client) UpdateReference(ctx context.Context, referenceID string, input ReferenceInput) (*Reference, error) {
	path := fmt.Sprintf("/api/references/%s", url.PathEscape(referenceID))
	return c.sendReference(ctx, http.MethodPatch, path, input)
}

// sendReference builds the multipart body once; a 401 replay reuses
// the identical bytes, boundary included.
func (c *Client) sendReference(ctx context.Context, method, path string, input ReferenceInput) (*Reference, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"collectionId": input.CollectionID,
		"title":        input.Title,
		"memo":         input.Memo,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write multipart field: %w", err)
		}
	}
	for _, kw := range input.Keywords {
		if err := w.WriteField("keywords", kw); err != nil {
			return nil, fmt.Errorf("failed to write multipart field: %w", err)
		}
	}
	for _, link := range input.Links {
		if err := w.WriteField("links", link); err != nil {
			return nil, fmt.Errorf("failed to write multipart field: %w", err)
		}
	}

	for _, f := range input.Files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create multipart part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("failed to write multipart part: %w", err)
		}
		if err := w.WriteField("checksums", Checksum(f.Data)); err != nil {
			return nil, fmt.Errorf("failed to write multipart field: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	// The multipart writer supplies the content type so the boundary
	// survives; never the JSON default.
	resp, err := c.send(ctx, method, path, w.FormDataContentType(), buf.Bytes(), reqOpts{})
	if err != nil {
		return nil, err
	}

	var ref Reference
	if err := parseResponse(resp, &ref); err != nil {
		return nil, err
	}

	return &ref, nil
}

// DeleteReferences deletes one or more references by ID
func (c *Client) DeleteReferences(ctx context.Context, referenceIDs []string) error {
	req := map[string][]string{
		"referenceIds": referenceIDs,
	}

	return c.doJSON(ctx, http.MethodDelete, "/api/references", req, nil, reqOpts{})
}

// DownloadReference streams a reference's file to w and returns the
// filename the backend supplied via Content-Disposition.
func (c *Client) DownloadReference(ctx context.Context, referenceID string, w io.Writer) (string, error) {
	path := fmt.Sprintf("/api/references/download?referenceId=%s", url.QueryEscape(referenceID))

	resp, err := c.send(ctx, http.MethodGet, path, "", nil, reqOpts{})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", normalizeError(resp)
	}

	filename := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			filename = params["filename"]
		}
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("failed to write download: %w", err)
	}

	return filename, nil
}

// AddFromExtension posts a captured page URL, the companion endpoint
// the browser extension uses.
func (c *Client) AddFromExtension(ctx context.Context, pageURL, collectionID string) (*Reference, error) {
	req := map[string]string{
		"url":          pageURL,
		"collectionId": collectionID,
	}

	var ref Reference
	if err := c.doJSON(ctx, http.MethodPost, "/api/extensions/add", req, &ref, reqOpts{}); err != nil {
		return nil, err
	}

	return &ref, nil
}

// Checksum returns the blake3 hex digest the client attaches to each
// uploaded file.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return fmt.Sprintf("%x", sum[:])
}
