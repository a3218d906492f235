package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	apperrors "github.com/Ref-Hub/refhub-cli/internal/errors"
)

//go:embed openapi.yaml
var contractYAML []byte

// LoadContract parses the embedded OpenAPI document describing the
// backend surface this client depends on.
func LoadContract() (*openapi3.T, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(contractYAML)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeAPIContractMismatch, "failed to parse embedded API contract", err)
	}

	if err := doc.Validate(loader.Context); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeAPIContractMismatch, "embedded API contract is invalid", err)
	}

	return doc, nil
}

// CallPaths lists every templated path the client calls, for checking
// against the contract.
func CallPaths() []string {
	return []string{
		"/users/login",
		"/users/token",
		"/users/signup",
		"/users/email",
		"/users/password/reset",
		"/users/password",
		"/api/collections",
		"/api/collections/{collectionId}",
		"/api/collections/{collectionId}/sharing",
		"/api/references",
		"/api/references/{referenceId}",
		"/api/references/download",
		"/api/extensions/add",
	}
}

// CheckContract verifies that every path the client calls exists in
// the embedded contract. Used by `refhub doctor`.
func CheckContract() error {
	doc, err := LoadContract()
	if err != nil {
		return err
	}

	for _, path := range CallPaths() {
		if doc.Paths.Find(path) == nil {
			return apperrors.New(apperrors.ErrCodeAPIContractMismatch,
				fmt.Sprintf("client calls %s but the contract does not declare it", path))
		}
	}

	return nil
}

// Ping checks base-URL reachability. Any HTTP response counts; only a
// transport failure is an error.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.roundTrip(ctx, http.MethodGet, "/", "", nil, "")
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}
