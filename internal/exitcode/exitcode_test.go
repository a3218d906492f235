package exitcode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/Ref-Hub/refhub-cli/internal/errors"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"not logged in", apperrors.NewNotAuthenticatedError(), AuthError},
		{"session expired", apperrors.NewSessionExpiredError(), AuthError},
		{"refresh rejected", apperrors.NewRefreshFailedError(errors.New("refresh token rejected")), AuthError},
		{"not found", apperrors.NewNotFoundError("collection"), NotFound},
		{"file too large", apperrors.NewFileTooLargeError("x.pdf", 21<<20, 20<<20), ValidationError},
		{"unsupported file", errors.New("unsupported file type (status 415)"), ValidationError},
		{"network", apperrors.NewNetworkError(errors.New("connection refused")), NetworkError},
		{"timeout", errors.New("request timeout"), NetworkError},
		{"unknown command", errors.New(`unknown command "frobnicate"`), UsageError},
		{"anything else", errors.New("boom"), GeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineExitCode(tt.err))
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	assert.Equal(t, "Success", GetExitCodeDescription(Success))
	assert.Equal(t, "Cancelled by user", GetExitCodeDescription(Interrupted))
	assert.Equal(t, "Unknown error", GetExitCodeDescription(42))
}
