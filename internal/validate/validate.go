// Package validate holds the client-side field checks that must block
// a request before it reaches the network.
package validate

import (
	"fmt"
	"net/mail"
	"net/url"
	"path/filepath"
	"strings"
	"unicode"

	apperrors "github.com/Ref-Hub/refhub-cli/internal/errors"
)

// MaxUploadSize is the upload limit in bytes. Inclusive: a file of
// exactly this size is accepted, the first byte beyond is rejected.
const MaxUploadSize int64 = 20 << 20

// Required checks that a field is non-empty
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.New(apperrors.ErrCodeFieldRequired, fmt.Sprintf("%s is required", field))
	}
	return nil
}

// Email checks the address format
func Email(address string) error {
	if err := Required("email", address); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(address); err != nil {
		return apperrors.New(apperrors.ErrCodeEmailFormat, fmt.Sprintf("invalid email address: %s", address))
	}
	return nil
}

// Password checks the password rules: 8 to 64 characters with at
// least one letter and one digit.
func Password(password string) error {
	if len(password) < 8 || len(password) > 64 {
		return apperrors.New(apperrors.ErrCodePasswordFormat, "password must be between 8 and 64 characters")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperrors.New(apperrors.ErrCodePasswordFormat, "password must contain at least one letter and one digit")
	}

	return nil
}

// Link checks that a saved link is an absolute http(s) URL
func Link(raw string) error {
	if err := Required("link", raw); err != nil {
		return err
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.New(apperrors.ErrCodeFieldRequired, fmt.Sprintf("invalid link: %s", raw))
	}
	return nil
}

// UploadSize checks a file against the upload limit
func UploadSize(path string, size int64) error {
	if size > MaxUploadSize {
		return apperrors.NewFileTooLargeError(path, size, MaxUploadSize)
	}
	return nil
}

// Kind is the reference kind derived from an upload's filename
type Kind string

// Reference kinds
const (
	KindLink  Kind = "link"
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
	KindFile  Kind = "file"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

// UploadKind classifies an upload by filename. Anything that is not
// an image or a PDF is a generic file; only a missing name fails.
func UploadKind(filename string) (Kind, error) {
	if strings.TrimSpace(filename) == "" {
		return "", apperrors.New(apperrors.ErrCodeUploadKindUnknown, "upload has no filename")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case imageExtensions[ext]:
		return KindImage, nil
	case ext == ".pdf":
		return KindPDF, nil
	default:
		return KindFile, nil
	}
}
