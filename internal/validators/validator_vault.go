package validators

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MKhiriev/go-zk-vault/models"
)

const (
	FieldUserID   = "user_id"
	FieldDocID    = "doc_id"
	FieldVersion  = "version"
	FieldPassword = "password"
)

// MaxIDLength bounds user and document identifiers in bytes.
const MaxIDLength = 255

// VaultValidator validates [models.Credentials] and [models.DocumentRef].
type VaultValidator struct {
}

func NewVaultValidator() Validator {
	return &VaultValidator{}
}

func (v *VaultValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Credentials:
		return v.validateCredentials(value, fields...)
	case *models.Credentials:
		return v.validateCredentials(*value, fields...)

	case models.DocumentRef:
		return v.validateDocumentRef(value, fields...)
	case *models.DocumentRef:
		return v.validateDocumentRef(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *VaultValidator) validateCredentials(c models.Credentials, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldUserID, FieldPassword}
	}

	for _, f := range fields {
		switch f {
		case FieldUserID:
			if !isValidID(c.UserID) {
				return ErrInvalidUserID
			}
		case FieldPassword:
			if c.Password == "" {
				return ErrEmptyPassword
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *VaultValidator) validateDocumentRef(ref models.DocumentRef, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldUserID, FieldDocID}
	}

	for _, f := range fields {
		switch f {
		case FieldUserID:
			if !isValidID(ref.UserID) {
				return ErrInvalidUserID
			}
		case FieldDocID:
			if !isValidID(ref.DocID) {
				return ErrInvalidDocID
			}
		case FieldVersion:
			if ref.Version < 1 {
				return ErrInvalidVersion
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// isValidID reports whether id can be used in the "{userId}:{docId}:{version}"
// associated data: non-empty, bounded, valid UTF-8, no ':' and no control
// characters.
func isValidID(id string) bool {
	if id == "" || len(id) > MaxIDLength || !utf8.ValidString(id) {
		return false
	}
	if strings.ContainsRune(id, ':') {
		return false
	}
	return strings.IndexFunc(id, unicode.IsControl) < 0
}
