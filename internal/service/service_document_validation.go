package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-zk-vault/internal/validators"
	"github.com/MKhiriev/go-zk-vault/models"
)

// DocumentValidationService rejects identifiers that cannot be bound into
// the "{userId}:{docId}:{version}" associated data before the inner
// service sees them.
type DocumentValidationService struct {
	inner     DocumentService
	validator validators.Validator
}

func NewDocumentValidationService() DocumentServiceWrapper {
	return &DocumentValidationService{
		validator: validators.NewVaultValidator(),
	}
}

func (v *DocumentValidationService) Save(ctx context.Context, userID, docID string, content []byte) (models.DocumentInfo, error) {
	fields := []string{validators.FieldUserID}
	// an empty id asks for a generated one
	if docID != "" {
		fields = append(fields, validators.FieldDocID)
	}
	if err := v.validate(ctx, models.DocumentRef{UserID: userID, DocID: docID}, fields...); err != nil {
		return models.DocumentInfo{}, err
	}
	return v.inner.Save(ctx, userID, docID, content)
}

func (v *DocumentValidationService) Load(ctx context.Context, userID, docID string) (models.Document, error) {
	if err := v.validate(ctx, models.DocumentRef{UserID: userID, DocID: docID}); err != nil {
		return models.Document{}, err
	}
	return v.inner.Load(ctx, userID, docID)
}

func (v *DocumentValidationService) LoadVersion(ctx context.Context, userID, docID string, version int64) (models.Document, error) {
	ref := models.DocumentRef{UserID: userID, DocID: docID, Version: version}
	if err := v.validate(ctx, ref, validators.FieldUserID, validators.FieldDocID, validators.FieldVersion); err != nil {
		return models.Document{}, err
	}
	return v.inner.LoadVersion(ctx, userID, docID, version)
}

func (v *DocumentValidationService) List(ctx context.Context, userID string) ([]models.DocumentInfo, error) {
	if err := v.validate(ctx, models.DocumentRef{UserID: userID}, validators.FieldUserID); err != nil {
		return nil, err
	}
	return v.inner.List(ctx, userID)
}

func (v *DocumentValidationService) Delete(ctx context.Context, userID, docID string) error {
	if err := v.validate(ctx, models.DocumentRef{UserID: userID, DocID: docID}); err != nil {
		return err
	}
	return v.inner.Delete(ctx, userID, docID)
}

func (v *DocumentValidationService) Export(ctx context.Context, userID, docID string) ([]byte, error) {
	if err := v.validate(ctx, models.DocumentRef{UserID: userID, DocID: docID}); err != nil {
		return nil, err
	}
	return v.inner.Export(ctx, userID, docID)
}

func (v *DocumentValidationService) Import(ctx context.Context, userID, docID string, data []byte) (models.DocumentInfo, error) {
	if err := v.validate(ctx, models.DocumentRef{UserID: userID, DocID: docID}); err != nil {
		return models.DocumentInfo{}, err
	}
	if len(data) == 0 {
		return models.DocumentInfo{}, fmt.Errorf("%w: empty document", ErrInvalidDataProvided)
	}
	return v.inner.Import(ctx, userID, docID, data)
}

func (v *DocumentValidationService) Wrap(inner DocumentService) DocumentService {
	v.inner = inner
	return v
}

func (v *DocumentValidationService) validate(ctx context.Context, ref models.DocumentRef, fields ...string) error {
	if err := v.validator.Validate(ctx, ref, fields...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return nil
}
