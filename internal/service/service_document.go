// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-zk-vault/internal/crypto"
	"github.com/MKhiriev/go-zk-vault/internal/logger"
	"github.com/MKhiriev/go-zk-vault/internal/store"
	"github.com/MKhiriev/go-zk-vault/models"
)

// documentService is the concrete implementation of DocumentService. It is
// the only place where plaintext meets the storage layer, and it only ever
// passes ciphertext on.
type documentService struct {
	documents store.DocumentRepository
	keyChain  crypto.KeyChainService
	keys      KeyHolder
	ids       IDGenerator

	logger *logger.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(
	documents store.DocumentRepository,
	keyChain crypto.KeyChainService,
	keys KeyHolder,
	ids IDGenerator,
	logger *logger.Logger,
) DocumentService {
	return &documentService{
		documents: documents,
		keyChain:  keyChain,
		keys:      keys,
		ids:       ids,
		logger:    logger,
	}
}

// Save encrypts content under a fresh DEK bound to (userID, docID, version).
// The version is 1 for a new document and the stored version plus one
// otherwise; storage rejects the write if another writer got there first.
// Timestamps are assigned by storage and left zero in the returned info;
// List reports them.
func (s *documentService) Save(ctx context.Context, userID, docID string, content []byte) (models.DocumentInfo, error) {
	log := logger.FromContext(ctx)

	kek, err := s.keys.GetKEK()
	if err != nil {
		return models.DocumentInfo{}, err
	}

	create := true
	version := int64(1)
	if docID == "" {
		docID = s.ids.Generate()
	} else {
		current, getErr := s.documents.GetDocument(ctx, userID, docID)
		switch {
		case errors.Is(getErr, store.ErrDocumentNotFound):
		case getErr != nil:
			return models.DocumentInfo{}, fmt.Errorf("error loading current document version: %w", getErr)
		default:
			create = false
			version = current.Version + 1
		}
	}

	doc, err := s.keyChain.EncryptDocument(content, kek, crypto.AADContext{UserID: userID, DocID: docID, Version: version})
	if err != nil {
		return models.DocumentInfo{}, fmt.Errorf("error encrypting document: %w", err)
	}

	record := toDocumentRecord(userID, docID, doc)
	if create {
		err = s.documents.CreateDocument(ctx, record)
	} else {
		err = s.documents.UpdateDocument(ctx, record)
	}
	if err != nil {
		log.Err(err).
			Str("func", "documentService.Save").
			Str("doc_id", docID).
			Int64("version", version).
			Msg("failed to store document")
		return models.DocumentInfo{}, fmt.Errorf("error storing document: %w", err)
	}

	log.Debug().
		Str("func", "documentService.Save").
		Str("doc_id", docID).
		Int64("version", version).
		Int("size", len(content)).
		Msg("document saved")

	return toDocumentInfo(record), nil
}

// Load decrypts the stored document at its stored version.
func (s *documentService) Load(ctx context.Context, userID, docID string) (models.Document, error) {
	return s.load(ctx, userID, docID, 0)
}

// LoadVersion decrypts the stored document bound to version. A storage layer
// serving an older or newer blob makes decryption fail with
// crypto.ErrAuthentication.
func (s *documentService) LoadVersion(ctx context.Context, userID, docID string, version int64) (models.Document, error) {
	return s.load(ctx, userID, docID, version)
}

func (s *documentService) load(ctx context.Context, userID, docID string, version int64) (models.Document, error) {
	log := logger.FromContext(ctx)

	kek, err := s.keys.GetKEK()
	if err != nil {
		return models.Document{}, err
	}

	record, err := s.documents.GetDocument(ctx, userID, docID)
	if err != nil {
		return models.Document{}, fmt.Errorf("error loading document: %w", err)
	}

	if version == 0 {
		version = record.Version
	} else if version != record.Version {
		log.Warn().
			Str("func", "documentService.load").
			Str("doc_id", docID).
			Int64("expected_version", version).
			Int64("stored_version", record.Version).
			Msg("stored document version differs from expected")
	}

	content, err := s.keyChain.DecryptDocument(toEncryptedDocument(record), kek, crypto.AADContext{UserID: userID, DocID: docID, Version: version})
	if err != nil {
		log.Error().
			Str("func", "documentService.load").
			Str("doc_id", docID).
			Int64("version", version).
			Msg("document failed to decrypt")
		return models.Document{}, fmt.Errorf("error decrypting document %s: %w", docID, err)
	}

	return models.Document{DocID: docID, Version: version, Content: content}, nil
}

// List returns document metadata without decrypting anything.
func (s *documentService) List(ctx context.Context, userID string) ([]models.DocumentInfo, error) {
	infos, err := s.documents.ListDocuments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	return infos, nil
}

// Delete removes the document.
func (s *documentService) Delete(ctx context.Context, userID, docID string) error {
	if err := s.documents.DeleteDocument(ctx, userID, docID); err != nil {
		return fmt.Errorf("error deleting document: %w", err)
	}
	logger.FromContext(ctx).Info().Str("doc_id", docID).Msg("document deleted")
	return nil
}

// Export returns the stored document in its JSON wire form. Nothing is
// decrypted, so the session may be locked.
func (s *documentService) Export(ctx context.Context, userID, docID string) ([]byte, error) {
	record, err := s.documents.GetDocument(ctx, userID, docID)
	if err != nil {
		return nil, fmt.Errorf("error loading document: %w", err)
	}

	data, err := crypto.MarshalDocument(toEncryptedDocument(record))
	if err != nil {
		return nil, fmt.Errorf("error encoding document: %w", err)
	}
	return data, nil
}

// Import decodes a document in JSON wire form, checks that it decrypts for
// (userID, docID, its version) under the session KEK and stores it as a new
// document. A document exported for another user or id does not import.
func (s *documentService) Import(ctx context.Context, userID, docID string, data []byte) (models.DocumentInfo, error) {
	log := logger.FromContext(ctx)

	kek, err := s.keys.GetKEK()
	if err != nil {
		return models.DocumentInfo{}, err
	}

	doc, err := crypto.UnmarshalDocument(data)
	if err != nil {
		return models.DocumentInfo{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	content, err := s.keyChain.DecryptDocument(doc, kek, crypto.AADContext{UserID: userID, DocID: docID, Version: doc.Version})
	if err != nil {
		log.Warn().
			Str("func", "documentService.Import").
			Str("doc_id", docID).
			Msg("imported document does not decrypt in this vault")
		return models.DocumentInfo{}, fmt.Errorf("error checking imported document: %w", err)
	}
	clear(content)

	record := toDocumentRecord(userID, docID, doc)
	if err = s.documents.CreateDocument(ctx, record); err != nil {
		return models.DocumentInfo{}, fmt.Errorf("error storing imported document: %w", err)
	}

	log.Info().
		Str("func", "documentService.Import").
		Str("doc_id", docID).
		Int64("version", doc.Version).
		Msg("document imported")
	return toDocumentInfo(record), nil
}
