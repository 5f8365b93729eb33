// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-zk-vault/internal/logger"
	"github.com/MKhiriev/go-zk-vault/models"
)

// documentRepository is the SQL-backed implementation of
// [DocumentRepository]. It works against both SQLite and PostgreSQL; the
// dialect differences are absorbed by the squirrel builder held in [DB].
//
// All methods obtain a context-scoped logger via [logger.FromContext].
type documentRepository struct {
	*DB
	logger *logger.Logger
}

// NewDocumentRepository constructs a [DocumentRepository] backed by db.
func NewDocumentRepository(db *DB, logger *logger.Logger) DocumentRepository {
	return &documentRepository{
		DB:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (models.DocumentRecord, error) {
	var doc models.DocumentRecord
	err := row.Scan(
		&doc.UserID,
		&doc.DocID,
		&doc.Version,
		&doc.Ciphertext,
		&doc.IV,
		&doc.WrappedDEK,
		&doc.WrappedDEKIV,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	return doc, err
}

// CreateDocument implements [DocumentRepository].
func (d *documentRepository) CreateDocument(ctx context.Context, doc models.DocumentRecord) error {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	query, args, err := d.builder.Insert(documentsTable).
		Columns(documentColumns...).
		Values(doc.UserID, doc.DocID, doc.Version, doc.Ciphertext, doc.IV, doc.WrappedDEK, doc.WrappedDEKIV, now, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = d.withRetry(ctx, func(ctx context.Context) error {
		_, execErr := d.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		if d.errorClassificator.IsUniqueViolation(err) {
			log.Warn().
				Str("func", "documentRepository.CreateDocument").
				Str("doc_id", doc.DocID).
				Msg("document already exists")
			return ErrDocumentExists
		}
		log.Err(err).
			Str("func", "documentRepository.CreateDocument").
			Str("doc_id", doc.DocID).
			Msg("failed to insert document")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Debug().
		Str("func", "documentRepository.CreateDocument").
		Str("doc_id", doc.DocID).
		Int64("version", doc.Version).
		Msg("document created")
	return nil
}

// GetDocument implements [DocumentRepository].
func (d *documentRepository) GetDocument(ctx context.Context, userID, docID string) (models.DocumentRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := d.builder.Select(documentColumns...).
		From(documentsTable).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"doc_id": docID}).
		ToSql()
	if err != nil {
		return models.DocumentRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	doc, err := scanDocument(d.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.DocumentRecord{}, ErrDocumentNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "documentRepository.GetDocument").
			Str("doc_id", docID).
			Msg("failed to scan document row")
		return models.DocumentRecord{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return doc, nil
}

// GetAllDocuments implements [DocumentRepository].
func (d *documentRepository) GetAllDocuments(ctx context.Context, userID string) ([]models.DocumentRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := d.builder.Select(documentColumns...).
		From(documentsTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("doc_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "documentRepository.GetAllDocuments").
			Msg("failed to execute query for getting all documents")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var docs []models.DocumentRecord
	for rows.Next() {
		doc, scanErr := scanDocument(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "documentRepository.GetAllDocuments").
				Msg("failed to scan document row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		docs = append(docs, doc)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "documentRepository.GetAllDocuments").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return docs, nil
}

// ListDocuments implements [DocumentRepository].
func (d *documentRepository) ListDocuments(ctx context.Context, userID string) ([]models.DocumentInfo, error) {
	log := logger.FromContext(ctx)

	query, args, err := d.builder.Select(documentInfoColumns...).
		From(documentsTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("doc_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "documentRepository.ListDocuments").
			Msg("failed to execute query for listing documents")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	infos := make([]models.DocumentInfo, 0)
	for rows.Next() {
		var info models.DocumentInfo
		if scanErr := rows.Scan(&info.DocID, &info.Version, &info.CiphertextSize, &info.CreatedAt, &info.UpdatedAt); scanErr != nil {
			log.Err(scanErr).
				Str("func", "documentRepository.ListDocuments").
				Msg("failed to scan document info row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		infos = append(infos, info)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return infos, nil
}

// UpdateDocument implements [DocumentRepository].
func (d *documentRepository) UpdateDocument(ctx context.Context, doc models.DocumentRecord) error {
	log := logger.FromContext(ctx)

	query, args, err := d.builder.Update(documentsTable).
		Set("version", doc.Version).
		Set("ciphertext", doc.Ciphertext).
		Set("iv", doc.IV).
		Set("wrapped_dek", doc.WrappedDEK).
		Set("wrapped_dek_iv", doc.WrappedDEKIV).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"user_id": doc.UserID}).
		Where(sq.Eq{"doc_id": doc.DocID}).
		Where(sq.Eq{"version": doc.Version - 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var affected int64
	err = d.withRetry(ctx, func(ctx context.Context) error {
		res, execErr := d.ExecContext(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		log.Err(err).
			Str("func", "documentRepository.UpdateDocument").
			Str("doc_id", doc.DocID).
			Msg("failed to update document")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if affected == 0 {
		current, getErr := d.GetDocument(ctx, doc.UserID, doc.DocID)
		if getErr != nil {
			return getErr
		}
		log.Warn().
			Str("func", "documentRepository.UpdateDocument").
			Str("doc_id", doc.DocID).
			Int64("db_version", current.Version).
			Int64("provided_version", doc.Version).
			Msg("optimistic lock failed: version mismatch on update")
		return fmt.Errorf("%w: stored version %d, new version %d", ErrVersionConflict, current.Version, doc.Version)
	}

	return nil
}

// DeleteDocument implements [DocumentRepository].
func (d *documentRepository) DeleteDocument(ctx context.Context, userID, docID string) error {
	log := logger.FromContext(ctx)

	query, args, err := d.builder.Delete(documentsTable).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"doc_id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var affected int64
	err = d.withRetry(ctx, func(ctx context.Context) error {
		res, execErr := d.ExecContext(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		log.Err(err).
			Str("func", "documentRepository.DeleteDocument").
			Str("doc_id", docID).
			Msg("failed to delete document")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrDocumentNotFound
	}

	return nil
}
