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

// enrollmentRepository is the SQL-backed implementation of
// [EnrollmentRepository].
type enrollmentRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewEnrollmentRepository constructs an [EnrollmentRepository] backed by the
// provided database connection and logger.
func NewEnrollmentRepository(db *DB, logger *logger.Logger) EnrollmentRepository {
	logger.Debug().Msg("creating enrollment repository")
	return &enrollmentRepository{
		db:     db,
		logger: logger,
	}
}

// CreateEnrollment implements [EnrollmentRepository].
//
// Error handling:
//   - unique violation on user_id → [ErrEnrollmentExists];
//   - any other driver-level error → wrapped [ErrExecutingStatement].
func (r *enrollmentRepository) CreateEnrollment(ctx context.Context, e models.Enrollment) error {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	query, args, err := r.db.builder.Insert(enrollmentsTable).
		Columns(enrollmentColumns...).
		Values(
			e.UserID,
			e.KDFAlgorithm,
			e.KDFIterations,
			e.KDFMemoryKiB,
			e.KDFThreads,
			e.Salt,
			e.VerifierHash,
			e.RecoveryArtifact,
			e.RecoveryIV,
			now,
			now,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = r.db.withRetry(ctx, func(ctx context.Context) error {
		_, execErr := r.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		if r.db.errorClassificator.IsUniqueViolation(err) {
			log.Warn().Str("func", "*enrollmentRepository.CreateEnrollment").Msg("user already enrolled")
			return ErrEnrollmentExists
		}
		log.Err(err).Str("func", "*enrollmentRepository.CreateEnrollment").Msg("error inserting enrollment")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// GetEnrollment implements [EnrollmentRepository].
func (r *enrollmentRepository) GetEnrollment(ctx context.Context, userID string) (models.Enrollment, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.Select(enrollmentColumns...).
		From(enrollmentsTable).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return models.Enrollment{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var e models.Enrollment
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&e.UserID,
		&e.KDFAlgorithm,
		&e.KDFIterations,
		&e.KDFMemoryKiB,
		&e.KDFThreads,
		&e.Salt,
		&e.VerifierHash,
		&e.RecoveryArtifact,
		&e.RecoveryIV,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Enrollment{}, ErrEnrollmentNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*enrollmentRepository.GetEnrollment").Msg("error: scanning error")
		return models.Enrollment{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return e, nil
}

// RotateKeys implements [EnrollmentRepository].
//
// The enrollment row and every document's wrapped key are replaced in a
// single transaction, so a crash midway leaves the old password working for
// all documents. A document whose version moved since it was read, or a
// document set that no longer matches docs, aborts the whole rotation with
// [ErrVersionConflict].
func (r *enrollmentRepository) RotateKeys(ctx context.Context, e models.Enrollment, docs []models.DocumentRecord) error {
	log := logger.FromContext(ctx)
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "*enrollmentRepository.RotateKeys").
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	query, args, err := r.db.builder.Update(enrollmentsTable).
		Set("kdf_algorithm", e.KDFAlgorithm).
		Set("kdf_iterations", e.KDFIterations).
		Set("kdf_memory_kib", e.KDFMemoryKiB).
		Set("kdf_threads", e.KDFThreads).
		Set("salt", e.Salt).
		Set("verifier_hash", e.VerifierHash).
		Set("recovery_artifact", e.RecoveryArtifact).
		Set("recovery_iv", e.RecoveryIV).
		Set("updated_at", now).
		Where(sq.Eq{"user_id": e.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*enrollmentRepository.RotateKeys").Msg("failed to update enrollment")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEnrollmentNotFound
	}

	// the enrollment update holds the write lock from here on, so the set
	// read below is the one being committed
	stored, err := r.documentIDs(ctx, tx, e.UserID)
	if err != nil {
		return err
	}
	if missing := unrotated(stored, docs); len(missing) > 0 || len(stored) != len(docs) {
		log.Error().
			Str("func", "*enrollmentRepository.RotateKeys").
			Int("stored_count", len(stored)).
			Int("provided_count", len(docs)).
			Strs("unrotated_doc_ids", missing).
			Msg("document set changed during key rotation")
		return fmt.Errorf("%w: %d stored documents, %d re-wrapped", ErrVersionConflict, len(stored), len(docs))
	}

	for idx, doc := range docs {
		query, args, err := r.db.builder.Update(documentsTable).
			Set("wrapped_dek", doc.WrappedDEK).
			Set("wrapped_dek_iv", doc.WrappedDEKIV).
			Set("updated_at", now).
			Where(sq.Eq{"user_id": e.UserID}).
			Where(sq.Eq{"doc_id": doc.DocID}).
			Where(sq.Eq{"version": doc.Version}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			log.Err(err).
				Str("func", "*enrollmentRepository.RotateKeys").
				Int("iteration", idx+1).
				Str("doc_id", doc.DocID).
				Msg("failed to rewrap document key")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			log.Error().
				Str("func", "*enrollmentRepository.RotateKeys").
				Str("doc_id", doc.DocID).
				Int64("provided_version", doc.Version).
				Msg("optimistic lock failed: document changed during key rotation")
			return fmt.Errorf("rotate key of document %s: %w", doc.DocID, ErrVersionConflict)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "*enrollmentRepository.RotateKeys").
			Int("documents_count", len(docs)).
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	log.Info().
		Str("func", "*enrollmentRepository.RotateKeys").
		Int("documents_count", len(docs)).
		Msg("keys rotated")
	return nil
}

// UpdateRecoveryArtifact implements [EnrollmentRepository].
func (r *enrollmentRepository) UpdateRecoveryArtifact(ctx context.Context, userID string, artifact, iv []byte) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.Update(enrollmentsTable).
		Set("recovery_artifact", artifact).
		Set("recovery_iv", iv).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var affected int64
	err = r.db.withRetry(ctx, func(ctx context.Context) error {
		res, execErr := r.db.ExecContext(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		log.Err(err).Str("func", "*enrollmentRepository.UpdateRecoveryArtifact").Msg("failed to update recovery artifact")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrEnrollmentNotFound
	}

	return nil
}

// documentIDs lists the ids of every document of userID inside tx.
func (r *enrollmentRepository) documentIDs(ctx context.Context, tx *sql.Tx, userID string) ([]string, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.Select("doc_id").
		From(documentsTable).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*enrollmentRepository.documentIDs").Msg("failed to list document ids")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return ids, nil
}

// unrotated returns the stored ids that have no entry in docs.
func unrotated(stored []string, docs []models.DocumentRecord) []string {
	given := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		given[doc.DocID] = struct{}{}
	}

	var missing []string
	for _, id := range stored {
		if _, ok := given[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
