package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrDocumentNotFound is returned when no document matches
	// (user_id, doc_id).
	ErrDocumentNotFound = errors.New("document was not found")

	// ErrDocumentExists is returned when creating a document whose
	// (user_id, doc_id) is already taken.
	ErrDocumentExists = errors.New("document already exists")

	// ErrVersionConflict is returned when an optimistic-locking check fails:
	// the stored version is not the one the caller based its write on,
	// meaning the document was modified concurrently.
	ErrVersionConflict = errors.New("document version conflict occurred")

	// ErrEnrollmentNotFound is returned when the user has not enrolled yet.
	ErrEnrollmentNotFound = errors.New("enrollment was not found")

	// ErrEnrollmentExists is returned when enrolling a user twice.
	ErrEnrollmentExists = errors.New("enrollment already exists")

	// ErrUnsupportedDSN is returned when the DSN names no known database.
	ErrUnsupportedDSN = errors.New("unsupported database dsn")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
