package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pitchdeck-backend/internal/extract"
)

// SQLRepo implements DocumentsRepo over Postgres or SQLite. Queries are
// written with ? placeholders and rebound for the connection's driver.
type SQLRepo struct {
	DB *sqlx.DB
}

// NewSQLRepo constructs a SQLRepo.
func NewSQLRepo(db *sqlx.DB) *SQLRepo {
	return &SQLRepo{DB: db}
}

const documentColumns = `id, file_name, doc_type, text, upload_time, analysis_status, analysis_result, schema_version, analyzed_at, storage_key, size_bytes`

type documentRow struct {
	ID            string         `db:"id"`
	FileName      string         `db:"file_name"`
	DocType       string         `db:"doc_type"`
	Text          string         `db:"text"`
	UploadTime    time.Time      `db:"upload_time"`
	Status        string         `db:"analysis_status"`
	Result        sql.NullString `db:"analysis_result"`
	SchemaVersion sql.NullString `db:"schema_version"`
	AnalyzedAt    sql.NullTime   `db:"analyzed_at"`
	StorageKey    sql.NullString `db:"storage_key"`
	SizeBytes     int64          `db:"size_bytes"`
}

func (row documentRow) toDocument() Document {
	doc := Document{
		ID:         row.ID,
		FileName:   row.FileName,
		DocType:    extract.Format(row.DocType),
		Text:       row.Text,
		UploadTime: row.UploadTime.UTC(),
		Status:     row.Status,
		SizeBytes:  row.SizeBytes,
	}
	if row.Result.Valid && row.Result.String != "" {
		doc.Result = json.RawMessage(row.Result.String)
	}
	if row.SchemaVersion.Valid {
		doc.SchemaVersion = row.SchemaVersion.String
	}
	if row.AnalyzedAt.Valid {
		t := row.AnalyzedAt.Time.UTC()
		doc.AnalyzedAt = &t
	}
	if row.StorageKey.Valid {
		doc.StorageKey = row.StorageKey.String
	}
	return doc
}

// Create inserts a new document.
func (r *SQLRepo) Create(ctx context.Context, doc Document) error {
	query := r.DB.Rebind(`
INSERT INTO documents (
    id,
    file_name,
    doc_type,
    text,
    upload_time,
    analysis_status,
    storage_key,
    size_bytes
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	status := doc.Status
	if status == "" {
		status = StatusUploaded
	}
	var storageKey sql.NullString
	if doc.StorageKey != "" {
		storageKey = sql.NullString{String: doc.StorageKey, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.FileName,
		string(doc.DocType),
		doc.Text,
		doc.UploadTime.UTC(),
		status,
		storageKey,
		doc.SizeBytes,
	)
	return err
}

// GetByID returns a document by ID.
func (r *SQLRepo) GetByID(ctx context.Context, id string) (Document, error) {
	query := r.DB.Rebind(`SELECT ` + documentColumns + ` FROM documents WHERE id = ?`)
	var row documentRow
	if err := r.DB.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return row.toDocument(), nil
}

// UpdateStatusAndResult writes status and result in one statement.
func (r *SQLRepo) UpdateStatusAndResult(ctx context.Context, id, status string, result *ResultUpdate) error {
	if !ValidStatus(status) {
		return fmt.Errorf("%w: status %q", ErrInvalidInput, status)
	}

	var (
		res sql.Result
		err error
	)
	if result == nil {
		query := r.DB.Rebind(`UPDATE documents SET analysis_status = ? WHERE id = ?`)
		res, err = r.DB.ExecContext(ctx, query, status, id)
	} else {
		query := r.DB.Rebind(`
UPDATE documents
SET analysis_status = ?,
    analysis_result = ?,
    schema_version = ?,
    analyzed_at = ?
WHERE id = ?`)
		res, err = r.DB.ExecContext(ctx, query, status, string(result.Result), result.SchemaVersion, result.AnalyzedAt.UTC(), id)
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByStatus returns documents with the given status, newest upload first.
func (r *SQLRepo) ListByStatus(ctx context.Context, status string) ([]Document, error) {
	query := r.DB.Rebind(`SELECT ` + documentColumns + ` FROM documents WHERE analysis_status = ? ORDER BY upload_time DESC, id ASC`)
	var rows []documentRow
	if err := r.DB.SelectContext(ctx, &rows, query, status); err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.toDocument())
	}
	return docs, nil
}
