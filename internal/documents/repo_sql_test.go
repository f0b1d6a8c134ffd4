package documents

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"pitchdeck-backend/internal/shared/storage/db"
)

func newMockRepo(t *testing.T) (*SQLRepo, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewSQLRepo(sqlx.NewDb(mockDB, db.DriverPostgres)), mock
}

func TestSQLRepoCreateUsesDollarPlaceholders(t *testing.T) {
	repo, mock := newMockRepo(t)
	doc := Document{
		ID:         "doc-1",
		FileName:   "deck.pdf",
		DocType:    "pdf",
		Text:       "HelloWorld",
		UploadTime: time.Now().UTC(),
		StorageKey: "decks/doc-1/deck.pdf",
		SizeBytes:  42,
	}

	mock.ExpectExec(`INSERT INTO documents \(.*\) VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\)`).
		WithArgs(doc.ID, doc.FileName, "pdf", doc.Text, sqlmock.AnyArg(), StatusUploaded, doc.StorageKey, doc.SizeBytes).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestSQLRepoUpdateStatusOnlyLeavesResult(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE documents SET analysis_status = \$1 WHERE id = \$2`).
		WithArgs(StatusError, "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateStatusAndResult(context.Background(), "doc-1", StatusError, nil); err != nil {
		t.Fatalf("UpdateStatusAndResult: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestSQLRepoUpdateWithResultSingleStatement(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE documents\s+SET analysis_status = \$1,\s+analysis_result = \$2,\s+schema_version = \$3,\s+analyzed_at = \$4\s+WHERE id = \$5`).
		WithArgs(StatusAnalyzed, `{"Overall Score":8.5}`, "v2", at, "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatusAndResult(context.Background(), "doc-1", StatusAnalyzed, &ResultUpdate{
		Result:        json.RawMessage(`{"Overall Score":8.5}`),
		SchemaVersion: "v2",
		AnalyzedAt:    at,
	})
	if err != nil {
		t.Fatalf("UpdateStatusAndResult: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestSQLRepoUpdateMissingRowIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`UPDATE documents SET analysis_status`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatusAndResult(context.Background(), "missing", StatusError, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT .* FROM documents WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLRepoSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Connect(ctx, "sqlite:"+filepath.Join(t.TempDir(), "decks.db"), db.DefaultServerOptions())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := db.RunMigrations(ctx, conn); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	repo := NewSQLRepo(conn)

	uploaded := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	for i, id := range []string{"first", "second"} {
		doc := Document{ID: id, FileName: id + ".pptx", DocType: "pptx", Text: "slide text", UploadTime: uploaded.Add(time.Duration(i) * time.Minute)}
		if err := repo.Create(ctx, doc); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	got, err := repo.GetByID(ctx, "first")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusUploaded || got.Result != nil || got.AnalyzedAt != nil {
		t.Fatalf("unexpected fresh document: %+v", got)
	}
	if !got.UploadTime.Equal(uploaded) {
		t.Fatalf("upload time mismatch: %v", got.UploadTime)
	}

	result := &ResultUpdate{Result: json.RawMessage(`{"Company Name":"Acme"}`), SchemaVersion: "v2", AnalyzedAt: uploaded.Add(time.Hour)}
	for _, id := range []string{"first", "second"} {
		if err := repo.UpdateStatusAndResult(ctx, id, StatusAnalyzed, result); err != nil {
			t.Fatalf("UpdateStatusAndResult %s: %v", id, err)
		}
	}
	if err := repo.UpdateStatusAndResult(ctx, "first", StatusError, nil); err != nil {
		t.Fatalf("UpdateStatusAndResult error: %v", err)
	}

	failed, err := repo.GetByID(ctx, "first")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if failed.Status != StatusError || string(failed.Result) != `{"Company Name":"Acme"}` || failed.SchemaVersion != "v2" {
		t.Fatalf("expected prior result kept under error status: %+v", failed)
	}

	analyzed, err := repo.ListByStatus(ctx, StatusAnalyzed)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(analyzed) != 1 || analyzed[0].ID != "second" {
		t.Fatalf("unexpected analyzed list: %+v", analyzed)
	}
}
