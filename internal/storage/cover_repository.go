package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bookforge/cover-service/internal/model"
)

// ErrNotFound is returned when a cover doesn't exist in the database.
// Callers check with errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("cover not found")

// CoverRepository is the persistence interface for the artifact cache
// index. Only the interface is exported; the SQLite implementation stays
// private so tests can substitute their own.
type CoverRepository interface {
	GetByDigest(ctx context.Context, digest string) (*model.Cover, error)
	Create(ctx context.Context, cover *model.Cover) error
	SetReady(ctx context.Context, digest, format string, byteSize int64, warning string) error
	SetFailed(ctx context.Context, digest, errMsg string) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.CoverStatus) (int64, error)
	CountByClass(ctx context.Context, class model.CoverClass) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]model.Cover, error)
}

type sqliteCoverRepository struct {
	db *sqlx.DB
}

// NewCoverRepository creates a new SQLite-backed CoverRepository.
func NewCoverRepository(db *sqlx.DB) CoverRepository {
	return &sqliteCoverRepository{db: db}
}

func (r *sqliteCoverRepository) GetByDigest(ctx context.Context, digest string) (*model.Cover, error) {
	var cover model.Cover
	err := r.db.GetContext(ctx, &cover, "SELECT * FROM covers WHERE digest = ?", digest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting cover by digest %s: %w", digest, err)
	}
	return &cover, nil
}

func (r *sqliteCoverRepository) Create(ctx context.Context, cover *model.Cover) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO covers (digest, class, title, author, format, byte_size, status)
		VALUES (:digest, :class, :title, :author, :format, :byte_size, :status)
	`, cover)
	if err != nil {
		return fmt.Errorf("creating cover: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	cover.ID = id
	return nil
}

// SetReady marks a cover as rendered and records the artifact facts the
// download path needs. An empty warning clears the column.
func (r *sqliteCoverRepository) SetReady(ctx context.Context, digest, format string, byteSize int64, warning string) error {
	var warn interface{}
	if warning != "" {
		warn = warning
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE covers SET
			status = ?,
			format = ?,
			byte_size = ?,
			warning = ?,
			error_message = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE digest = ?
	`, model.StatusReady, format, byteSize, warn, digest)
	if err != nil {
		return fmt.Errorf("marking cover %s ready: %w", digest, err)
	}
	return nil
}

func (r *sqliteCoverRepository) SetFailed(ctx context.Context, digest, errMsg string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE covers SET status = ?, error_message = ?, updated_at = CURRENT_TIMESTAMP WHERE digest = ?",
		model.StatusFailed, errMsg, digest)
	if err != nil {
		return fmt.Errorf("marking cover %s failed: %w", digest, err)
	}
	return nil
}

func (r *sqliteCoverRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM covers")
	return count, err
}

func (r *sqliteCoverRepository) CountByStatus(ctx context.Context, status model.CoverStatus) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM covers WHERE status = ?", status)
	return count, err
}

func (r *sqliteCoverRepository) CountByClass(ctx context.Context, class model.CoverClass) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM covers WHERE class = ?", class)
	return count, err
}

func (r *sqliteCoverRepository) ListRecent(ctx context.Context, limit int) ([]model.Cover, error) {
	var covers []model.Cover
	err := r.db.SelectContext(ctx, &covers,
		"SELECT * FROM covers ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent covers: %w", err)
	}
	return covers, nil
}
