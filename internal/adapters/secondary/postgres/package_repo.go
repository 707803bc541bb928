package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shellos-packages/internal/core/domain"
	ports "shellos-packages/internal/core/ports/output"
)

type packageRepo struct {
	pool *pgxpool.Pool
}

func NewPackageRepository(pool *pgxpool.Pool) ports.PackageRepository {
	return &packageRepo{pool: pool}
}

// Create inserts the record in one atomic write. The store assigns id and
// upload_time; both are returned so the caller can hand back the full record.
func (r *packageRepo) Create(ctx context.Context, record *domain.PackageRecord) (uuid.UUID, error) {
	query := `
		INSERT INTO package_record
			(name, display_name, description, version, file_name, file_url, uploader_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, upload_time
	`
	err := r.pool.QueryRow(ctx, query,
		record.Name, record.DisplayName, record.Description,
		record.Version, record.FileName, record.FileURL, string(record.UploaderID),
	).Scan(&record.ID, &record.UploadTime)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, domain.ErrRecordConflict
		}
		return uuid.Nil, fmt.Errorf("create package record: %w", err)
	}
	return record.ID, nil
}

func (r *packageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PackageRecord, error) {
	query := `
		SELECT id, name, display_name, description, version,
			   file_name, file_url, uploader_id, upload_time
		FROM package_record
		WHERE id = $1
	`
	record, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get package record by id: %w", err)
	}
	return record, nil
}

// ListAll returns every record with no ORDER BY clause: ordering is
// deliberately left to the consumer.
func (r *packageRepo) ListAll(ctx context.Context) ([]*domain.PackageRecord, error) {
	query := `
		SELECT id, name, display_name, description, version,
			   file_name, file_url, uploader_id, upload_time
		FROM package_record
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list package records: %w", err)
	}
	defer rows.Close()

	records := []*domain.PackageRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list package records: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.PackageRecord, error) {
	var record domain.PackageRecord
	var uploaderID string
	err := row.Scan(
		&record.ID, &record.Name, &record.DisplayName, &record.Description,
		&record.Version, &record.FileName, &record.FileURL,
		&uploaderID, &record.UploadTime,
	)
	if err != nil {
		return nil, err
	}
	record.UploaderID = domain.Identity(uploaderID)
	return &record, nil
}
