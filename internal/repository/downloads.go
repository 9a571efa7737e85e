// internal/repository/downloads.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type DownloadRepository struct {
	db *sql.DB
}

func NewDownloadRepository(db *sql.DB) *DownloadRepository {
	return &DownloadRepository{db: db}
}

// Record logs one lead magnet download. email may be empty for
// untokened downloads.
func (r *DownloadRepository) Record(ctx context.Context, email, ip, userAgent string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lead_magnet_downloads (email, ip_address, user_agent)
		VALUES ($1, $2, $3)
	`, nullString(email), nullString(ip), nullString(userAgent))
	if err != nil {
		return fmt.Errorf("record download: %w", err)
	}
	return nil
}

// Counts returns all-time downloads and distinct identified downloaders.
func (r *DownloadRepository) Counts(ctx context.Context) (total, unique int, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT email) FROM lead_magnet_downloads
	`).Scan(&total, &unique)
	if err != nil {
		return 0, 0, fmt.Errorf("download counts: %w", err)
	}
	return total, unique, nil
}
