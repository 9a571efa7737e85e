// internal/repository/library.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"healing-guide/internal/models"
)

type LibraryRepository struct {
	db *sql.DB
}

func NewLibraryRepository(db *sql.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

// MaxLibraryPage bounds the page number so the offset stays small.
const MaxLibraryPage = 1000

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LibraryQuery filters published library items. Page is 1-based.
type LibraryQuery struct {
	Category string
	Search   string
	Page     int
	Size     int
}

// Search is the Postgres fallback for the library index.
func (r *LibraryRepository) Search(ctx context.Context, q LibraryQuery) (*models.LibraryPage, error) {
	if q.Page < 1 {
		q.Page = 1
	} else if q.Page > MaxLibraryPage {
		q.Page = MaxLibraryPage
	}
	where := []string{"is_published = TRUE"}
	args := []interface{}{}

	if q.Category != "" {
		args = append(args, q.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(q.Search)+"%")
		where = append(where, fmt.Sprintf(`title ILIKE $%d ESCAPE '\'`, len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM library_items WHERE "+clause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count library items: %w", err)
	}

	args = append(args, q.Size, (q.Page-1)*q.Size)
	query := fmt.Sprintf(`
		SELECT id, title, category, content_type, COALESCE(description, ''), COALESCE(url, ''), tags, is_published, created_at
		FROM library_items
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, clause, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query library items: %w", err)
	}
	defer rows.Close()

	page := &models.LibraryPage{Items: []models.LibraryItem{}, Total: total, Page: q.Page, Size: q.Size}
	for rows.Next() {
		var item models.LibraryItem
		var tags pq.StringArray
		if err := rows.Scan(&item.ID, &item.Title, &item.Category, &item.ContentType, &item.Description, &item.URL, &tags, &item.IsPublished, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan library item: %w", err)
		}
		item.Tags = []string(tags)
		page.Items = append(page.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate library items: %w", err)
	}
	return page, nil
}

// Upsert writes a catalog entry, used by the library indexer.
func (r *LibraryRepository) Upsert(ctx context.Context, item *models.LibraryItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO library_items (id, title, category, content_type, description, url, tags, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			content_type = EXCLUDED.content_type,
			description = EXCLUDED.description,
			url = EXCLUDED.url,
			tags = EXCLUDED.tags,
			is_published = EXCLUDED.is_published,
			updated_at = NOW()
	`, item.ID, item.Title, item.Category, item.ContentType, nullString(item.Description), nullString(item.URL), pq.Array(item.Tags), item.IsPublished)
	if err != nil {
		return fmt.Errorf("upsert library item %s: %w", item.ID, err)
	}
	return nil
}
