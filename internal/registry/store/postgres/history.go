package postgres

import (
	"context"
	"database/sql"

	"orgatlas/internal/registry/models"
)

var historyColumns = map[string]string{"id": "id", "creation_date": "creation_date"}

type ImportHistoryStore struct {
	store
}

func NewImportHistoryStore(db *sql.DB) *ImportHistoryStore {
	return &ImportHistoryStore{store{db: db}}
}

func (s *ImportHistoryStore) Create(ctx context.Context, h *models.ImportHistory) error {
	err := s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO import_history (creation_date, status, counter, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		h.CreationDate, int(h.Status), h.Counter, h.Message,
	).Scan(&h.ID)
	if err != nil {
		return storeError("create import history", err)
	}
	return nil
}

func (s *ImportHistoryStore) Update(ctx context.Context, h *models.ImportHistory) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE import_history SET status = $2, counter = $3, message = $4 WHERE id = $1`,
		h.ID, int(h.Status), h.Counter, h.Message)
	return affectedOne("update import history", res, err)
}

func (s *ImportHistoryStore) List(ctx context.Context, page models.Page) (models.PageResult[models.ImportHistory], error) {
	total, err := s.count(ctx, "count import history", "import_history", &where{})
	if err != nil {
		return models.PageResult[models.ImportHistory]{}, err
	}
	result := emptyPage[models.ImportHistory](page, total)
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, creation_date, status, counter, message FROM import_history`+orderBy(page, historyColumns))
	if err != nil {
		return result, storeError("list import history", err)
	}
	defer rows.Close()
	for rows.Next() {
		var h models.ImportHistory
		if err := rows.Scan(&h.ID, &h.CreationDate, &h.Status, &h.Counter, &h.Message); err != nil {
			return result, storeError("scan import history", err)
		}
		h.CreationDate = h.CreationDate.UTC()
		result.Items = append(result.Items, h)
	}
	if err := rows.Err(); err != nil {
		return result, storeError("list import history", err)
	}
	return result, nil
}
