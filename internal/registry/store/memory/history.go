package memory

import (
	"cmp"
	"context"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	"orgatlas/pkg/platform/sentinel"
)

var historyFields = map[string]compareFunc[models.ImportHistory]{
	"id":            func(a, b models.ImportHistory) int { return cmp.Compare(a.ID, b.ID) },
	"creation_date": func(a, b models.ImportHistory) int { return a.CreationDate.Compare(b.CreationDate) },
}

type ImportHistoryStore struct {
	db *DB
}

func NewImportHistoryStore(db *DB) *ImportHistoryStore {
	return &ImportHistoryStore{db: db}
}

func (s *ImportHistoryStore) Create(ctx context.Context, h *models.ImportHistory) error {
	return s.db.write(ctx, func(st *state) error {
		st.nextImport++
		h.ID = id.ImportID(st.nextImport)
		st.history[h.ID] = *h
		return nil
	})
}

func (s *ImportHistoryStore) Update(ctx context.Context, h *models.ImportHistory) error {
	return s.db.write(ctx, func(st *state) error {
		if _, ok := st.history[h.ID]; !ok {
			return sentinel.ErrNotFound
		}
		st.history[h.ID] = *h
		return nil
	})
}

func (s *ImportHistoryStore) List(ctx context.Context, page models.Page) (models.PageResult[models.ImportHistory], error) {
	var result models.PageResult[models.ImportHistory]
	err := s.db.read(ctx, func(st *state) error {
		rows := make([]models.ImportHistory, 0, len(st.history))
		for _, h := range st.history {
			rows = append(rows, h)
		}
		result = paginate(rows, page, historyFields)
		return nil
	})
	return result, err
}
