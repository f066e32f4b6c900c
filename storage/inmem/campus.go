package inmem

import (
	"context"

	"github.com/trezcool/challan/core/campus"
)

type campusRepository struct {
	db *campusTable
}

func NewCampusRepository(db *DB) campus.Repository {
	return &campusRepository{db: db.campus}
}

func (db *DB) AddCampus(c campus.Campus) campus.Campus {
	db.campus.Lock()
	defer db.campus.Unlock()
	if c.ID == "" {
		c.ID = newID()
	}
	db.campus.table[c.ID] = c
	return c
}

func (repo *campusRepository) GetCampus(_ context.Context, id string) (campus.Campus, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if c, ok := repo.db.table[id]; ok {
		return c, nil
	}
	return campus.Campus{}, campus.ErrNotFound
}
