package repository

import (
	"github.com/mark-baumann/JobAgent/internal/model"
	"gorm.io/gorm"
)

type GenerationRunRepository struct {
	db *gorm.DB
}

func NewGenerationRunRepository(db *gorm.DB) *GenerationRunRepository {
	return &GenerationRunRepository{db}
}

func (r *GenerationRunRepository) CreateRun(run *model.GenerationRun) error {
	return r.db.Create(run).Error
}

func (r *GenerationRunRepository) UpdateRun(run *model.GenerationRun) error {
	return r.db.Save(run).Error
}

func (r *GenerationRunRepository) FindRunByID(id string) (*model.GenerationRun, error) {
	var run model.GenerationRun
	err := r.db.First(&run, "id = ?", id).Error
	return &run, err
}

func (r *GenerationRunRepository) FindRuns(page, pageSize int) ([]model.GenerationRun, int64, error) {
	var runs []model.GenerationRun
	var total int64

	if err := r.db.Model(&model.GenerationRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&runs).Error
	return runs, total, err
}
