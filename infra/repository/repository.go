// Package repository persists estimation projects to postgres through
// gorm. A project is stored as one projects row plus its project_roles
// and project_rates rows; Save rewrites the child rows in a transaction.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kreso2/costwise/pkg/service/estimation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a gorm-backed estimation.Repository.
func NewProjectRepository(db *gorm.DB) estimation.Repository {
	return &projectRepository{db: db}
}

// Migrate creates or updates the backing tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&ProjectModel{}, &RoleModel{}, &RateModel{})
}

func (r *projectRepository) Save(ctx context.Context, p *estimation.Project) error {
	row := toProjectModel(p)
	roleRows := toRoleModels(p)
	rateRows := toRateModels(p)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", p.ID).Delete(&RoleModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", p.ID).Delete(&RateModel{}).Error; err != nil {
			return err
		}
		if len(roleRows) > 0 {
			if err := tx.Create(&roleRows).Error; err != nil {
				return err
			}
		}
		if len(rateRows) > 0 {
			if err := tx.Create(&rateRows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *projectRepository) Get(ctx context.Context, id uuid.UUID) (*estimation.Project, error) {
	db := r.db.WithContext(ctx)

	var row ProjectModel
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, estimation.ErrProjectNotFound
		}
		return nil, err
	}

	var roleRows []RoleModel
	if err := db.Where("project_id = ?", id).Order("position").Find(&roleRows).Error; err != nil {
		return nil, err
	}

	var rateRows []RateModel
	if err := db.Where("project_id = ?", id).Find(&rateRows).Error; err != nil {
		return nil, err
	}

	return fromRows(row, roleRows, rateRows)
}

// List returns project summaries ordered by creation time, newest first.
// Roles are not loaded; the denormalized totals stand in for the full
// calculation set.
func (r *projectRepository) List(ctx context.Context) ([]*estimation.Project, error) {
	var rows []ProjectModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*estimation.Project, 0, len(rows))
	for _, row := range rows {
		out = append(out, summaryFromRow(row))
	}
	return out, nil
}

func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&RoleModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&RateModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&ProjectModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return estimation.ErrProjectNotFound
		}
		return nil
	})
}
