package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bitfantasy/nimo-mdm/internal/model/entity"
	"gorm.io/gorm"
)

// BOMRepository BOM仓库
type BOMRepository struct {
	db *gorm.DB
}

// NewBOMRepository 创建BOM仓库
func NewBOMRepository(db *gorm.DB) *BOMRepository {
	return &BOMRepository{db: db}
}

// FindByID 根据ID获取BOM，包含行项与物料
func (r *BOMRepository) FindByID(ctx context.Context, id string) (*entity.BOM, error) {
	var bom entity.BOM
	err := r.db.WithContext(ctx).
		Preload("ParentItem").
		Preload("Components", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Preload("Components.Item").
		Preload("Components.SubstituteItems").
		Where("id = ?", id).
		First(&bom).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bom, nil
}

// Create 创建BOM
func (r *BOMRepository) Create(ctx context.Context, bom *entity.BOM) error {
	return r.db.WithContext(ctx).Create(bom).Error
}

// Update 更新BOM
func (r *BOMRepository) Update(ctx context.Context, bom *entity.BOM) error {
	return r.db.WithContext(ctx).Save(bom).Error
}

// deleteBOMCascade 删除BOM及其行项、验证与变更记录
func deleteBOMCascade(tx *gorm.DB, id string) error {
	var componentIDs []string
	if err := tx.Model(&entity.BOMComponent{}).
		Where("bom_id = ?", id).
		Pluck("id", &componentIDs).Error; err != nil {
		return err
	}
	if len(componentIDs) > 0 {
		if err := tx.Exec("DELETE FROM bom_component_substitutes WHERE bom_component_id IN ?", componentIDs).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("bom_id = ?", id).Delete(&entity.BOMComponent{}).Error; err != nil {
		return err
	}
	if err := tx.Where("bom_id = ?", id).Delete(&entity.BOMValidation{}).Error; err != nil {
		return err
	}
	if err := tx.Where("bom_id = ?", id).Delete(&entity.BOMChangeHistory{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", id).Delete(&entity.BOM{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除BOM及其所属记录
func (r *BOMRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteBOMCascade(tx, id)
	})
}

// BOMFilters BOM列表过滤条件
type BOMFilters struct {
	Keyword      string
	Status       string
	ParentItemID string
	IsDefault    *bool
}

// List 获取BOM列表
func (r *BOMRepository) List(ctx context.Context, page, pageSize int, filters BOMFilters, ordering string) ([]entity.BOM, int64, error) {
	var boms []entity.BOM
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.BOM{})

	if filters.Keyword != "" {
		like := "%" + filters.Keyword + "%"
		query = query.Where("bom_code LIKE ? OR name LIKE ? OR description LIKE ?", like, like, like)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.ParentItemID != "" {
		query = query.Where("parent_item_id = ?", filters.ParentItemID)
	}
	if filters.IsDefault != nil {
		query = query.Where("is_default = ?", *filters.IsDefault)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := orderClause(ordering, "created_at DESC", map[string]string{
		"bom_code":   "bom_code",
		"name":       "name",
		"created_at": "created_at",
	})

	err := query.
		Preload("ParentItem").
		Order(order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&boms).Error
	return boms, total, err
}

// BOMStats BOM统计值
type BOMStats struct {
	BOMID           string
	TotalComponents int
	TotalCost       float64
}

// Stats 聚合行项数与总成本，单价未设置按0计
func (r *BOMRepository) Stats(ctx context.Context, bomIDs []string) (map[string]BOMStats, error) {
	result := make(map[string]BOMStats, len(bomIDs))
	if len(bomIDs) == 0 {
		return result, nil
	}

	var rows []BOMStats
	err := r.db.WithContext(ctx).
		Model(&entity.BOMComponent{}).
		Select("bom_components.bom_id AS bom_id, COUNT(*) AS total_components, COALESCE(SUM(COALESCE(items.standard_cost, 0) * bom_components.quantity), 0) AS total_cost").
		Joins("JOIN items ON items.id = bom_components.item_id").
		Where("bom_components.bom_id IN ?", bomIDs).
		Group("bom_components.bom_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.BOMID] = row
	}
	return result, nil
}

// TransitionStatus 条件更新状态，当前状态不匹配则零行生效
func (r *BOMRepository) TransitionStatus(ctx context.Context, id, from, to string, extra map[string]interface{}) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&entity.BOM{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&entity.BOM{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}
