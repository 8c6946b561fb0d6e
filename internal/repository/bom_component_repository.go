package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mdm/internal/model/entity"
	"gorm.io/gorm"
)

// BOMComponentRepository BOM行项仓库
type BOMComponentRepository struct {
	db *gorm.DB
}

// NewBOMComponentRepository 创建BOM行项仓库
func NewBOMComponentRepository(db *gorm.DB) *BOMComponentRepository {
	return &BOMComponentRepository{db: db}
}

// FindByID 根据ID查找行项
func (r *BOMComponentRepository) FindByID(ctx context.Context, id string) (*entity.BOMComponent, error) {
	var component entity.BOMComponent
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("SubstituteItems").
		Where("id = ?", id).
		First(&component).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &component, nil
}

// Create 创建行项
func (r *BOMComponentRepository) Create(ctx context.Context, component *entity.BOMComponent) error {
	return r.db.WithContext(ctx).Create(component).Error
}

// Update 更新行项，替代料集合整体替换
func (r *BOMComponentRepository) Update(ctx context.Context, component *entity.BOMComponent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(component).
			Association("SubstituteItems").
			Replace(component.SubstituteItems); err != nil {
			return err
		}
		return tx.Omit("SubstituteItems").Save(component).Error
	})
}

// Delete 删除行项
func (r *BOMComponentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM bom_component_substitutes WHERE bom_component_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.BOMComponent{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// BOMComponentFilters 行项列表过滤条件
type BOMComponentFilters struct {
	Keyword       string
	BOMID         string
	ComponentType string
	IsOptional    *bool
	IsPhantom     *bool
}

// List 获取行项列表，按BOM与序号排序
func (r *BOMComponentRepository) List(ctx context.Context, page, pageSize int, filters BOMComponentFilters) ([]entity.BOMComponent, int64, error) {
	var components []entity.BOMComponent
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.BOMComponent{})

	if filters.Keyword != "" {
		like := "%" + filters.Keyword + "%"
		query = query.
			Joins("JOIN items ON items.id = bom_components.item_id").
			Where("items.name LIKE ? OR items.item_code LIKE ? OR bom_components.reference_designator LIKE ?", like, like, like)
	}
	if filters.BOMID != "" {
		query = query.Where("bom_components.bom_id = ?", filters.BOMID)
	}
	if filters.ComponentType != "" {
		query = query.Where("bom_components.component_type = ?", filters.ComponentType)
	}
	if filters.IsOptional != nil {
		query = query.Where("bom_components.is_optional = ?", *filters.IsOptional)
	}
	if filters.IsPhantom != nil {
		query = query.Where("bom_components.is_phantom = ?", *filters.IsPhantom)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Item").
		Preload("SubstituteItems").
		Order("bom_components.bom_id ASC, bom_components.sequence ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&components).Error
	return components, total, err
}

// MaxSequence 获取BOM下最大序号
func (r *BOMComponentRepository) MaxSequence(ctx context.Context, bomID string) (int, error) {
	var maxSeq int
	err := r.db.WithContext(ctx).
		Model(&entity.BOMComponent{}).
		Select("COALESCE(MAX(sequence), 0)").
		Where("bom_id = ?", bomID).
		Scan(&maxSeq).Error
	return maxSeq, err
}
