package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mdm/internal/model/entity"
	"gorm.io/gorm"
)

// CategoryRepository 类别仓库
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建类别仓库
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// FindByID 根据ID查找类别
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*entity.Category, error) {
	var category entity.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// Create 创建类别
func (r *CategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// Update 更新类别
func (r *CategoryRepository) Update(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete 删除类别，引用它的物料类别置空
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Item{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// List 获取类别列表
func (r *CategoryRepository) List(ctx context.Context, page, pageSize int, keyword, ordering string) ([]entity.Category, int64, error) {
	var categories []entity.Category
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Category{})
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := orderClause(ordering, "name ASC", map[string]string{
		"name":       "name",
		"created_at": "created_at",
	})

	err := query.
		Order(order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&categories).Error
	return categories, total, err
}

// ItemRepository 物料仓库
type ItemRepository struct {
	db *gorm.DB
}

// NewItemRepository 创建物料仓库
func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// FindByID 根据ID查找物料
func (r *ItemRepository) FindByID(ctx context.Context, id string) (*entity.Item, error) {
	var item entity.Item
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByCode 根据编码查找物料
func (r *ItemRepository) FindByCode(ctx context.Context, code string) (*entity.Item, error) {
	var item entity.Item
	err := r.db.WithContext(ctx).Where("item_code = ?", code).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create 创建物料
func (r *ItemRepository) Create(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update 更新物料
func (r *ItemRepository) Update(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete 删除物料，级联删除其BOM与供应商关系
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bomIDs []string
		if err := tx.Model(&entity.BOM{}).
			Where("parent_item_id = ?", id).
			Pluck("id", &bomIDs).Error; err != nil {
			return err
		}
		for _, bomID := range bomIDs {
			if err := deleteBOMCascade(tx, bomID); err != nil {
				return err
			}
		}
		if err := tx.Where("item_id = ?", id).Delete(&entity.ItemSupplier{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", id).Delete(&entity.BOMComponent{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.Item{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ItemFilters 物料列表过滤条件
type ItemFilters struct {
	Keyword    string
	Status     string
	CategoryID string
	Unit       string
}

// List 获取物料列表
func (r *ItemRepository) List(ctx context.Context, page, pageSize int, filters ItemFilters, ordering string) ([]entity.Item, int64, error) {
	var items []entity.Item
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Item{})

	if filters.Keyword != "" {
		like := "%" + filters.Keyword + "%"
		query = query.Where("item_code LIKE ? OR name LIKE ? OR description LIKE ?", like, like, like)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.CategoryID != "" {
		query = query.Where("category_id = ?", filters.CategoryID)
	}
	if filters.Unit != "" {
		query = query.Where("unit = ?", filters.Unit)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := orderClause(ordering, "created_at DESC", map[string]string{
		"item_code":  "item_code",
		"name":       "name",
		"created_at": "created_at",
	})

	err := query.
		Preload("Category").
		Order(order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// ListLowStock 获取缺货物料，按字段间比较而非固定阈值
func (r *ItemRepository) ListLowStock(ctx context.Context) ([]entity.Item, error) {
	var items []entity.Item
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("current_stock <= minimum_stock").
		Order("item_code ASC").
		Find(&items).Error
	return items, err
}

// ListAll 获取全部物料，导出用
func (r *ItemRepository) ListAll(ctx context.Context) ([]entity.Item, error) {
	var items []entity.Item
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order("item_code ASC").
		Find(&items).Error
	return items, err
}
