package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mdm/internal/model/entity"
	"gorm.io/gorm"
)

// SupplierRepository 供应商仓库
type SupplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository 创建供应商仓库
func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// FindByID 根据ID查找供应商
func (r *SupplierRepository) FindByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var supplier entity.Supplier
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&supplier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// Create 创建供应商
func (r *SupplierRepository) Create(ctx context.Context, supplier *entity.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

// Update 更新供应商
func (r *SupplierRepository) Update(ctx context.Context, supplier *entity.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

// Delete 删除供应商，级联删除物料关系
func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("supplier_id = ?", id).Delete(&entity.ItemSupplier{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.Supplier{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SupplierFilters 供应商列表过滤条件
type SupplierFilters struct {
	Keyword  string
	IsActive *bool
}

// List 获取供应商列表
func (r *SupplierRepository) List(ctx context.Context, page, pageSize int, filters SupplierFilters, ordering string) ([]entity.Supplier, int64, error) {
	var suppliers []entity.Supplier
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Supplier{})

	if filters.Keyword != "" {
		like := "%" + filters.Keyword + "%"
		query = query.Where("name LIKE ? OR contact_person LIKE ?", like, like)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
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
		Find(&suppliers).Error
	return suppliers, total, err
}

// ItemSupplierRepository 物料-供应商关系仓库
type ItemSupplierRepository struct {
	db *gorm.DB
}

// NewItemSupplierRepository 创建物料-供应商关系仓库
func NewItemSupplierRepository(db *gorm.DB) *ItemSupplierRepository {
	return &ItemSupplierRepository{db: db}
}

// FindByID 根据ID查找关系记录
func (r *ItemSupplierRepository) FindByID(ctx context.Context, id string) (*entity.ItemSupplier, error) {
	var link entity.ItemSupplier
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Supplier").
		Where("id = ?", id).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// Create 创建关系记录
func (r *ItemSupplierRepository) Create(ctx context.Context, link *entity.ItemSupplier) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// Update 更新关系记录
func (r *ItemSupplierRepository) Update(ctx context.Context, link *entity.ItemSupplier) error {
	return r.db.WithContext(ctx).Save(link).Error
}

// Delete 删除关系记录
func (r *ItemSupplierRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.ItemSupplier{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ItemSupplierFilters 关系列表过滤条件
type ItemSupplierFilters struct {
	Keyword    string
	ItemID     string
	SupplierID string
	IsPrimary  *bool
}

// List 获取关系列表
func (r *ItemSupplierRepository) List(ctx context.Context, page, pageSize int, filters ItemSupplierFilters) ([]entity.ItemSupplier, int64, error) {
	var links []entity.ItemSupplier
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ItemSupplier{})

	if filters.Keyword != "" {
		like := "%" + filters.Keyword + "%"
		query = query.
			Joins("JOIN items ON items.id = item_suppliers.item_id").
			Joins("JOIN suppliers ON suppliers.id = item_suppliers.supplier_id").
			Where("items.name LIKE ? OR suppliers.name LIKE ? OR item_suppliers.supplier_item_code LIKE ?", like, like, like)
	}
	if filters.ItemID != "" {
		query = query.Where("item_suppliers.item_id = ?", filters.ItemID)
	}
	if filters.SupplierID != "" {
		query = query.Where("item_suppliers.supplier_id = ?", filters.SupplierID)
	}
	if filters.IsPrimary != nil {
		query = query.Where("item_suppliers.is_primary = ?", *filters.IsPrimary)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Item").
		Preload("Supplier").
		Order("item_suppliers.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&links).Error
	return links, total, err
}

// DemotePrimaries 取消该物料下其他主供应商标记
func (r *ItemSupplierRepository) DemotePrimaries(ctx context.Context, itemID, exceptID string) error {
	return r.db.WithContext(ctx).
		Model(&entity.ItemSupplier{}).
		Where("item_id = ? AND id <> ? AND is_primary", itemID, exceptID).
		Update("is_primary", false).Error
}
