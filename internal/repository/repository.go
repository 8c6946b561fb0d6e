package repository

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("concurrent update conflict")
)

// generateID 生成32位ID
func generateID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:32]
}

// NewID 对外暴露的ID生成
func NewID() string {
	return generateID()
}

// Repositories 仓库集合
type Repositories struct {
	User          *UserRepository
	Category      *CategoryRepository
	Item          *ItemRepository
	Supplier      *SupplierRepository
	ItemSupplier  *ItemSupplierRepository
	BOM           *BOMRepository
	BOMComponent  *BOMComponentRepository
	BOMValidation *BOMValidationRepository
	BOMHistory    *BOMChangeHistoryRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Category:      NewCategoryRepository(db),
		Item:          NewItemRepository(db),
		Supplier:      NewSupplierRepository(db),
		ItemSupplier:  NewItemSupplierRepository(db),
		BOM:           NewBOMRepository(db),
		BOMComponent:  NewBOMComponentRepository(db),
		BOMValidation: NewBOMValidationRepository(db),
		BOMHistory:    NewBOMChangeHistoryRepository(db),
	}
}

// orderClause 将DRF风格的ordering参数转成SQL排序，不在白名单内回退默认值
func orderClause(ordering, fallback string, allowed map[string]string) string {
	if ordering == "" {
		return fallback
	}
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")
	column, ok := allowed[field]
	if !ok {
		return fallback
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}
