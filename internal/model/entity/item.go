package entity

import (
	"time"

	"gorm.io/gorm"
)

// Category 物料类别
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Name        string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// Item 物料实体
type Item struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	ItemCode    string  `json:"item_code" gorm:"size:50;not null;uniqueIndex"`
	Name        string  `json:"name" gorm:"size:200;not null"`
	Description string  `json:"description" gorm:"type:text"`
	CategoryID  *string `json:"category_id" gorm:"size:32"`

	// 规格信息
	Specification string   `json:"specification" gorm:"type:text"`
	Unit          string   `json:"unit" gorm:"size:10;not null;default:ea"`
	Weight        *float64 `json:"weight" gorm:"type:decimal(10,3)"`
	Dimensions    string   `json:"dimensions" gorm:"size:100"`

	// 库存信息
	Status       string `json:"status" gorm:"size:20;not null;default:active"`
	MinimumStock int    `json:"minimum_stock" gorm:"not null;default:0"`
	CurrentStock int    `json:"current_stock" gorm:"not null;default:0"`

	// 成本信息
	StandardCost *float64 `json:"standard_cost" gorm:"type:decimal(12,2)"`

	// 派生字段
	IsLowStock bool `json:"is_low_stock" gorm:"-"`

	CreatedBy *string   `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedBy *string   `json:"updated_by" gorm:"size:32"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Creator  *User     `json:"creator,omitempty" gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL"`
	Updater  *User     `json:"updater,omitempty" gorm:"foreignKey:UpdatedBy;constraint:OnDelete:SET NULL"`
}

func (Item) TableName() string {
	return "items"
}

// AfterFind 查询后计算缺货标记
func (i *Item) AfterFind(_ *gorm.DB) error {
	i.IsLowStock = i.CurrentStock <= i.MinimumStock
	return nil
}

// ItemStatus 物料状态
const (
	ItemStatusActive       = "active"
	ItemStatusInactive     = "inactive"
	ItemStatusDiscontinued = "discontinued"
)

// ItemUnit 计量单位
const (
	ItemUnitEA = "ea"
	ItemUnitKG = "kg"
	ItemUnitG  = "g"
	ItemUnitM  = "m"
	ItemUnitCM = "cm"
	ItemUnitMM = "mm"
	ItemUnitL  = "l"
	ItemUnitML = "ml"
)
