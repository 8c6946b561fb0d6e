package entity

import (
	"time"
)

// Supplier 供应商实体
type Supplier struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	Name          string    `json:"name" gorm:"size:100;not null"`
	ContactPerson string    `json:"contact_person" gorm:"size:50"`
	Phone         string    `json:"phone" gorm:"size:20"`
	Email         string    `json:"email" gorm:"size:128"`
	Address       string    `json:"address" gorm:"type:text"`
	IsActive      bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

// ItemSupplier 物料-供应商关系
type ItemSupplier struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	ItemID           string    `json:"item_id" gorm:"size:32;not null;uniqueIndex:uk_item_supplier"`
	SupplierID       string    `json:"supplier_id" gorm:"size:32;not null;uniqueIndex:uk_item_supplier"`
	SupplierItemCode string    `json:"supplier_item_code" gorm:"size:50"`
	UnitPrice        *float64  `json:"unit_price" gorm:"type:decimal(12,2)"`
	MinimumOrderQty  int       `json:"minimum_order_qty" gorm:"not null;default:1"`
	LeadTimeDays     int       `json:"lead_time_days" gorm:"not null;default:0"`
	IsPrimary        bool      `json:"is_primary" gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// 关联
	Item     *Item     `json:"item,omitempty" gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE"`
}

func (ItemSupplier) TableName() string {
	return "item_suppliers"
}
