package entity

import (
	"time"

	"gorm.io/gorm"
)

// BOM 物料清单头表
type BOM struct {
	ID           string `json:"id" gorm:"primaryKey;size:32"`
	BOMCode      string `json:"bom_code" gorm:"size:50;not null;uniqueIndex"`
	Name         string `json:"name" gorm:"size:200;not null"`
	Description  string `json:"description" gorm:"type:text"`
	ParentItemID string `json:"parent_item_id" gorm:"size:32;not null;uniqueIndex:uk_bom_item_version"`

	// 版本信息
	Version      string     `json:"version" gorm:"size:20;not null;default:1.0;uniqueIndex:uk_bom_item_version"`
	RevisionDate *time.Time `json:"revision_date"`

	// 状态信息
	Status    string `json:"status" gorm:"size:20;not null;default:draft"`
	IsDefault bool   `json:"is_default" gorm:"not null;default:false"`

	// 生产信息
	ProductionQuantity    float64 `json:"production_quantity" gorm:"type:decimal(10,3);not null;default:1"`
	UnitOfMeasure         string  `json:"unit_of_measure" gorm:"size:10;not null;default:ea"`
	SetupTimeMinutes      int     `json:"setup_time_minutes" gorm:"not null;default:0"`
	ProductionTimeMinutes int     `json:"production_time_minutes" gorm:"not null;default:0"`

	// 派生字段
	TotalComponents int     `json:"total_components" gorm:"-"`
	TotalCost       float64 `json:"total_cost" gorm:"-"`

	CreatedBy  *string    `json:"created_by" gorm:"size:32"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedBy  *string    `json:"updated_by" gorm:"size:32"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ApprovedBy *string    `json:"approved_by" gorm:"size:32"`
	ApprovedAt *time.Time `json:"approved_at"`

	// 关联
	ParentItem *Item          `json:"parent_item,omitempty" gorm:"foreignKey:ParentItemID;constraint:OnDelete:CASCADE"`
	Creator    *User          `json:"creator,omitempty" gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL"`
	Approver   *User          `json:"approver,omitempty" gorm:"foreignKey:ApprovedBy;constraint:OnDelete:SET NULL"`
	Components []BOMComponent `json:"components,omitempty" gorm:"foreignKey:BOMID"`
}

func (BOM) TableName() string {
	return "boms"
}

// BOMComponent BOM构成行项
type BOMComponent struct {
	ID     string `json:"id" gorm:"primaryKey;size:32"`
	BOMID  string `json:"bom_id" gorm:"size:32;not null;uniqueIndex:uk_bom_component"`
	ItemID string `json:"item_id" gorm:"size:32;not null;uniqueIndex:uk_bom_component"`

	ComponentType string  `json:"component_type" gorm:"size:20;not null;default:material"`
	Sequence      int     `json:"sequence" gorm:"not null;default:1"`
	Quantity      float64 `json:"quantity" gorm:"type:decimal(10,3);not null"`
	UnitOfMeasure string  `json:"unit_of_measure" gorm:"size:10;not null"`

	ReferenceDesignator string `json:"reference_designator" gorm:"size:50"`
	Notes               string `json:"notes" gorm:"type:text"`
	IsOptional          bool   `json:"is_optional" gorm:"not null;default:false"`
	IsPhantom           bool   `json:"is_phantom" gorm:"not null;default:false"`

	// 有效期
	EffectiveDate *time.Time `json:"effective_date"`
	ExpiryDate    *time.Time `json:"expiry_date"`

	// 派生字段
	ExtendedCost float64 `json:"extended_cost" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	BOM             *BOM   `json:"bom,omitempty" gorm:"foreignKey:BOMID;constraint:OnDelete:CASCADE"`
	Item            *Item  `json:"item,omitempty" gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	SubstituteItems []Item `json:"substitute_items,omitempty" gorm:"many2many:bom_component_substitutes"`
}

func (BOMComponent) TableName() string {
	return "bom_components"
}

// AfterFind 查询后计算扩展成本，单价未设置按0处理
func (c *BOMComponent) AfterFind(_ *gorm.DB) error {
	if c.Item != nil && c.Item.StandardCost != nil {
		c.ExtendedCost = *c.Item.StandardCost * c.Quantity
	}
	return nil
}

// BOMStatus BOM状态
const (
	BOMStatusDraft    = "draft"
	BOMStatusPending  = "pending"
	BOMStatusApproved = "approved"
	BOMStatusActive   = "active"
	BOMStatusInactive = "inactive"
)

// BOMAction 状态流转动作
const (
	BOMActionSubmit     = "submit"
	BOMActionApprove    = "approve"
	BOMActionActivate   = "activate"
	BOMActionDeactivate = "deactivate"
)

// bomTransitions 动作对应的合法起止状态，status只能经由这张表流转
var bomTransitions = map[string]map[string]string{
	BOMActionSubmit:     {BOMStatusDraft: BOMStatusPending},
	BOMActionApprove:    {BOMStatusPending: BOMStatusApproved},
	BOMActionActivate:   {BOMStatusApproved: BOMStatusActive},
	BOMActionDeactivate: {BOMStatusApproved: BOMStatusInactive, BOMStatusActive: BOMStatusInactive},
}

// BOMTransitionTarget 返回动作在当前状态下的目标状态
func BOMTransitionTarget(action, from string) (string, bool) {
	targets, ok := bomTransitions[action]
	if !ok {
		return "", false
	}
	to, ok := targets[from]
	return to, ok
}

// ComponentType 构成品类型
const (
	ComponentTypeMaterial    = "material"
	ComponentTypeComponent   = "component"
	ComponentTypeSubassembly = "subassembly"
	ComponentTypeTool        = "tool"
	ComponentTypeConsumable  = "consumable"
)
