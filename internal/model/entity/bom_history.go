package entity

import (
	"time"
)

// BOMValidation BOM验证记录，创建后不再修改
type BOMValidation struct {
	ID             string `json:"id" gorm:"primaryKey;size:32"`
	BOMID          string `json:"bom_id" gorm:"size:32;not null;index"`
	ValidationType string `json:"validation_type" gorm:"size:20;not null"`
	Result         string `json:"result" gorm:"size:10;not null"`
	Message        string `json:"message" gorm:"type:text;not null"`
	Details        JSONB  `json:"details" gorm:"type:jsonb"`

	ValidatedBy *string   `json:"validated_by" gorm:"size:32"`
	ValidatedAt time.Time `json:"validated_at"`

	// 关联
	BOM       *BOM  `json:"bom,omitempty" gorm:"foreignKey:BOMID;constraint:OnDelete:CASCADE"`
	Validator *User `json:"validator,omitempty" gorm:"foreignKey:ValidatedBy;constraint:OnDelete:SET NULL"`
}

func (BOMValidation) TableName() string {
	return "bom_validations"
}

// ValidationType 验证类型
const (
	ValidationTypeStructure    = "structure"
	ValidationTypeCost         = "cost"
	ValidationTypeAvailability = "availability"
	ValidationTypeCompliance   = "compliance"
)

// ValidationResult 验证结果
const (
	ValidationResultPass    = "pass"
	ValidationResultFail    = "fail"
	ValidationResultWarning = "warning"
)

// BOMChangeHistory BOM变更审计记录，创建后不再修改
type BOMChangeHistory struct {
	ID           string `json:"id" gorm:"primaryKey;size:32"`
	BOMID        string `json:"bom_id" gorm:"size:32;not null;index"`
	ChangeType   string `json:"change_type" gorm:"size:20;not null"`
	OldValue     JSONB  `json:"old_value" gorm:"type:jsonb"`
	NewValue     JSONB  `json:"new_value" gorm:"type:jsonb"`
	ChangeReason string `json:"change_reason" gorm:"type:text"`

	ChangedBy *string   `json:"changed_by" gorm:"size:32"`
	ChangedAt time.Time `json:"changed_at"`

	// 关联
	BOM     *BOM  `json:"bom,omitempty" gorm:"foreignKey:BOMID;constraint:OnDelete:CASCADE"`
	Changer *User `json:"changer,omitempty" gorm:"foreignKey:ChangedBy;constraint:OnDelete:SET NULL"`
}

func (BOMChangeHistory) TableName() string {
	return "bom_change_history"
}

// ChangeType 变更类型
const (
	ChangeTypeCreate     = "create"
	ChangeTypeUpdate     = "update"
	ChangeTypeDelete     = "delete"
	ChangeTypeApprove    = "approve"
	ChangeTypeActivate   = "activate"
	ChangeTypeDeactivate = "deactivate"
	ChangeTypeSubmit     = "submit"
)
