package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mdm/internal/model/entity"
	"gorm.io/gorm"
)

// BOMValidationRepository BOM验证记录仓库，只增不改
type BOMValidationRepository struct {
	db *gorm.DB
}

// NewBOMValidationRepository 创建验证记录仓库
func NewBOMValidationRepository(db *gorm.DB) *BOMValidationRepository {
	return &BOMValidationRepository{db: db}
}

// Create 追加验证记录
func (r *BOMValidationRepository) Create(ctx context.Context, validation *entity.BOMValidation) error {
	return r.db.WithContext(ctx).Create(validation).Error
}

// FindByID 根据ID查找验证记录
func (r *BOMValidationRepository) FindByID(ctx context.Context, id string) (*entity.BOMValidation, error) {
	var validation entity.BOMValidation
	err := r.db.WithContext(ctx).
		Preload("BOM").
		Where("id = ?", id).
		First(&validation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &validation, nil
}

// BOMValidationFilters 验证记录过滤条件
type BOMValidationFilters struct {
	Keyword        string
	BOMID          string
	ValidationType string
	Result         string
}

// List 获取验证记录列表，最新在前
func (r *BOMValidationRepository) List(ctx context.Context, page, pageSize int, filters BOMValidationFilters) ([]entity.BOMValidation, int64, error) {
	var validations []entity.BOMValidation
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.BOMValidation{})

	if filters.Keyword != "" {
		query = query.Where("message LIKE ?", "%"+filters.Keyword+"%")
	}
	if filters.BOMID != "" {
		query = query.Where("bom_id = ?", filters.BOMID)
	}
	if filters.ValidationType != "" {
		query = query.Where("validation_type = ?", filters.ValidationType)
	}
	if filters.Result != "" {
		query = query.Where("result = ?", filters.Result)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("validated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&validations).Error
	return validations, total, err
}

// BOMChangeHistoryRepository BOM变更记录仓库，只增不改
type BOMChangeHistoryRepository struct {
	db *gorm.DB
}

// NewBOMChangeHistoryRepository 创建变更记录仓库
func NewBOMChangeHistoryRepository(db *gorm.DB) *BOMChangeHistoryRepository {
	return &BOMChangeHistoryRepository{db: db}
}

// Create 追加变更记录
func (r *BOMChangeHistoryRepository) Create(ctx context.Context, history *entity.BOMChangeHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

// FindByID 根据ID查找变更记录
func (r *BOMChangeHistoryRepository) FindByID(ctx context.Context, id string) (*entity.BOMChangeHistory, error) {
	var history entity.BOMChangeHistory
	err := r.db.WithContext(ctx).
		Preload("BOM").
		Where("id = ?", id).
		First(&history).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &history, nil
}

// BOMChangeHistoryFilters 变更记录过滤条件
type BOMChangeHistoryFilters struct {
	Keyword    string
	BOMID      string
	ChangeType string
}

// List 获取变更记录列表，最新在前
func (r *BOMChangeHistoryRepository) List(ctx context.Context, page, pageSize int, filters BOMChangeHistoryFilters) ([]entity.BOMChangeHistory, int64, error) {
	var histories []entity.BOMChangeHistory
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.BOMChangeHistory{})

	if filters.Keyword != "" {
		query = query.Where("change_reason LIKE ?", "%"+filters.Keyword+"%")
	}
	if filters.BOMID != "" {
		query = query.Where("bom_id = ?", filters.BOMID)
	}
	if filters.ChangeType != "" {
		query = query.Where("change_type = ?", filters.ChangeType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("changed_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&histories).Error
	return histories, total, err
}
