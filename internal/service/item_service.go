package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mdm/internal/model/entity"
	"github.com/bitfantasy/nimo-mdm/internal/repository"
)

// ErrValidation 业务校验失败
var ErrValidation = errors.New("validation failed")

// ItemService 物料服务
type ItemService struct {
	items      *repository.ItemRepository
	categories *repository.CategoryRepository
}

// NewItemService 创建物料服务
func NewItemService(items *repository.ItemRepository, categories *repository.CategoryRepository) *ItemService {
	return &ItemService{items: items, categories: categories}
}

// ItemRequest 物料创建/更新请求
type ItemRequest struct {
	ItemCode      string   `json:"item_code" binding:"required,max=50"`
	Name          string   `json:"name" binding:"required,max=200"`
	Description   string   `json:"description"`
	CategoryID    *string  `json:"category_id"`
	Specification string   `json:"specification"`
	Unit          string   `json:"unit" binding:"omitempty,oneof=ea kg g m cm mm l ml"`
	Weight        *float64 `json:"weight" binding:"omitempty,gte=0"`
	Dimensions    string   `json:"dimensions" binding:"max=100"`
	Status        string   `json:"status" binding:"omitempty,oneof=active inactive discontinued"`
	MinimumStock  int      `json:"minimum_stock" binding:"gte=0"`
	CurrentStock  int      `json:"current_stock" binding:"gte=0"`
	StandardCost  *float64 `json:"standard_cost" binding:"omitempty,gte=0"`
}

// ItemListResult 物料列表结果
type ItemListResult struct {
	Items      []entity.Item `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// Get 获取物料详情
func (s *ItemService) Get(ctx context.Context, id string) (*entity.Item, error) {
	return s.items.FindByID(ctx, id)
}

// checkCategory 类别ID非空时校验其存在
func (s *ItemService) checkCategory(ctx context.Context, categoryID *string) error {
	if categoryID == nil || *categoryID == "" {
		return nil
	}
	if _, err := s.categories.FindByID(ctx, *categoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: category %s not found", ErrValidation, *categoryID)
		}
		return err
	}
	return nil
}

// Create 创建物料
func (s *ItemService) Create(ctx context.Context, userID string, req *ItemRequest) (*entity.Item, error) {
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &entity.Item{
		ID:            repository.NewID(),
		ItemCode:      req.ItemCode,
		Name:          req.Name,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		Specification: req.Specification,
		Unit:          req.Unit,
		Weight:        req.Weight,
		Dimensions:    req.Dimensions,
		Status:        req.Status,
		MinimumStock:  req.MinimumStock,
		CurrentStock:  req.CurrentStock,
		StandardCost:  req.StandardCost,
		CreatedBy:     actorRef(userID),
		UpdatedBy:     actorRef(userID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if item.Unit == "" {
		item.Unit = entity.ItemUnitEA
	}
	if item.Status == "" {
		item.Status = entity.ItemStatusActive
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return s.items.FindByID(ctx, item.ID)
}

// Update 更新物料
func (s *ItemService) Update(ctx context.Context, id, userID string, req *ItemRequest) (*entity.Item, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	item.ItemCode = req.ItemCode
	item.Name = req.Name
	item.Description = req.Description
	item.CategoryID = req.CategoryID
	item.Specification = req.Specification
	item.Unit = req.Unit
	item.Weight = req.Weight
	item.Dimensions = req.Dimensions
	item.Status = req.Status
	item.MinimumStock = req.MinimumStock
	item.CurrentStock = req.CurrentStock
	item.StandardCost = req.StandardCost
	item.UpdatedBy = actorRef(userID)
	item.UpdatedAt = time.Now()
	if item.Unit == "" {
		item.Unit = entity.ItemUnitEA
	}
	if item.Status == "" {
		item.Status = entity.ItemStatusActive
	}
	item.Category = nil

	if err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.items.FindByID(ctx, id)
}

// Delete 删除物料
func (s *ItemService) Delete(ctx context.Context, id string) error {
	return s.items.Delete(ctx, id)
}

// List 获取物料列表
func (s *ItemService) List(ctx context.Context, page, pageSize int, filters repository.ItemFilters, ordering string) (*ItemListResult, error) {
	items, total, err := s.items.List(ctx, page, pageSize, filters, ordering)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return &ItemListResult{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// LowStock 获取库存不高于安全线的物料
func (s *ItemService) LowStock(ctx context.Context) ([]entity.Item, error) {
	return s.items.ListLowStock(ctx)
}

// ListAll 获取全部物料，导出用
func (s *ItemService) ListAll(ctx context.Context) ([]entity.Item, error) {
	return s.items.ListAll(ctx)
}
