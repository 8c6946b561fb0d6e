package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mdm/internal/model/entity"
	"github.com/bitfantasy/nimo-mdm/internal/repository"
)

// SupplierService 供应商服务
type SupplierService struct {
	repo *repository.SupplierRepository
}

// NewSupplierService 创建供应商服务
func NewSupplierService(repo *repository.SupplierRepository) *SupplierService {
	return &SupplierService{repo: repo}
}

// SupplierRequest 供应商创建/更新请求
type SupplierRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	ContactPerson string `json:"contact_person" binding:"max=50"`
	Phone         string `json:"phone" binding:"max=20"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address"`
	IsActive      *bool  `json:"is_active"`
}

// SupplierListResult 供应商列表结果
type SupplierListResult struct {
	Items      []entity.Supplier `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// Get 获取供应商
func (s *SupplierService) Get(ctx context.Context, id string) (*entity.Supplier, error) {
	return s.repo.FindByID(ctx, id)
}

// Create 创建供应商
func (s *SupplierService) Create(ctx context.Context, req *SupplierRequest) (*entity.Supplier, error) {
	now := time.Now()
	supplier := &entity.Supplier{
		ID:            repository.NewID(),
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	return supplier, nil
}

// Update 更新供应商
func (s *SupplierService) Update(ctx context.Context, id string, req *SupplierRequest) (*entity.Supplier, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier.Name = req.Name
	supplier.ContactPerson = req.ContactPerson
	supplier.Phone = req.Phone
	supplier.Email = req.Email
	supplier.Address = req.Address
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}
	supplier.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}
	return supplier, nil
}

// Delete 删除供应商
func (s *SupplierService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// List 获取供应商列表
func (s *SupplierService) List(ctx context.Context, page, pageSize int, filters repository.SupplierFilters, ordering string) (*SupplierListResult, error) {
	suppliers, total, err := s.repo.List(ctx, page, pageSize, filters, ordering)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return &SupplierListResult{
		Items:      suppliers,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// ItemSupplierService 物料-供应商关系服务
type ItemSupplierService struct {
	links     *repository.ItemSupplierRepository
	items     *repository.ItemRepository
	suppliers *repository.SupplierRepository
}

// NewItemSupplierService 创建关系服务
func NewItemSupplierService(links *repository.ItemSupplierRepository, items *repository.ItemRepository, suppliers *repository.SupplierRepository) *ItemSupplierService {
	return &ItemSupplierService{links: links, items: items, suppliers: suppliers}
}

// ItemSupplierRequest 关系创建/更新请求
type ItemSupplierRequest struct {
	ItemID           string   `json:"item_id" binding:"required"`
	SupplierID       string   `json:"supplier_id" binding:"required"`
	SupplierItemCode string   `json:"supplier_item_code" binding:"max=50"`
	UnitPrice        *float64 `json:"unit_price" binding:"omitempty,gte=0"`
	MinimumOrderQty  int      `json:"minimum_order_qty" binding:"omitempty,gt=0"`
	LeadTimeDays     int      `json:"lead_time_days" binding:"gte=0"`
	IsPrimary        bool     `json:"is_primary"`
}

// ItemSupplierListResult 关系列表结果
type ItemSupplierListResult struct {
	Items      []entity.ItemSupplier `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// checkRefs 校验物料与供应商存在
func (s *ItemSupplierService) checkRefs(ctx context.Context, itemID, supplierID string) error {
	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: item %s not found", ErrValidation, itemID)
		}
		return err
	}
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: supplier %s not found", ErrValidation, supplierID)
		}
		return err
	}
	return nil
}

// Get 获取关系记录
func (s *ItemSupplierService) Get(ctx context.Context, id string) (*entity.ItemSupplier, error) {
	return s.links.FindByID(ctx, id)
}

// Create 创建关系记录，设为主供应商时取消同物料其他主标记
func (s *ItemSupplierService) Create(ctx context.Context, req *ItemSupplierRequest) (*entity.ItemSupplier, error) {
	if err := s.checkRefs(ctx, req.ItemID, req.SupplierID); err != nil {
		return nil, err
	}

	now := time.Now()
	link := &entity.ItemSupplier{
		ID:               repository.NewID(),
		ItemID:           req.ItemID,
		SupplierID:       req.SupplierID,
		SupplierItemCode: req.SupplierItemCode,
		UnitPrice:        req.UnitPrice,
		MinimumOrderQty:  req.MinimumOrderQty,
		LeadTimeDays:     req.LeadTimeDays,
		IsPrimary:        req.IsPrimary,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if link.MinimumOrderQty == 0 {
		link.MinimumOrderQty = 1
	}

	if err := s.links.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("create item supplier: %w", err)
	}
	if link.IsPrimary {
		if err := s.links.DemotePrimaries(ctx, link.ItemID, link.ID); err != nil {
			return nil, fmt.Errorf("demote primaries: %w", err)
		}
	}
	return s.links.FindByID(ctx, link.ID)
}

// Update 更新关系记录
func (s *ItemSupplierService) Update(ctx context.Context, id string, req *ItemSupplierRequest) (*entity.ItemSupplier, error) {
	link, err := s.links.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, req.ItemID, req.SupplierID); err != nil {
		return nil, err
	}

	link.ItemID = req.ItemID
	link.SupplierID = req.SupplierID
	link.SupplierItemCode = req.SupplierItemCode
	link.UnitPrice = req.UnitPrice
	link.MinimumOrderQty = req.MinimumOrderQty
	link.LeadTimeDays = req.LeadTimeDays
	link.IsPrimary = req.IsPrimary
	link.UpdatedAt = time.Now()
	if link.MinimumOrderQty == 0 {
		link.MinimumOrderQty = 1
	}
	link.Item = nil
	link.Supplier = nil

	if err := s.links.Update(ctx, link); err != nil {
		return nil, fmt.Errorf("update item supplier: %w", err)
	}
	if link.IsPrimary {
		if err := s.links.DemotePrimaries(ctx, link.ItemID, link.ID); err != nil {
			return nil, fmt.Errorf("demote primaries: %w", err)
		}
	}
	return s.links.FindByID(ctx, id)
}

// Delete 删除关系记录
func (s *ItemSupplierService) Delete(ctx context.Context, id string) error {
	return s.links.Delete(ctx, id)
}

// List 获取关系列表
func (s *ItemSupplierService) List(ctx context.Context, page, pageSize int, filters repository.ItemSupplierFilters) (*ItemSupplierListResult, error) {
	links, total, err := s.links.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list item suppliers: %w", err)
	}
	return &ItemSupplierListResult{
		Items:      links,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}
