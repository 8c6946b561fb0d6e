package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mdm/internal/config"
	"github.com/bitfantasy/nimo-mdm/internal/external"
	"github.com/bitfantasy/nimo-mdm/internal/model/entity"
	"github.com/bitfantasy/nimo-mdm/internal/repository"
	"github.com/redis/go-redis/v9"
)

// Services 服务集合
type Services struct {
	Auth          *AuthService
	Category      *CategoryService
	Item          *ItemService
	Supplier      *SupplierService
	ItemSupplier  *ItemSupplierService
	BOM           *BOMService
	BOMValidation *BOMValidationService
	BOMHistory    *BOMHistoryService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, extClient external.Client, rdb *redis.Client, cfg *config.Config) *Services {
	// 配置了redis时为外部查询加缓存
	if extClient != nil && rdb != nil {
		ttl := cfg.ExternalDB.CacheTTL
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		extClient = external.NewCachedClient(extClient, rdb, ttl)
	}

	return &Services{
		Auth:          NewAuthService(repos.User, cfg),
		Category:      NewCategoryService(repos.Category),
		Item:          NewItemService(repos.Item, repos.Category),
		Supplier:      NewSupplierService(repos.Supplier),
		ItemSupplier:  NewItemSupplierService(repos.ItemSupplier, repos.Item, repos.Supplier),
		BOM:           NewBOMService(repos.BOM, repos.BOMComponent, repos.Item, repos.BOMValidation, repos.BOMHistory, extClient),
		BOMValidation: NewBOMValidationService(repos.BOMValidation, repos.BOM),
		BOMHistory:    NewBOMHistoryService(repos.BOMHistory),
	}
}

// actorRef 空用户ID转为空引用
func actorRef(userID string) *string {
	if userID == "" {
		return nil
	}
	return &userID
}

// totalPages 计算总页数
func totalPages(total int64, pageSize int) int {
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}

// CategoryService 类别服务
type CategoryService struct {
	repo *repository.CategoryRepository
}

// NewCategoryService 创建类别服务
func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CategoryRequest 类别创建/更新请求
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// CategoryListResult 类别列表结果
type CategoryListResult struct {
	Items      []entity.Category `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// Get 获取类别
func (s *CategoryService) Get(ctx context.Context, id string) (*entity.Category, error) {
	return s.repo.FindByID(ctx, id)
}

// Create 创建类别
func (s *CategoryService) Create(ctx context.Context, req *CategoryRequest) (*entity.Category, error) {
	now := time.Now()
	category := &entity.Category{
		ID:          repository.NewID(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// Update 更新类别
func (s *CategoryService) Update(ctx context.Context, id string, req *CategoryRequest) (*entity.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = req.Name
	category.Description = req.Description
	category.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

// Delete 删除类别
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// List 获取类别列表
func (s *CategoryService) List(ctx context.Context, page, pageSize int, keyword, ordering string) (*CategoryListResult, error) {
	categories, total, err := s.repo.List(ctx, page, pageSize, keyword, ordering)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return &CategoryListResult{
		Items:      categories,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}
