package handler

import (
	"github.com/bitfantasy/nimo-mdm/internal/repository"
	"github.com/bitfantasy/nimo-mdm/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListBOMComponents 行项列表
func (h *Handlers) ListBOMComponents(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := repository.BOMComponentFilters{
		Keyword:       c.Query("search"),
		BOMID:         c.Query("bom_id"),
		ComponentType: c.Query("component_type"),
		IsOptional:    boolQuery(c, "is_optional"),
		IsPhantom:     boolQuery(c, "is_phantom"),
	}
	result, err := h.services.BOM.ListComponents(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("list bom components failed", zap.Error(err))
		Error(c, err)
		return
	}
	Success(c, result)
}

// GetBOMComponent 行项详情
func (h *Handlers) GetBOMComponent(c *gin.Context) {
	component, err := h.services.BOM.GetComponent(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, component)
}

// CreateBOMComponent 创建行项
func (h *Handlers) CreateBOMComponent(c *gin.Context) {
	var req service.BOMComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	component, err := h.services.BOM.CreateComponent(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, component)
}

// UpdateBOMComponent 更新行项
func (h *Handlers) UpdateBOMComponent(c *gin.Context) {
	var req service.BOMComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	component, err := h.services.BOM.UpdateComponent(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, component)
}

// DeleteBOMComponent 删除行项
func (h *Handlers) DeleteBOMComponent(c *gin.Context) {
	if err := h.services.BOM.DeleteComponent(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}

// ListBOMValidations 验证记录列表
func (h *Handlers) ListBOMValidations(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := repository.BOMValidationFilters{
		Keyword:        c.Query("search"),
		BOMID:          c.Query("bom_id"),
		ValidationType: c.Query("validation_type"),
		Result:         c.Query("result"),
	}
	result, err := h.services.BOMValidation.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("list bom validations failed", zap.Error(err))
		Error(c, err)
		return
	}
	Success(c, result)
}

// GetBOMValidation 验证记录详情
func (h *Handlers) GetBOMValidation(c *gin.Context) {
	validation, err := h.services.BOMValidation.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, validation)
}

// CreateBOMValidation 手工追加验证记录
func (h *Handlers) CreateBOMValidation(c *gin.Context) {
	var req service.BOMValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	validation, err := h.services.BOMValidation.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, validation)
}

// ListBOMChangeHistory 变更记录列表
func (h *Handlers) ListBOMChangeHistory(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := repository.BOMChangeHistoryFilters{
		Keyword:    c.Query("search"),
		BOMID:      c.Query("bom_id"),
		ChangeType: c.Query("change_type"),
	}
	result, err := h.services.BOMHistory.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("list bom change history failed", zap.Error(err))
		Error(c, err)
		return
	}
	Success(c, result)
}

// GetBOMChangeHistory 变更记录详情
func (h *Handlers) GetBOMChangeHistory(c *gin.Context) {
	history, err := h.services.BOMHistory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, history)
}
