package handler

import (
	"github.com/bitfantasy/nimo-mdm/internal/repository"
	"github.com/bitfantasy/nimo-mdm/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListSuppliers 供应商列表
func (h *Handlers) ListSuppliers(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := repository.SupplierFilters{
		Keyword:  c.Query("search"),
		IsActive: boolQuery(c, "is_active"),
	}
	result, err := h.services.Supplier.List(c.Request.Context(), page, pageSize, filters, c.Query("ordering"))
	if err != nil {
		h.logger.Error("list suppliers failed", zap.Error(err))
		Error(c, err)
		return
	}
	Success(c, result)
}

// GetSupplier 供应商详情
func (h *Handlers) GetSupplier(c *gin.Context) {
	supplier, err := h.services.Supplier.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, supplier)
}

// CreateSupplier 创建供应商
func (h *Handlers) CreateSupplier(c *gin.Context) {
	var req service.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	supplier, err := h.services.Supplier.Create(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, supplier)
}

// UpdateSupplier 更新供应商
func (h *Handlers) UpdateSupplier(c *gin.Context) {
	var req service.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	supplier, err := h.services.Supplier.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, supplier)
}

// DeleteSupplier 删除供应商
func (h *Handlers) DeleteSupplier(c *gin.Context) {
	if err := h.services.Supplier.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}

// ListItemSuppliers 物料-供应商关系列表
func (h *Handlers) ListItemSuppliers(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := repository.ItemSupplierFilters{
		Keyword:    c.Query("search"),
		ItemID:     c.Query("item_id"),
		SupplierID: c.Query("supplier_id"),
		IsPrimary:  boolQuery(c, "is_primary"),
	}
	result, err := h.services.ItemSupplier.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("list item suppliers failed", zap.Error(err))
		Error(c, err)
		return
	}
	Success(c, result)
}

// GetItemSupplier 关系详情
func (h *Handlers) GetItemSupplier(c *gin.Context) {
	link, err := h.services.ItemSupplier.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, link)
}

// CreateItemSupplier 创建关系
func (h *Handlers) CreateItemSupplier(c *gin.Context) {
	var req service.ItemSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	link, err := h.services.ItemSupplier.Create(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, link)
}

// UpdateItemSupplier 更新关系
func (h *Handlers) UpdateItemSupplier(c *gin.Context) {
	var req service.ItemSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	link, err := h.services.ItemSupplier.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, link)
}

// DeleteItemSupplier 删除关系
func (h *Handlers) DeleteItemSupplier(c *gin.Context) {
	if err := h.services.ItemSupplier.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}
