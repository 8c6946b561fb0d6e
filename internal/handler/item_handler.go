package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bitfantasy/nimo-mdm/internal/repository"
	"github.com/bitfantasy/nimo-mdm/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ListCategories 类别列表
func (h *Handlers) ListCategories(c *gin.Context) {
	page, pageSize := GetPagination(c)
	result, err := h.services.Category.List(c.Request.Context(), page, pageSize, c.Query("search"), c.Query("ordering"))
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))
		Error(c, err)
		return
	}
	Success(c, result)
}

// GetCategory 类别详情
func (h *Handlers) GetCategory(c *gin.Context) {
	category, err := h.services.Category.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, category)
}

// CreateCategory 创建类别
func (h *Handlers) CreateCategory(c *gin.Context) {
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	category, err := h.services.Category.Create(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, category)
}

// UpdateCategory 更新类别
func (h *Handlers) UpdateCategory(c *gin.Context) {
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	category, err := h.services.Category.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, category)
}

// DeleteCategory 删除类别
func (h *Handlers) DeleteCategory(c *gin.Context) {
	if err := h.services.Category.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}

// ListItems 物料列表
func (h *Handlers) ListItems(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := repository.ItemFilters{
		Keyword:    c.Query("search"),
		Status:     c.Query("status"),
		CategoryID: c.Query("category_id"),
		Unit:       c.Query("unit"),
	}
	result, err := h.services.Item.List(c.Request.Context(), page, pageSize, filters, c.Query("ordering"))
	if err != nil {
		h.logger.Error("list items failed", zap.Error(err))
		Error(c, err)
		return
	}
	Success(c, result)
}

// GetItem 物料详情
func (h *Handlers) GetItem(c *gin.Context) {
	item, err := h.services.Item.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, item)
}

// CreateItem 创建物料
func (h *Handlers) CreateItem(c *gin.Context) {
	var req service.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	item, err := h.services.Item.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, item)
}

// UpdateItem 更新物料
func (h *Handlers) UpdateItem(c *gin.Context) {
	var req service.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	item, err := h.services.Item.Update(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, item)
}

// DeleteItem 删除物料
func (h *Handlers) DeleteItem(c *gin.Context) {
	if err := h.services.Item.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}

// LowStockItems 库存不高于安全线的物料
func (h *Handlers) LowStockItems(c *gin.Context) {
	items, err := h.services.Item.LowStock(c.Request.Context())
	if err != nil {
		h.logger.Error("list low stock items failed", zap.Error(err))
		Error(c, err)
		return
	}
	Success(c, gin.H{"items": items, "total": len(items)})
}

// ExportItems 导出物料Excel
func (h *Handlers) ExportItems(c *gin.Context) {
	items, err := h.services.Item.ListAll(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Items"
	f.SetSheetName("Sheet1", sheet)
	headers := []string{"Item Code", "Name", "Category", "Unit", "Status", "Minimum Stock", "Current Stock", "Standard Cost", "Low Stock"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, item := range items {
		categoryName := ""
		if item.Category != nil {
			categoryName = item.Category.Name
		}
		standardCost := ""
		if item.StandardCost != nil {
			standardCost = fmt.Sprintf("%.2f", *item.StandardCost)
		}
		values := []interface{}{
			item.ItemCode, item.Name, categoryName, item.Unit, item.Status,
			item.MinimumStock, item.CurrentStock, standardCost, item.IsLowStock,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	filename := fmt.Sprintf("items_%s.xlsx", time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("write items export failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}
