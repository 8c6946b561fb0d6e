package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bitfantasy/nimo-mdm/internal/model/entity"
	"github.com/bitfantasy/nimo-mdm/internal/repository"
	"github.com/bitfantasy/nimo-mdm/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ListBOMs BOM列表
func (h *Handlers) ListBOMs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := repository.BOMFilters{
		Keyword:      c.Query("search"),
		Status:       c.Query("status"),
		ParentItemID: c.Query("parent_item_id"),
		IsDefault:    boolQuery(c, "is_default"),
	}
	result, err := h.services.BOM.List(c.Request.Context(), page, pageSize, filters, c.Query("ordering"))
	if err != nil {
		h.logger.Error("list boms failed", zap.Error(err))
		Error(c, err)
		return
	}
	Success(c, result)
}

// GetBOM BOM详情
func (h *Handlers) GetBOM(c *gin.Context) {
	bom, err := h.services.BOM.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, bom)
}

// CreateBOM 创建BOM
func (h *Handlers) CreateBOM(c *gin.Context) {
	var req service.BOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	bom, err := h.services.BOM.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, bom)
}

// UpdateBOM 更新BOM
func (h *Handlers) UpdateBOM(c *gin.Context) {
	var req service.BOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	bom, err := h.services.BOM.Update(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, bom)
}

// DeleteBOM 删除BOM
func (h *Handlers) DeleteBOM(c *gin.Context) {
	if err := h.services.BOM.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}

// transitionRequest 状态流转请求体，动作由路由决定
type transitionRequest struct {
	Reason string `json:"reason"`
}

// transition 执行流转动作
func (h *Handlers) transition(c *gin.Context, action string) {
	var req transitionRequest
	// 空请求体也可以
	_ = c.ShouldBindJSON(&req)

	bom, err := h.services.BOM.Transition(c.Request.Context(), c.Param("id"), action, GetUserID(c), req.Reason)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, bom)
}

// SubmitBOM 草稿提交审批
func (h *Handlers) SubmitBOM(c *gin.Context) {
	h.transition(c, entity.BOMActionSubmit)
}

// ApproveBOM 审批通过
func (h *Handlers) ApproveBOM(c *gin.Context) {
	h.transition(c, entity.BOMActionApprove)
}

// ActivateBOM 启用
func (h *Handlers) ActivateBOM(c *gin.Context) {
	h.transition(c, entity.BOMActionActivate)
}

// DeactivateBOM 停用
func (h *Handlers) DeactivateBOM(c *gin.Context) {
	h.transition(c, entity.BOMActionDeactivate)
}

// ValidateBOM 执行BOM验证
func (h *Handlers) ValidateBOM(c *gin.Context) {
	results, err := h.services.BOM.Validate(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"results": results})
}

// BOMWithExternalData BOM详情合并外部数据
func (h *Handlers) BOMWithExternalData(c *gin.Context) {
	result, err := h.services.BOM.WithExternalData(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, result)
}

// ExportBOM 导出BOM行项Excel
func (h *Handlers) ExportBOM(c *gin.Context) {
	bom, err := h.services.BOM.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "BOM"
	f.SetSheetName("Sheet1", sheet)
	headers := []string{"Sequence", "Item Code", "Item Name", "Type", "Quantity", "Unit", "Reference", "Optional", "Phantom", "Extended Cost"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, component := range bom.Components {
		itemCode, itemName := component.ItemID, ""
		if component.Item != nil {
			itemCode = component.Item.ItemCode
			itemName = component.Item.Name
		}
		values := []interface{}{
			component.Sequence, itemCode, itemName, component.ComponentType,
			component.Quantity, component.UnitOfMeasure, component.ReferenceDesignator,
			component.IsOptional, component.IsPhantom, component.ExtendedCost,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	filename := fmt.Sprintf("bom_%s_%s.xlsx", bom.BOMCode, time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("write bom export failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}
