package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/bitfantasy/nimo-mdm/internal/repository"
	"github.com/bitfantasy/nimo-mdm/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

// BadRequest 参数或业务校验错误
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Code: 40000, Message: message})
}

// Unauthorized 未认证
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Response{Code: 40100, Message: message})
}

// NotFound 资源不存在
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{Code: 40400, Message: message})
}

// Conflict 并发冲突
func Conflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, Response{Code: 40900, Message: message})
}

// Internal 服务内部错误
func Internal(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{Code: 50000, Message: message})
}

// Error 按错误类型归类响应
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, repository.ErrConflict):
		Conflict(c, err.Error())
	case errors.Is(err, repository.ErrInvalidTransition):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		Unauthorized(c, err.Error())
	case errors.Is(err, gorm.ErrDuplicatedKey):
		BadRequest(c, "duplicate value violates a uniqueness constraint")
	default:
		Internal(c, "internal server error")
	}
}

// Handlers 处理器集合
type Handlers struct {
	services *service.Services
	logger   *zap.Logger

	// ReadyCheck 就绪探针依赖检查，nil时视为就绪
	ReadyCheck func(ctx context.Context) error
}

// New 创建处理器集合
func New(services *service.Services, logger *zap.Logger) *Handlers {
	return &Handlers{services: services, logger: logger}
}

// GetUserID 从上下文取当前用户ID
func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// GetPagination 解析分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// boolQuery 解析可选布尔查询参数
func boolQuery(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}
