// Package external 对接第二数据源的物料补充信息。
// 主库只保存主数据，供应商实时库存、最近采购价等由外部系统提供，
// 按物料编码查询，查不到与查询失败是两种不同的结果。
package external

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNoData 外部库中不存在该物料编码的记录
var ErrNoData = errors.New("no external data for item code")

// ItemData 外部库物料补充信息，外部系统维护，本服务只读
type ItemData struct {
	ItemCode          string     `json:"item_code" gorm:"primaryKey;size:50"`
	SupplierName      string     `json:"supplier_name" gorm:"size:200"`
	SupplierCode      string     `json:"supplier_code" gorm:"size:50"`
	LeadTimeDays      int        `json:"lead_time_days"`
	MinimumOrderQty   float64    `json:"minimum_order_qty" gorm:"type:decimal(10,3)"`
	CurrentStock      float64    `json:"current_stock" gorm:"type:decimal(12,3)"`
	ReservedStock     float64    `json:"reserved_stock" gorm:"type:decimal(12,3)"`
	AvailableStock    float64    `json:"available_stock" gorm:"type:decimal(12,3)"`
	LastPurchasePrice *float64   `json:"last_purchase_price" gorm:"type:decimal(15,2)"`
	LastPurchaseDate  *time.Time `json:"last_purchase_date"`
	QualityGrade      string     `json:"quality_grade" gorm:"size:10"`
	ExternalUpdatedAt *time.Time `json:"external_updated_at"`
}

func (ItemData) TableName() string {
	return "external_item_data"
}

// Client 外部数据查询接口，物料编码对应零或一条记录
type Client interface {
	ItemData(ctx context.Context, itemCode string) (*ItemData, error)
}

// DBClient 基于第二个数据库连接的外部数据客户端
type DBClient struct {
	db *gorm.DB
}

// NewDBClient 创建外部库客户端
func NewDBClient(db *gorm.DB) *DBClient {
	return &DBClient{db: db}
}

// ItemData 按物料编码查询外部记录
func (c *DBClient) ItemData(ctx context.Context, itemCode string) (*ItemData, error) {
	var data ItemData
	err := c.db.WithContext(ctx).Where("item_code = ?", itemCode).First(&data).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoData
		}
		return nil, err
	}
	return &data, nil
}

const cacheKeyPrefix = "extitem:"

// CachedClient 带redis读穿缓存的外部数据客户端
type CachedClient struct {
	inner Client
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedClient 包装客户端加缓存
func NewCachedClient(inner Client, rdb *redis.Client, ttl time.Duration) *CachedClient {
	return &CachedClient{inner: inner, rdb: rdb, ttl: ttl}
}

// ItemData 先查缓存，未命中回源并写入
func (c *CachedClient) ItemData(ctx context.Context, itemCode string) (*ItemData, error) {
	key := cacheKeyPrefix + itemCode

	if payload, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var data ItemData
		if err := json.Unmarshal(payload, &data); err == nil {
			return &data, nil
		}
	}

	data, err := c.inner.ItemData(ctx, itemCode)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(data); err == nil {
		// 缓存写失败不影响请求
		c.rdb.Set(ctx, key, payload, c.ttl)
	}
	return data, nil
}
