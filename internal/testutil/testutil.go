// Package testutil 测试公共设施，使用内存sqlite，无需外部依赖。
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-mdm/internal/config"
	"github.com/bitfantasy/nimo-mdm/internal/external"
	"github.com/bitfantasy/nimo-mdm/internal/handler"
	"github.com/bitfantasy/nimo-mdm/internal/middleware"
	"github.com/bitfantasy/nimo-mdm/internal/model/entity"
	"github.com/bitfantasy/nimo-mdm/internal/repository"
	"github.com/bitfantasy/nimo-mdm/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const jwtSecret = "test-secret"

// Env 测试环境
type Env struct {
	DB       *gorm.DB
	Repos    *repository.Repositories
	Services *service.Services
	Router   *gin.Engine
	UserID   string
	Token    string
}

// SetupDB 创建内存数据库并建表
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&entity.User{},
		&entity.Category{},
		&entity.Item{},
		&entity.Supplier{},
		&entity.ItemSupplier{},
		&entity.BOM{},
		&entity.BOMComponent{},
		&entity.BOMValidation{},
		&entity.BOMChangeHistory{},
		&external.ItemData{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// Setup 创建完整测试环境，extClient可为nil
func Setup(t *testing.T, extClient external.Client) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := SetupDB(t)
	repos := repository.NewRepositories(db)

	cfg := &config.Config{}
	cfg.JWT.Secret = jwtSecret
	cfg.JWT.ExpireHours = time.Hour

	services := service.NewServices(repos, extClient, nil, cfg)

	user := SeedUser(t, db, "tester")
	token, _, err := middleware.GenerateToken(jwtSecret, time.Hour, user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	h := handler.New(services, zap.NewNop())
	router := handler.NewRouter(h, zap.NewNop(), jwtSecret)

	return &Env{
		DB:       db,
		Repos:    repos,
		Services: services,
		Router:   router,
		UserID:   user.ID,
		Token:    token,
	}
}

// SeedUser 创建测试用户，密码固定为password123
func SeedUser(t *testing.T, db *gorm.DB, username string) *entity.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now()
	user := &entity.User{
		ID:           repository.NewID(),
		Username:     username,
		Name:         username,
		PasswordHash: string(hash),
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedItem 创建测试物料
func (e *Env) SeedItem(t *testing.T, code string, minStock, curStock int, standardCost *float64) *entity.Item {
	t.Helper()

	item, err := e.Services.Item.Create(context.Background(), e.UserID, &service.ItemRequest{
		ItemCode:     code,
		Name:         "item " + code,
		MinimumStock: minStock,
		CurrentStock: curStock,
		StandardCost: standardCost,
	})
	if err != nil {
		t.Fatalf("seed item %s: %v", code, err)
	}
	return item
}

// SeedBOM 为物料创建测试BOM
func (e *Env) SeedBOM(t *testing.T, code, parentItemID string) *entity.BOM {
	t.Helper()

	bom, err := e.Services.BOM.Create(context.Background(), e.UserID, &service.BOMRequest{
		BOMCode:      code,
		Name:         "bom " + code,
		ParentItemID: parentItemID,
	})
	if err != nil {
		t.Fatalf("seed bom %s: %v", code, err)
	}
	return bom
}

// SeedComponent 为BOM创建测试行项
func (e *Env) SeedComponent(t *testing.T, bomID, itemID string, quantity float64) *entity.BOMComponent {
	t.Helper()

	component, err := e.Services.BOM.CreateComponent(context.Background(), e.UserID, &service.BOMComponentRequest{
		BOMID:    bomID,
		ItemID:   itemID,
		Quantity: quantity,
	})
	if err != nil {
		t.Fatalf("seed component: %v", err)
	}
	return component
}

// DoRequest 发起测试请求，body非空时编码为JSON
func (e *Env) DoRequest(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if e.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.Token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// ParseResponse 解析响应外壳并将data解码到out
func ParseResponse(t *testing.T, w *httptest.ResponseRecorder, out interface{}) *handler.Response {
	t.Helper()

	var resp struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v, body: %s", err, w.Body.String())
	}
	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			t.Fatalf("decode response data: %v, data: %s", err, string(resp.Data))
		}
	}
	return &handler.Response{Code: resp.Code, Message: resp.Message}
}

// RequireStatus 断言HTTP状态码
func RequireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, want, w.Body.String())
	}
}
