package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bitfantasy/nimo-mdm/internal/model/entity"
	"github.com/bitfantasy/nimo-mdm/internal/testutil"
)

func floatPtr(v float64) *float64 { return &v }

func TestItemCRUD(t *testing.T) {
	env := testutil.Setup(t, nil)

	w := env.DoRequest(t, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"item_code":     "RM-001",
		"name":          "Steel Plate",
		"minimum_stock": 10,
		"current_stock": 50,
		"standard_cost": 12.5,
	})
	testutil.RequireStatus(t, w, http.StatusCreated)

	var created entity.Item
	testutil.ParseResponse(t, w, &created)
	if created.ID == "" {
		t.Fatal("created item has no id")
	}
	if created.Unit != entity.ItemUnitEA {
		t.Errorf("default unit = %q, want %q", created.Unit, entity.ItemUnitEA)
	}
	if created.Status != entity.ItemStatusActive {
		t.Errorf("default status = %q, want %q", created.Status, entity.ItemStatusActive)
	}
	if created.CreatedBy == nil || *created.CreatedBy != env.UserID {
		t.Error("created_by not stamped with current user")
	}

	// 编码唯一
	w = env.DoRequest(t, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"item_code": "RM-001",
		"name":      "Another",
	})
	testutil.RequireStatus(t, w, http.StatusBadRequest)

	w = env.DoRequest(t, http.MethodGet, "/api/v1/items/"+created.ID, nil)
	testutil.RequireStatus(t, w, http.StatusOK)

	w = env.DoRequest(t, http.MethodPut, "/api/v1/items/"+created.ID, map[string]interface{}{
		"item_code":     "RM-001",
		"name":          "Steel Plate 2mm",
		"unit":          "kg",
		"minimum_stock": 20,
		"current_stock": 50,
	})
	testutil.RequireStatus(t, w, http.StatusOK)

	var updated entity.Item
	testutil.ParseResponse(t, w, &updated)
	if updated.Name != "Steel Plate 2mm" {
		t.Errorf("name = %q after update", updated.Name)
	}
	if updated.Unit != "kg" {
		t.Errorf("unit = %q after update", updated.Unit)
	}

	w = env.DoRequest(t, http.MethodDelete, "/api/v1/items/"+created.ID, nil)
	testutil.RequireStatus(t, w, http.StatusOK)

	w = env.DoRequest(t, http.MethodGet, "/api/v1/items/"+created.ID, nil)
	testutil.RequireStatus(t, w, http.StatusNotFound)
}

func TestItemUnknownCategoryRejected(t *testing.T) {
	env := testutil.Setup(t, nil)

	w := env.DoRequest(t, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"item_code":   "RM-002",
		"name":        "Bolt",
		"category_id": "does-not-exist",
	})
	testutil.RequireStatus(t, w, http.StatusBadRequest)
}

func TestLowStockItems(t *testing.T) {
	env := testutil.Setup(t, nil)

	env.SeedItem(t, "RM-010", 10, 5, nil)  // 低于安全线
	env.SeedItem(t, "RM-011", 10, 10, nil) // 等于安全线也算
	env.SeedItem(t, "RM-012", 10, 11, nil) // 高于安全线

	w := env.DoRequest(t, http.MethodGet, "/api/v1/items/low_stock", nil)
	testutil.RequireStatus(t, w, http.StatusOK)

	var result struct {
		Items []entity.Item `json:"items"`
		Total int           `json:"total"`
	}
	testutil.ParseResponse(t, w, &result)

	if result.Total != 2 {
		t.Fatalf("low stock total = %d, want 2", result.Total)
	}
	for _, item := range result.Items {
		if item.ItemCode == "RM-012" {
			t.Error("item above minimum stock reported as low stock")
		}
		if !item.IsLowStock {
			t.Errorf("item %s missing is_low_stock flag", item.ItemCode)
		}
	}
}

func TestItemListFilters(t *testing.T) {
	env := testutil.Setup(t, nil)

	env.SeedItem(t, "RM-020", 0, 10, nil)
	env.SeedItem(t, "FG-001", 0, 10, nil)

	w := env.DoRequest(t, http.MethodGet, "/api/v1/items?search=RM-020", nil)
	testutil.RequireStatus(t, w, http.StatusOK)

	var result struct {
		Items []entity.Item `json:"items"`
		Total int64         `json:"total"`
	}
	testutil.ParseResponse(t, w, &result)
	if result.Total != 1 || result.Items[0].ItemCode != "RM-020" {
		t.Fatalf("search result = %+v, want only RM-020", result)
	}
}

func TestItemExport(t *testing.T) {
	env := testutil.Setup(t, nil)
	env.SeedItem(t, "RM-030", 5, 8, floatPtr(3.5))

	w := env.DoRequest(t, http.MethodGet, "/api/v1/items/export", nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("content type = %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("export body is empty")
	}
}

func TestRequiresAuth(t *testing.T) {
	env := testutil.Setup(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", w.Code)
	}
}

func TestCategoryDeleteClearsItems(t *testing.T) {
	env := testutil.Setup(t, nil)

	w := env.DoRequest(t, http.MethodPost, "/api/v1/categories", map[string]interface{}{
		"name": "Raw Materials",
	})
	testutil.RequireStatus(t, w, http.StatusCreated)
	var category entity.Category
	testutil.ParseResponse(t, w, &category)

	w = env.DoRequest(t, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"item_code":   "RM-040",
		"name":        "Wire",
		"category_id": category.ID,
	})
	testutil.RequireStatus(t, w, http.StatusCreated)
	var item entity.Item
	testutil.ParseResponse(t, w, &item)

	w = env.DoRequest(t, http.MethodDelete, "/api/v1/categories/"+category.ID, nil)
	testutil.RequireStatus(t, w, http.StatusOK)

	w = env.DoRequest(t, http.MethodGet, "/api/v1/items/"+item.ID, nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	var after entity.Item
	testutil.ParseResponse(t, w, &after)
	if after.CategoryID != nil {
		t.Error("category_id not cleared after category deletion")
	}
}
