package handler_test

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/nimo-mdm/internal/model/entity"
	"github.com/bitfantasy/nimo-mdm/internal/testutil"
)

func createSupplier(t *testing.T, env *testutil.Env, name string) *entity.Supplier {
	t.Helper()
	w := env.DoRequest(t, http.MethodPost, "/api/v1/suppliers", map[string]interface{}{
		"name": name,
	})
	testutil.RequireStatus(t, w, http.StatusCreated)
	var supplier entity.Supplier
	testutil.ParseResponse(t, w, &supplier)
	return &supplier
}

func createLink(t *testing.T, env *testutil.Env, itemID, supplierID string, isPrimary bool) *entity.ItemSupplier {
	t.Helper()
	w := env.DoRequest(t, http.MethodPost, "/api/v1/item-suppliers", map[string]interface{}{
		"item_id":     itemID,
		"supplier_id": supplierID,
		"is_primary":  isPrimary,
	})
	testutil.RequireStatus(t, w, http.StatusCreated)
	var link entity.ItemSupplier
	testutil.ParseResponse(t, w, &link)
	return &link
}

func TestSupplierCRUD(t *testing.T) {
	env := testutil.Setup(t, nil)

	supplier := createSupplier(t, env, "Acme Metals")
	if !supplier.IsActive {
		t.Error("new supplier should default to active")
	}

	w := env.DoRequest(t, http.MethodPut, "/api/v1/suppliers/"+supplier.ID, map[string]interface{}{
		"name":      "Acme Metals Ltd",
		"is_active": false,
	})
	testutil.RequireStatus(t, w, http.StatusOK)
	var updated entity.Supplier
	testutil.ParseResponse(t, w, &updated)
	if updated.IsActive {
		t.Error("is_active not updated")
	}

	// 停用供应商过滤
	createSupplier(t, env, "Beta Plastics")
	w = env.DoRequest(t, http.MethodGet, "/api/v1/suppliers?is_active=true", nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	var result struct {
		Items []entity.Supplier `json:"items"`
		Total int64             `json:"total"`
	}
	testutil.ParseResponse(t, w, &result)
	if result.Total != 1 || result.Items[0].Name != "Beta Plastics" {
		t.Fatalf("active filter result = %+v", result)
	}

	w = env.DoRequest(t, http.MethodDelete, "/api/v1/suppliers/"+supplier.ID, nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	w = env.DoRequest(t, http.MethodGet, "/api/v1/suppliers/"+supplier.ID, nil)
	testutil.RequireStatus(t, w, http.StatusNotFound)
}

func TestItemSupplierUniqueness(t *testing.T) {
	env := testutil.Setup(t, nil)

	item := env.SeedItem(t, "RM-200", 0, 10, nil)
	supplier := createSupplier(t, env, "Gamma Supply")
	createLink(t, env, item.ID, supplier.ID, false)

	// 同一物料同一供应商只能有一条关系
	w := env.DoRequest(t, http.MethodPost, "/api/v1/item-suppliers", map[string]interface{}{
		"item_id":     item.ID,
		"supplier_id": supplier.ID,
	})
	testutil.RequireStatus(t, w, http.StatusBadRequest)

	// 不存在的引用拒绝
	w = env.DoRequest(t, http.MethodPost, "/api/v1/item-suppliers", map[string]interface{}{
		"item_id":     "missing",
		"supplier_id": supplier.ID,
	})
	testutil.RequireStatus(t, w, http.StatusBadRequest)
}

func TestItemSupplierPrimaryDemotion(t *testing.T) {
	env := testutil.Setup(t, nil)

	item := env.SeedItem(t, "RM-201", 0, 10, nil)
	first := createSupplier(t, env, "First Source")
	second := createSupplier(t, env, "Second Source")

	linkA := createLink(t, env, item.ID, first.ID, true)
	linkB := createLink(t, env, item.ID, second.ID, true)

	// 后设的主供应商顶掉先前的
	w := env.DoRequest(t, http.MethodGet, "/api/v1/item-suppliers/"+linkA.ID, nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	var reloaded entity.ItemSupplier
	testutil.ParseResponse(t, w, &reloaded)
	if reloaded.IsPrimary {
		t.Error("previous primary link not demoted")
	}

	w = env.DoRequest(t, http.MethodGet, "/api/v1/item-suppliers/"+linkB.ID, nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	testutil.ParseResponse(t, w, &reloaded)
	if !reloaded.IsPrimary {
		t.Error("new primary link lost its flag")
	}
}

func TestSupplierDeleteCascadesLinks(t *testing.T) {
	env := testutil.Setup(t, nil)

	item := env.SeedItem(t, "RM-202", 0, 10, nil)
	supplier := createSupplier(t, env, "Delta Parts")
	link := createLink(t, env, item.ID, supplier.ID, false)

	w := env.DoRequest(t, http.MethodDelete, "/api/v1/suppliers/"+supplier.ID, nil)
	testutil.RequireStatus(t, w, http.StatusOK)

	w = env.DoRequest(t, http.MethodGet, "/api/v1/item-suppliers/"+link.ID, nil)
	testutil.RequireStatus(t, w, http.StatusNotFound)
}
