package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/bitfantasy/nimo-mdm/internal/external"
	"github.com/bitfantasy/nimo-mdm/internal/model/entity"
	"github.com/bitfantasy/nimo-mdm/internal/repository"
	"github.com/bitfantasy/nimo-mdm/internal/testutil"
)

func TestBOMWorkflow(t *testing.T) {
	env := testutil.Setup(t, nil)

	parent := env.SeedItem(t, "FG-100", 0, 10, nil)
	bom := env.SeedBOM(t, "BOM-100", parent.ID)
	if bom.Status != entity.BOMStatusDraft {
		t.Fatalf("new bom status = %q, want draft", bom.Status)
	}

	// 草稿不能直接审批
	w := env.DoRequest(t, http.MethodPost, "/api/v1/boms/"+bom.ID+"/approve", nil)
	testutil.RequireStatus(t, w, http.StatusBadRequest)

	// 失败的动作不改变状态
	w = env.DoRequest(t, http.MethodGet, "/api/v1/boms/"+bom.ID, nil)
	var current entity.BOM
	testutil.ParseResponse(t, w, &current)
	if current.Status != entity.BOMStatusDraft {
		t.Fatalf("status changed by rejected action: %q", current.Status)
	}

	w = env.DoRequest(t, http.MethodPost, "/api/v1/boms/"+bom.ID+"/submit", map[string]interface{}{
		"reason": "ready for review",
	})
	testutil.RequireStatus(t, w, http.StatusOK)
	testutil.ParseResponse(t, w, &current)
	if current.Status != entity.BOMStatusPending {
		t.Fatalf("status after submit = %q, want pending", current.Status)
	}

	w = env.DoRequest(t, http.MethodPost, "/api/v1/boms/"+bom.ID+"/approve", nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	testutil.ParseResponse(t, w, &current)
	if current.Status != entity.BOMStatusApproved {
		t.Fatalf("status after approve = %q, want approved", current.Status)
	}
	if current.ApprovedBy == nil || *current.ApprovedBy != env.UserID {
		t.Error("approved_by not stamped")
	}
	if current.ApprovedAt == nil {
		t.Error("approved_at not stamped")
	}

	w = env.DoRequest(t, http.MethodPost, "/api/v1/boms/"+bom.ID+"/activate", nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	testutil.ParseResponse(t, w, &current)
	if current.Status != entity.BOMStatusActive {
		t.Fatalf("status after activate = %q, want active", current.Status)
	}

	w = env.DoRequest(t, http.MethodPost, "/api/v1/boms/"+bom.ID+"/deactivate", nil)
	testutil.RequireStatus(t, w, http.StatusOK)
	testutil.ParseResponse(t, w, &current)
	if current.Status != entity.BOMStatusInactive {
		t.Fatalf("status after deactivate = %q, want inactive", current.Status)
	}

	// 流转全程留痕
	histories, _, err := env.Repos.BOMHistory.List(context.Background(), 1, 50, repository.BOMChangeHistoryFilters{BOMID: bom.ID})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	types := map[string]bool{}
	for _, h := range histories {
		types[h.ChangeType] = true
	}
	for _, want := range []string{"create", "submit", "approve", "activate", "deactivate"} {
		if !types[want] {
			t.Errorf("missing %s history record", want)
		}
	}
}

func TestBOMTransitionConflict(t *testing.T) {
	env := testutil.Setup(t, nil)

	parent := env.SeedItem(t, "FG-101", 0, 10, nil)
	bom := env.SeedBOM(t, "BOM-101", parent.ID)

	// 条件更新的起始状态不匹配时零行生效
	err := env.Repos.BOM.TransitionStatus(context.Background(), bom.ID, entity.BOMStatusPending, entity.BOMStatusApproved, nil)
	if !errors.Is(err, repository.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}

	var after entity.BOM
	if err := env.DB.First(&after, "id = ?", bom.ID).Error; err != nil {
		t.Fatalf("reload bom: %v", err)
	}
	if after.Status != entity.BOMStatusDraft {
		t.Fatalf("status mutated by failed cas update: %q", after.Status)
	}
}

func TestBOMUniqueness(t *testing.T) {
	env := testutil.Setup(t, nil)

	parent := env.SeedItem(t, "FG-102", 0, 10, nil)
	env.SeedBOM(t, "BOM-102", parent.ID)

	// 同一物料同一版本只能有一份BOM
	w := env.DoRequest(t, http.MethodPost, "/api/v1/boms", map[string]interface{}{
		"bom_code":       "BOM-102B",
		"name":           "duplicate version",
		"parent_item_id": parent.ID,
		"version":        "1.0",
	})
	testutil.RequireStatus(t, w, http.StatusBadRequest)

	// 换版本可以
	w = env.DoRequest(t, http.MethodPost, "/api/v1/boms", map[string]interface{}{
		"bom_code":       "BOM-102C",
		"name":           "next version",
		"parent_item_id": parent.ID,
		"version":        "2.0",
	})
	testutil.RequireStatus(t, w, http.StatusCreated)
}

func TestBOMComponentRules(t *testing.T) {
	env := testutil.Setup(t, nil)

	parent := env.SeedItem(t, "FG-103", 0, 10, nil)
	part := env.SeedItem(t, "RM-103", 0, 10, nil)
	bom := env.SeedBOM(t, "BOM-103", parent.ID)

	env.SeedComponent(t, bom.ID, part.ID, 2)

	// 同一物料在一份BOM中只能出现一次
	w := env.DoRequest(t, http.MethodPost, "/api/v1/bom-components", map[string]interface{}{
		"bom_id":   bom.ID,
		"item_id":  part.ID,
		"quantity": 5,
	})
	testutil.RequireStatus(t, w, http.StatusBadRequest)

	// 父物料不能作为自己的构成
	w = env.DoRequest(t, http.MethodPost, "/api/v1/bom-components", map[string]interface{}{
		"bom_id":   bom.ID,
		"item_id":  parent.ID,
		"quantity": 1,
	})
	testutil.RequireStatus(t, w, http.StatusBadRequest)

	// 数量必须为正
	w = env.DoRequest(t, http.MethodPost, "/api/v1/bom-components", map[string]interface{}{
		"bom_id":   bom.ID,
		"item_id":  part.ID,
		"quantity": 0,
	})
	testutil.RequireStatus(t, w, http.StatusBadRequest)
}

func TestBOMStats(t *testing.T) {
	env := testutil.Setup(t, nil)

	parent := env.SeedItem(t, "FG-104", 0, 10, nil)
	costed := env.SeedItem(t, "RM-104", 0, 10, floatPtr(2.5))
	uncosted := env.SeedItem(t, "RM-105", 0, 10, nil)
	bom := env.SeedBOM(t, "BOM-104", parent.ID)

	env.SeedComponent(t, bom.ID, costed.ID, 4)   // 10.0
	env.SeedComponent(t, bom.ID, uncosted.ID, 3) // 无成本按0计

	w := env.DoRequest(t, http.MethodGet, "/api/v1/boms/"+bom.ID, nil)
	testutil.RequireStatus(t, w, http.StatusOK)

	var result entity.BOM
	testutil.ParseResponse(t, w, &result)
	if result.TotalComponents != 2 {
		t.Errorf("total_components = %d, want 2", result.TotalComponents)
	}
	if result.TotalCost != 10.0 {
		t.Errorf("total_cost = %v, want 10.0", result.TotalCost)
	}

	// 行项扩展成本
	for _, component := range result.Components {
		if component.ItemID == costed.ID && component.ExtendedCost != 10.0 {
			t.Errorf("extended_cost = %v, want 10.0", component.ExtendedCost)
		}
		if component.ItemID == uncosted.ID && component.ExtendedCost != 0 {
			t.Errorf("extended_cost for uncosted item = %v, want 0", component.ExtendedCost)
		}
	}
}

func TestBOMValidate(t *testing.T) {
	env := testutil.Setup(t, nil)

	parent := env.SeedItem(t, "FG-106", 0, 10, nil)
	bom := env.SeedBOM(t, "BOM-106", parent.ID)

	// 空BOM结构验证失败
	w := env.DoRequest(t, http.MethodPost, "/api/v1/boms/"+bom.ID+"/validate", nil)
	testutil.RequireStatus(t, w, http.StatusOK)

	var result struct {
		Results []entity.BOMValidation `json:"results"`
	}
	testutil.ParseResponse(t, w, &result)
	if len(result.Results) != 4 {
		t.Fatalf("validation count = %d, want 4", len(result.Results))
	}
	byType := map[string]entity.BOMValidation{}
	for _, v := range result.Results {
		byType[v.ValidationType] = v
	}
	if byType[entity.ValidationTypeStructure].Result != entity.ValidationResultFail {
		t.Errorf("structure result = %q, want fail for empty bom", byType[entity.ValidationTypeStructure].Result)
	}

	// 验证记录落库
	validations, total, err := env.Repos.BOMValidation.List(context.Background(), 1, 20, repository.BOMValidationFilters{BOMID: bom.ID})
	if err != nil {
		t.Fatalf("list validations: %v", err)
	}
	if total != 4 || len(validations) != 4 {
		t.Fatalf("stored validations = %d, want 4", total)
	}
}

// fakeExternalClient 测试用外部数据客户端
type fakeExternalClient struct {
	data map[string]*external.ItemData
	err  error
}

func (f *fakeExternalClient) ItemData(_ context.Context, itemCode string) (*external.ItemData, error) {
	if f.err != nil {
		return nil, f.err
	}
	if data, ok := f.data[itemCode]; ok {
		return data, nil
	}
	return nil, external.ErrNoData
}

func TestBOMWithExternalData(t *testing.T) {
	client := &fakeExternalClient{
		data: map[string]*external.ItemData{
			"RM-110": {ItemCode: "RM-110", SupplierName: "Acme", AvailableStock: 120},
		},
	}
	env := testutil.Setup(t, client)

	parent := env.SeedItem(t, "FG-110", 0, 10, nil)
	known := env.SeedItem(t, "RM-110", 0, 10, nil)
	unknown := env.SeedItem(t, "RM-111", 0, 10, nil)
	bom := env.SeedBOM(t, "BOM-110", parent.ID)
	env.SeedComponent(t, bom.ID, known.ID, 1)
	env.SeedComponent(t, bom.ID, unknown.ID, 1)

	w := env.DoRequest(t, http.MethodGet, "/api/v1/boms/"+bom.ID+"/with_external_data", nil)
	testutil.RequireStatus(t, w, http.StatusOK)

	var result struct {
		ExternalData          map[string]*external.ItemData `json:"external_data"`
		ExternalDataAvailable bool                          `json:"external_data_available"`
	}
	testutil.ParseResponse(t, w, &result)
	if !result.ExternalDataAvailable {
		t.Fatal("external_data_available = false, want true")
	}
	if result.ExternalData["RM-110"] == nil || result.ExternalData["RM-110"].SupplierName != "Acme" {
		t.Errorf("external data for RM-110 = %+v", result.ExternalData["RM-110"])
	}
	// 查不到的物料不在结果里，也不算失败
	if _, ok := result.ExternalData["RM-111"]; ok {
		t.Error("item without external data should be absent")
	}
}

func TestBOMWithExternalDataUnavailable(t *testing.T) {
	client := &fakeExternalClient{err: errors.New("connection refused")}
	env := testutil.Setup(t, client)

	parent := env.SeedItem(t, "FG-111", 0, 10, nil)
	part := env.SeedItem(t, "RM-112", 0, 10, nil)
	bom := env.SeedBOM(t, "BOM-111", parent.ID)
	env.SeedComponent(t, bom.ID, part.ID, 1)

	w := env.DoRequest(t, http.MethodGet, "/api/v1/boms/"+bom.ID+"/with_external_data", nil)
	testutil.RequireStatus(t, w, http.StatusOK)

	var result struct {
		BOM                   *entity.BOM `json:"bom"`
		ExternalDataAvailable bool        `json:"external_data_available"`
	}
	testutil.ParseResponse(t, w, &result)
	if result.ExternalDataAvailable {
		t.Fatal("external_data_available = true, want false when source fails")
	}
	if result.BOM == nil || result.BOM.ID != bom.ID {
		t.Error("main bom data should still be returned")
	}
}

func TestBOMChangeHistoryReadOnly(t *testing.T) {
	env := testutil.Setup(t, nil)

	parent := env.SeedItem(t, "FG-112", 0, 10, nil)
	bom := env.SeedBOM(t, "BOM-112", parent.ID)

	w := env.DoRequest(t, http.MethodGet, "/api/v1/bom-change-history?bom_id="+bom.ID, nil)
	testutil.RequireStatus(t, w, http.StatusOK)

	var result struct {
		Items []entity.BOMChangeHistory `json:"items"`
		Total int64                     `json:"total"`
	}
	testutil.ParseResponse(t, w, &result)
	if result.Total != 1 || result.Items[0].ChangeType != entity.ChangeTypeCreate {
		t.Fatalf("history after create = %+v", result)
	}

	// 变更记录没有写入路由
	w = env.DoRequest(t, http.MethodPost, "/api/v1/bom-change-history", map[string]interface{}{
		"bom_id": bom.ID,
	})
	testutil.RequireStatus(t, w, http.StatusNotFound)
}
