package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mdm/internal/external"
	"github.com/bitfantasy/nimo-mdm/internal/model/entity"
	"github.com/bitfantasy/nimo-mdm/internal/repository"
)

// BOMService BOM服务
type BOMService struct {
	boms        *repository.BOMRepository
	components  *repository.BOMComponentRepository
	items       *repository.ItemRepository
	validations *repository.BOMValidationRepository
	histories   *repository.BOMChangeHistoryRepository
	external    external.Client
}

// NewBOMService 创建BOM服务
func NewBOMService(
	boms *repository.BOMRepository,
	components *repository.BOMComponentRepository,
	items *repository.ItemRepository,
	validations *repository.BOMValidationRepository,
	histories *repository.BOMChangeHistoryRepository,
	extClient external.Client,
) *BOMService {
	return &BOMService{
		boms:        boms,
		components:  components,
		items:       items,
		validations: validations,
		histories:   histories,
		external:    extClient,
	}
}

// BOMRequest BOM创建/更新请求，status不在其中，只能经动作接口流转
type BOMRequest struct {
	BOMCode               string     `json:"bom_code" binding:"required,max=50"`
	Name                  string     `json:"name" binding:"required,max=200"`
	Description           string     `json:"description"`
	ParentItemID          string     `json:"parent_item_id" binding:"required"`
	Version               string     `json:"version" binding:"max=20"`
	RevisionDate          *time.Time `json:"revision_date"`
	IsDefault             bool       `json:"is_default"`
	ProductionQuantity    float64    `json:"production_quantity" binding:"omitempty,gt=0"`
	UnitOfMeasure         string     `json:"unit_of_measure" binding:"omitempty,oneof=ea kg g m cm mm l ml"`
	SetupTimeMinutes      int        `json:"setup_time_minutes" binding:"gte=0"`
	ProductionTimeMinutes int        `json:"production_time_minutes" binding:"gte=0"`
}

// BOMListResult BOM列表结果
type BOMListResult struct {
	Items      []entity.BOM `json:"items"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

// decorate 填充BOM派生统计
func (s *BOMService) decorate(ctx context.Context, bom *entity.BOM) error {
	stats, err := s.boms.Stats(ctx, []string{bom.ID})
	if err != nil {
		return err
	}
	if st, ok := stats[bom.ID]; ok {
		bom.TotalComponents = st.TotalComponents
		bom.TotalCost = st.TotalCost
	}
	return nil
}

// appendHistory 追加变更记录
func (s *BOMService) appendHistory(ctx context.Context, bomID, changeType string, oldValue, newValue entity.JSONB, reason, userID string) error {
	history := &entity.BOMChangeHistory{
		ID:           repository.NewID(),
		BOMID:        bomID,
		ChangeType:   changeType,
		OldValue:     oldValue,
		NewValue:     newValue,
		ChangeReason: reason,
		ChangedBy:    actorRef(userID),
		ChangedAt:    time.Now(),
	}
	return s.histories.Create(ctx, history)
}

// bomSnapshot 变更记录用的字段快照
func bomSnapshot(bom *entity.BOM) entity.JSONB {
	return entity.JSONB{
		"bom_code":            bom.BOMCode,
		"name":                bom.Name,
		"parent_item_id":      bom.ParentItemID,
		"version":             bom.Version,
		"status":              bom.Status,
		"is_default":          bom.IsDefault,
		"production_quantity": bom.ProductionQuantity,
	}
}

// Get 获取BOM详情
func (s *BOMService) Get(ctx context.Context, id string) (*entity.BOM, error) {
	bom, err := s.boms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, bom); err != nil {
		return nil, err
	}
	return bom, nil
}

// Create 创建BOM，初始状态固定为草稿
func (s *BOMService) Create(ctx context.Context, userID string, req *BOMRequest) (*entity.BOM, error) {
	if _, err := s.items.FindByID(ctx, req.ParentItemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: parent item %s not found", ErrValidation, req.ParentItemID)
		}
		return nil, err
	}

	now := time.Now()
	bom := &entity.BOM{
		ID:                    repository.NewID(),
		BOMCode:               req.BOMCode,
		Name:                  req.Name,
		Description:           req.Description,
		ParentItemID:          req.ParentItemID,
		Version:               req.Version,
		RevisionDate:          req.RevisionDate,
		Status:                entity.BOMStatusDraft,
		IsDefault:             req.IsDefault,
		ProductionQuantity:    req.ProductionQuantity,
		UnitOfMeasure:         req.UnitOfMeasure,
		SetupTimeMinutes:      req.SetupTimeMinutes,
		ProductionTimeMinutes: req.ProductionTimeMinutes,
		CreatedBy:             actorRef(userID),
		UpdatedBy:             actorRef(userID),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if bom.Version == "" {
		bom.Version = "1.0"
	}
	if bom.ProductionQuantity == 0 {
		bom.ProductionQuantity = 1
	}
	if bom.UnitOfMeasure == "" {
		bom.UnitOfMeasure = entity.ItemUnitEA
	}

	if err := s.boms.Create(ctx, bom); err != nil {
		return nil, fmt.Errorf("create bom: %w", err)
	}
	if err := s.appendHistory(ctx, bom.ID, entity.ChangeTypeCreate, nil, bomSnapshot(bom), "", userID); err != nil {
		return nil, fmt.Errorf("record bom creation: %w", err)
	}
	return s.Get(ctx, bom.ID)
}

// Update 更新BOM基础信息，状态字段不受理
func (s *BOMService) Update(ctx context.Context, id, userID string, req *BOMRequest) (*entity.BOM, error) {
	bom, err := s.boms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ParentItemID != bom.ParentItemID {
		if _, err := s.items.FindByID(ctx, req.ParentItemID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent item %s not found", ErrValidation, req.ParentItemID)
			}
			return nil, err
		}
	}
	oldValue := bomSnapshot(bom)

	bom.BOMCode = req.BOMCode
	bom.Name = req.Name
	bom.Description = req.Description
	bom.ParentItemID = req.ParentItemID
	bom.Version = req.Version
	bom.RevisionDate = req.RevisionDate
	bom.IsDefault = req.IsDefault
	bom.ProductionQuantity = req.ProductionQuantity
	bom.UnitOfMeasure = req.UnitOfMeasure
	bom.SetupTimeMinutes = req.SetupTimeMinutes
	bom.ProductionTimeMinutes = req.ProductionTimeMinutes
	bom.UpdatedBy = actorRef(userID)
	bom.UpdatedAt = time.Now()
	if bom.Version == "" {
		bom.Version = "1.0"
	}
	if bom.ProductionQuantity == 0 {
		bom.ProductionQuantity = 1
	}
	if bom.UnitOfMeasure == "" {
		bom.UnitOfMeasure = entity.ItemUnitEA
	}
	bom.ParentItem = nil
	bom.Components = nil

	if err := s.boms.Update(ctx, bom); err != nil {
		return nil, fmt.Errorf("update bom: %w", err)
	}
	if err := s.appendHistory(ctx, bom.ID, entity.ChangeTypeUpdate, oldValue, bomSnapshot(bom), "", userID); err != nil {
		return nil, fmt.Errorf("record bom update: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete 删除BOM及其所属记录
func (s *BOMService) Delete(ctx context.Context, id string) error {
	return s.boms.Delete(ctx, id)
}

// List 获取BOM列表并填充统计
func (s *BOMService) List(ctx context.Context, page, pageSize int, filters repository.BOMFilters, ordering string) (*BOMListResult, error) {
	boms, total, err := s.boms.List(ctx, page, pageSize, filters, ordering)
	if err != nil {
		return nil, fmt.Errorf("list boms: %w", err)
	}

	ids := make([]string, 0, len(boms))
	for _, bom := range boms {
		ids = append(ids, bom.ID)
	}
	stats, err := s.boms.Stats(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("bom stats: %w", err)
	}
	for i := range boms {
		if st, ok := stats[boms[i].ID]; ok {
			boms[i].TotalComponents = st.TotalComponents
			boms[i].TotalCost = st.TotalCost
		}
	}

	return &BOMListResult{
		Items:      boms,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// Transition 执行状态流转动作。先按读到的状态判断动作是否合法，
// 再用条件更新落库，落库零行生效说明状态被并发修改，报冲突。
func (s *BOMService) Transition(ctx context.Context, id, action, userID, reason string) (*entity.BOM, error) {
	bom, err := s.boms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	target, ok := entity.BOMTransitionTarget(action, bom.Status)
	if !ok {
		return nil, fmt.Errorf("%w: cannot %s bom in status %s", repository.ErrInvalidTransition, action, bom.Status)
	}

	extra := map[string]interface{}{
		"updated_by": actorRef(userID),
	}
	if action == entity.BOMActionApprove {
		now := time.Now()
		extra["approved_by"] = actorRef(userID)
		extra["approved_at"] = now
	}

	if err := s.boms.TransitionStatus(ctx, id, bom.Status, target, extra); err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: bom status changed concurrently", repository.ErrConflict)
		}
		return nil, err
	}

	err = s.appendHistory(ctx, id, action,
		entity.JSONB{"status": bom.Status},
		entity.JSONB{"status": target},
		reason, userID)
	if err != nil {
		return nil, fmt.Errorf("record bom transition: %w", err)
	}
	return s.Get(ctx, id)
}

// BOMComponentRequest 行项创建/更新请求
type BOMComponentRequest struct {
	BOMID               string     `json:"bom_id" binding:"required"`
	ItemID              string     `json:"item_id" binding:"required"`
	ComponentType       string     `json:"component_type" binding:"omitempty,oneof=material component subassembly tool consumable"`
	Sequence            int        `json:"sequence" binding:"gte=0"`
	Quantity            float64    `json:"quantity" binding:"required,gt=0"`
	UnitOfMeasure       string     `json:"unit_of_measure" binding:"omitempty,oneof=ea kg g m cm mm l ml"`
	ReferenceDesignator string     `json:"reference_designator" binding:"max=50"`
	Notes               string     `json:"notes"`
	IsOptional          bool       `json:"is_optional"`
	IsPhantom           bool       `json:"is_phantom"`
	EffectiveDate       *time.Time `json:"effective_date"`
	ExpiryDate          *time.Time `json:"expiry_date"`
	SubstituteItemIDs   []string   `json:"substitute_item_ids"`
}

// BOMComponentListResult 行项列表结果
type BOMComponentListResult struct {
	Items      []entity.BOMComponent `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// resolveComponentRefs 校验行项引用的BOM与物料，返回两者
func (s *BOMService) resolveComponentRefs(ctx context.Context, req *BOMComponentRequest) (*entity.BOM, *entity.Item, error) {
	bom, err := s.boms.FindByID(ctx, req.BOMID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: bom %s not found", ErrValidation, req.BOMID)
		}
		return nil, nil, err
	}
	item, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: item %s not found", ErrValidation, req.ItemID)
		}
		return nil, nil, err
	}
	if item.ID == bom.ParentItemID {
		return nil, nil, fmt.Errorf("%w: bom cannot contain its own parent item", ErrValidation)
	}
	if req.ExpiryDate != nil && req.EffectiveDate != nil && !req.ExpiryDate.After(*req.EffectiveDate) {
		return nil, nil, fmt.Errorf("%w: expiry date must be after effective date", ErrValidation)
	}
	return bom, item, nil
}

// loadSubstitutes 加载替代料物料
func (s *BOMService) loadSubstitutes(ctx context.Context, ids []string, componentItemID string) ([]entity.Item, error) {
	substitutes := make([]entity.Item, 0, len(ids))
	for _, subID := range ids {
		if subID == componentItemID {
			return nil, fmt.Errorf("%w: substitute cannot be the component item itself", ErrValidation)
		}
		item, err := s.items.FindByID(ctx, subID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: substitute item %s not found", ErrValidation, subID)
			}
			return nil, err
		}
		substitutes = append(substitutes, *item)
	}
	return substitutes, nil
}

// GetComponent 获取行项详情
func (s *BOMService) GetComponent(ctx context.Context, id string) (*entity.BOMComponent, error) {
	return s.components.FindByID(ctx, id)
}

// CreateComponent 创建行项，序号缺省排在末尾
func (s *BOMService) CreateComponent(ctx context.Context, userID string, req *BOMComponentRequest) (*entity.BOMComponent, error) {
	_, item, err := s.resolveComponentRefs(ctx, req)
	if err != nil {
		return nil, err
	}
	substitutes, err := s.loadSubstitutes(ctx, req.SubstituteItemIDs, req.ItemID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	component := &entity.BOMComponent{
		ID:                  repository.NewID(),
		BOMID:               req.BOMID,
		ItemID:              req.ItemID,
		ComponentType:       req.ComponentType,
		Sequence:            req.Sequence,
		Quantity:            req.Quantity,
		UnitOfMeasure:       req.UnitOfMeasure,
		ReferenceDesignator: req.ReferenceDesignator,
		Notes:               req.Notes,
		IsOptional:          req.IsOptional,
		IsPhantom:           req.IsPhantom,
		EffectiveDate:       req.EffectiveDate,
		ExpiryDate:          req.ExpiryDate,
		SubstituteItems:     substitutes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if component.ComponentType == "" {
		component.ComponentType = entity.ComponentTypeMaterial
	}
	if component.UnitOfMeasure == "" {
		component.UnitOfMeasure = item.Unit
	}
	if component.Sequence == 0 {
		maxSeq, err := s.components.MaxSequence(ctx, req.BOMID)
		if err != nil {
			return nil, fmt.Errorf("next sequence: %w", err)
		}
		component.Sequence = maxSeq + 1
	}

	if err := s.components.Create(ctx, component); err != nil {
		return nil, fmt.Errorf("create bom component: %w", err)
	}
	err = s.appendHistory(ctx, req.BOMID, entity.ChangeTypeUpdate,
		nil,
		entity.JSONB{"component_item": item.ItemCode, "quantity": req.Quantity},
		"component added", userID)
	if err != nil {
		return nil, fmt.Errorf("record component addition: %w", err)
	}
	return s.components.FindByID(ctx, component.ID)
}

// UpdateComponent 更新行项
func (s *BOMService) UpdateComponent(ctx context.Context, id, userID string, req *BOMComponentRequest) (*entity.BOMComponent, error) {
	component, err := s.components.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_, item, err := s.resolveComponentRefs(ctx, req)
	if err != nil {
		return nil, err
	}
	substitutes, err := s.loadSubstitutes(ctx, req.SubstituteItemIDs, req.ItemID)
	if err != nil {
		return nil, err
	}
	oldValue := entity.JSONB{"component_item": component.ItemID, "quantity": component.Quantity}

	component.BOMID = req.BOMID
	component.ItemID = req.ItemID
	component.ComponentType = req.ComponentType
	component.Sequence = req.Sequence
	component.Quantity = req.Quantity
	component.UnitOfMeasure = req.UnitOfMeasure
	component.ReferenceDesignator = req.ReferenceDesignator
	component.Notes = req.Notes
	component.IsOptional = req.IsOptional
	component.IsPhantom = req.IsPhantom
	component.EffectiveDate = req.EffectiveDate
	component.ExpiryDate = req.ExpiryDate
	component.SubstituteItems = substitutes
	component.UpdatedAt = time.Now()
	if component.ComponentType == "" {
		component.ComponentType = entity.ComponentTypeMaterial
	}
	if component.UnitOfMeasure == "" {
		component.UnitOfMeasure = item.Unit
	}
	component.Item = nil
	component.BOM = nil

	if err := s.components.Update(ctx, component); err != nil {
		return nil, fmt.Errorf("update bom component: %w", err)
	}
	err = s.appendHistory(ctx, req.BOMID, entity.ChangeTypeUpdate,
		oldValue,
		entity.JSONB{"component_item": item.ItemCode, "quantity": req.Quantity},
		"component updated", userID)
	if err != nil {
		return nil, fmt.Errorf("record component update: %w", err)
	}
	return s.components.FindByID(ctx, id)
}

// DeleteComponent 删除行项
func (s *BOMService) DeleteComponent(ctx context.Context, id, userID string) error {
	component, err := s.components.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.components.Delete(ctx, id); err != nil {
		return err
	}
	itemCode := component.ItemID
	if component.Item != nil {
		itemCode = component.Item.ItemCode
	}
	return s.appendHistory(ctx, component.BOMID, entity.ChangeTypeUpdate,
		entity.JSONB{"component_item": itemCode, "quantity": component.Quantity},
		nil,
		"component removed", userID)
}

// ListComponents 获取行项列表
func (s *BOMService) ListComponents(ctx context.Context, page, pageSize int, filters repository.BOMComponentFilters) (*BOMComponentListResult, error) {
	components, total, err := s.components.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list bom components: %w", err)
	}
	return &BOMComponentListResult{
		Items:      components,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// Validate 对BOM执行全部验证并落库验证记录
func (s *BOMService) Validate(ctx context.Context, bomID, userID string) ([]entity.BOMValidation, error) {
	bom, err := s.boms.FindByID(ctx, bomID)
	if err != nil {
		return nil, err
	}

	results := []entity.BOMValidation{
		s.validateStructure(bom),
		s.validateCost(bom),
		s.validateAvailability(bom),
		s.validateCompliance(bom),
	}

	now := time.Now()
	for i := range results {
		results[i].ID = repository.NewID()
		results[i].BOMID = bomID
		results[i].ValidatedBy = actorRef(userID)
		results[i].ValidatedAt = now
		if err := s.validations.Create(ctx, &results[i]); err != nil {
			return nil, fmt.Errorf("record validation: %w", err)
		}
	}
	return results, nil
}

// validateStructure 结构验证：行项非空、数量为正、有效期次序正确
func (s *BOMService) validateStructure(bom *entity.BOM) entity.BOMValidation {
	issues := []string{}
	if len(bom.Components) == 0 {
		issues = append(issues, "bom has no components")
	}
	for _, c := range bom.Components {
		if c.Quantity <= 0 {
			issues = append(issues, fmt.Sprintf("component %s has non-positive quantity", c.ItemID))
		}
		if c.EffectiveDate != nil && c.ExpiryDate != nil && !c.ExpiryDate.After(*c.EffectiveDate) {
			issues = append(issues, fmt.Sprintf("component %s expires before it becomes effective", c.ItemID))
		}
	}
	return validationRecord(entity.ValidationTypeStructure, issues, nil,
		"structure is valid", "structure issues found")
}

// validateCost 成本验证：标准成本缺失的行项计为警告
func (s *BOMService) validateCost(bom *entity.BOM) entity.BOMValidation {
	missing := []string{}
	totalCost := 0.0
	for _, c := range bom.Components {
		if c.Item == nil || c.Item.StandardCost == nil {
			code := c.ItemID
			if c.Item != nil {
				code = c.Item.ItemCode
			}
			missing = append(missing, code)
			continue
		}
		totalCost += *c.Item.StandardCost * c.Quantity
	}

	result := entity.ValidationResultPass
	message := fmt.Sprintf("total cost %.2f", totalCost)
	if len(missing) > 0 {
		result = entity.ValidationResultWarning
		message = fmt.Sprintf("%d components missing standard cost", len(missing))
	}
	return entity.BOMValidation{
		ValidationType: entity.ValidationTypeCost,
		Result:         result,
		Message:        message,
		Details:        entity.JSONB{"total_cost": totalCost, "missing_cost_items": missing},
	}
}

// validateAvailability 可用性验证：停产物料为失败，缺货为警告
func (s *BOMService) validateAvailability(bom *entity.BOM) entity.BOMValidation {
	discontinued := []string{}
	lowStock := []string{}
	for _, c := range bom.Components {
		if c.Item == nil {
			continue
		}
		if c.Item.Status == entity.ItemStatusDiscontinued {
			discontinued = append(discontinued, c.Item.ItemCode)
		}
		if c.Item.CurrentStock <= c.Item.MinimumStock {
			lowStock = append(lowStock, c.Item.ItemCode)
		}
	}

	validation := entity.BOMValidation{
		ValidationType: entity.ValidationTypeAvailability,
		Details:        entity.JSONB{"discontinued_items": discontinued, "low_stock_items": lowStock},
	}
	switch {
	case len(discontinued) > 0:
		validation.Result = entity.ValidationResultFail
		validation.Message = fmt.Sprintf("%d components are discontinued", len(discontinued))
	case len(lowStock) > 0:
		validation.Result = entity.ValidationResultWarning
		validation.Message = fmt.Sprintf("%d components are low on stock", len(lowStock))
	default:
		validation.Result = entity.ValidationResultPass
		validation.Message = "all components available"
	}
	return validation
}

// validateCompliance 规范验证：虚拟件必须为子装配，非活动物料计为警告
func (s *BOMService) validateCompliance(bom *entity.BOM) entity.BOMValidation {
	issues := []string{}
	warnings := []string{}
	for _, c := range bom.Components {
		if c.IsPhantom && c.ComponentType != entity.ComponentTypeSubassembly {
			issues = append(issues, fmt.Sprintf("phantom component %s must be a subassembly", c.ItemID))
		}
		if c.Item != nil && c.Item.Status == entity.ItemStatusInactive {
			warnings = append(warnings, fmt.Sprintf("component %s is inactive", c.Item.ItemCode))
		}
	}
	return validationRecord(entity.ValidationTypeCompliance, issues, warnings,
		"bom is compliant", "compliance issues found")
}

// validationRecord 根据问题列表组装验证记录
func validationRecord(validationType string, issues, warnings []string, passMsg, failMsg string) entity.BOMValidation {
	validation := entity.BOMValidation{
		ValidationType: validationType,
		Details:        entity.JSONB{"issues": issues, "warnings": warnings},
	}
	switch {
	case len(issues) > 0:
		validation.Result = entity.ValidationResultFail
		validation.Message = failMsg
	case len(warnings) > 0:
		validation.Result = entity.ValidationResultWarning
		validation.Message = failMsg
	default:
		validation.Result = entity.ValidationResultPass
		validation.Message = passMsg
	}
	return validation
}

// BOMWithExternalData BOM及外部补充数据
type BOMWithExternalData struct {
	BOM                   *entity.BOM                   `json:"bom"`
	ExternalData          map[string]*external.ItemData `json:"external_data"`
	ExternalDataAvailable bool                          `json:"external_data_available"`
}

// WithExternalData 返回BOM并尝试按物料编码合并外部数据。
// 外部源不可用不算失败，标记后照常返回主数据。
func (s *BOMService) WithExternalData(ctx context.Context, bomID string) (*BOMWithExternalData, error) {
	bom, err := s.Get(ctx, bomID)
	if err != nil {
		return nil, err
	}

	result := &BOMWithExternalData{
		BOM:          bom,
		ExternalData: map[string]*external.ItemData{},
	}
	if s.external == nil {
		return result, nil
	}

	result.ExternalDataAvailable = true
	for _, c := range bom.Components {
		if c.Item == nil {
			continue
		}
		if _, ok := result.ExternalData[c.Item.ItemCode]; ok {
			continue
		}
		data, err := s.external.ItemData(ctx, c.Item.ItemCode)
		if err != nil {
			if errors.Is(err, external.ErrNoData) {
				continue
			}
			result.ExternalDataAvailable = false
			result.ExternalData = map[string]*external.ItemData{}
			break
		}
		result.ExternalData[c.Item.ItemCode] = data
	}
	return result, nil
}

// BOMValidationService 验证记录查询服务
type BOMValidationService struct {
	validations *repository.BOMValidationRepository
	boms        *repository.BOMRepository
}

// NewBOMValidationService 创建验证记录服务
func NewBOMValidationService(validations *repository.BOMValidationRepository, boms *repository.BOMRepository) *BOMValidationService {
	return &BOMValidationService{validations: validations, boms: boms}
}

// BOMValidationRequest 验证记录追加请求
type BOMValidationRequest struct {
	BOMID          string       `json:"bom_id" binding:"required"`
	ValidationType string       `json:"validation_type" binding:"required,oneof=structure cost availability compliance"`
	Result         string       `json:"result" binding:"required,oneof=pass fail warning"`
	Message        string       `json:"message"`
	Details        entity.JSONB `json:"details"`
}

// BOMValidationListResult 验证记录列表结果
type BOMValidationListResult struct {
	Items      []entity.BOMValidation `json:"items"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalPages int                    `json:"total_pages"`
}

// Get 获取验证记录
func (s *BOMValidationService) Get(ctx context.Context, id string) (*entity.BOMValidation, error) {
	return s.validations.FindByID(ctx, id)
}

// Create 手工追加验证记录
func (s *BOMValidationService) Create(ctx context.Context, userID string, req *BOMValidationRequest) (*entity.BOMValidation, error) {
	if _, err := s.boms.FindByID(ctx, req.BOMID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: bom %s not found", ErrValidation, req.BOMID)
		}
		return nil, err
	}

	validation := &entity.BOMValidation{
		ID:             repository.NewID(),
		BOMID:          req.BOMID,
		ValidationType: req.ValidationType,
		Result:         req.Result,
		Message:        req.Message,
		Details:        req.Details,
		ValidatedBy:    actorRef(userID),
		ValidatedAt:    time.Now(),
	}
	if err := s.validations.Create(ctx, validation); err != nil {
		return nil, fmt.Errorf("create validation: %w", err)
	}
	return validation, nil
}

// List 获取验证记录列表
func (s *BOMValidationService) List(ctx context.Context, page, pageSize int, filters repository.BOMValidationFilters) (*BOMValidationListResult, error) {
	validations, total, err := s.validations.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list validations: %w", err)
	}
	return &BOMValidationListResult{
		Items:      validations,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// BOMHistoryService 变更记录查询服务，记录只由系统生成
type BOMHistoryService struct {
	histories *repository.BOMChangeHistoryRepository
}

// NewBOMHistoryService 创建变更记录服务
func NewBOMHistoryService(histories *repository.BOMChangeHistoryRepository) *BOMHistoryService {
	return &BOMHistoryService{histories: histories}
}

// BOMHistoryListResult 变更记录列表结果
type BOMHistoryListResult struct {
	Items      []entity.BOMChangeHistory `json:"items"`
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"page_size"`
	TotalPages int                       `json:"total_pages"`
}

// Get 获取变更记录
func (s *BOMHistoryService) Get(ctx context.Context, id string) (*entity.BOMChangeHistory, error) {
	return s.histories.FindByID(ctx, id)
}

// List 获取变更记录列表
func (s *BOMHistoryService) List(ctx context.Context, page, pageSize int, filters repository.BOMChangeHistoryFilters) (*BOMHistoryListResult, error) {
	histories, total, err := s.histories.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list change history: %w", err)
	}
	return &BOMHistoryListResult{
		Items:      histories,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}
