package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/dto"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/repository"
)

// ── planning module errors ──

var (
	ErrPlanningNotFound = errors.New("weekly planning not found")
	ErrItemNotFound     = errors.New("planning item not found")
	ErrContactNotFound  = errors.New("contact not found")
	// ErrEmptyPlanning blocks starting execution of a planning without items.
	ErrEmptyPlanning = errors.New("planning has no items")
	// ErrInvalidTransition rejects a lifecycle move the state machine does
	// not define.
	ErrInvalidTransition = errors.New("status transition not allowed")
	// ErrEvaluationRequired blocks concluida → avaliada without notes.
	ErrEvaluationRequired = errors.New("evaluation notes are required")
	// ErrJustificationTooShort enforces the audit minimum on deletions.
	ErrJustificationTooShort = errors.New("justification must have at least 10 characters")
	// ErrContinuityViolation surfaces a caller that bypassed ResolveOrCreate
	// and produced week boundaries that disagree with the stored planning.
	// This is a bug-class error, logged prominently.
	ErrContinuityViolation = errors.New("week boundaries disagree with the existing planning")
	// ErrItemNotActive rejects check-in/check-out on settled items.
	ErrItemNotActive = errors.New("item is not in an active status")
)

// ActiveItemsError blocks planning deletion while unsettled items exist,
// carrying them so the caller can choose a resolution path.
type ActiveItemsError struct {
	Items []model.PlanningItem
}

func (e *ActiveItemsError) Error() string {
	return fmt.Sprintf("planning still has %d active items", len(e.Items))
}

// PlanningService owns the weekly planning lifecycle: continuity
// resolution, item scheduling, the status state machine and aggregate
// maintenance.
type PlanningService interface {
	// ResolveOrCreate finds the single non-cancelled planning for the week
	// containing date, creating it when absent. Stored boundaries are
	// authoritative once the planning exists.
	ResolveOrCreate(ctx context.Context, responsibleID string, date time.Time, callerID string) (*model.WeeklyPlanning, error)

	GetByID(ctx context.Context, id string) (*dto.PlanningResponse, error)
	List(ctx context.Context, responsibleID string, req *dto.PlanningListRequest) ([]dto.PlanningResponse, int64, error)

	CreateItem(ctx context.Context, responsibleID string, req *dto.CreateItemRequest, callerID string) (*dto.ItemResponse, error)
	RescheduleItem(ctx context.Context, itemID string, req *dto.RescheduleItemRequest, callerID string) (*dto.ItemResponse, error)
	CancelItem(ctx context.Context, itemID string, reason string, callerID string) error
	CheckInItem(ctx context.Context, itemID string, callerID string) (*dto.ItemResponse, error)
	CheckOutItem(ctx context.Context, itemID string, req *dto.CheckOutItemRequest, callerID string) (*dto.ItemResponse, error)

	StartExecution(ctx context.Context, planningID string, callerID string) (*dto.PlanningResponse, error)
	Complete(ctx context.Context, planningID string, callerID string) (*dto.PlanningResponse, error)
	Evaluate(ctx context.Context, planningID string, req *dto.EvaluatePlanningRequest, callerID string) (*dto.PlanningResponse, error)
	Reopen(ctx context.Context, planningID string, callerID string) (*dto.PlanningResponse, error)
	Cancel(ctx context.Context, planningID string, reason string, callerID string) (*dto.PlanningResponse, error)
	Delete(ctx context.Context, planningID string, req *dto.DeletePlanningRequest, callerID string) error
}

type planningService struct {
	repo    *repository.Repository
	slotSvc SlotService
	geoSvc  GeoService
	logger  *zap.Logger
	now     func() time.Time
}

// NewPlanningService creates a PlanningService.
func NewPlanningService(repo *repository.Repository, slotSvc SlotService, geoSvc GeoService, logger *zap.Logger) PlanningService {
	return &planningService{
		repo:    repo,
		slotSvc: slotSvc,
		geoSvc:  geoSvc,
		logger:  logger,
		now:     time.Now,
	}
}

// ────────────────────── continuity ──────────────────────

func (s *planningService) ResolveOrCreate(ctx context.Context, responsibleID string, date time.Time, callerID string) (*model.WeeklyPlanning, error) {
	weekStart, weekEnd := WeekBounds(date)

	existing, err := s.repo.Planning.FindByWeek(ctx, responsibleID, weekStart, weekEnd)
	if err == nil {
		// Stored boundaries are immutable; cross-check instead of trusting
		// the computed ones.
		if !withinBounds(date, existing.WeekStart, existing.WeekEnd) {
			s.logger.Error("continuity violation detected",
				zap.String("planning_id", existing.PlanningID),
				zap.Time("date", date),
				zap.Time("week_start", existing.WeekStart),
				zap.Time("week_end", existing.WeekEnd))
			return nil, ErrContinuityViolation
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("find planning by week failed", zap.Error(err))
		return nil, err
	}

	planning := &model.WeeklyPlanning{
		ResponsibleID: responsibleID,
		WeekStart:     weekStart,
		WeekEnd:       weekEnd,
		Status:        model.PlanningStatusDraft,
	}
	planning.CreatedBy = &callerID
	planning.UpdatedBy = &callerID

	if err := s.repo.Planning.Create(ctx, planning); err != nil {
		s.logger.Error("create weekly planning failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("weekly planning created",
		zap.String("planning_id", planning.PlanningID),
		zap.String("responsible_id", responsibleID),
		zap.String("week_start", weekStart.Format("2006-01-02")),
		zap.String("week_end", weekEnd.Format("2006-01-02")))

	return planning, nil
}

// ────────────────────── queries ──────────────────────

func (s *planningService) GetByID(ctx context.Context, id string) (*dto.PlanningResponse, error) {
	planning, err := s.repo.Planning.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanningNotFound
		}
		s.logger.Error("get planning failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toPlanningResponse(planning, true), nil
}

func (s *planningService) List(ctx context.Context, responsibleID string, req *dto.PlanningListRequest) ([]dto.PlanningResponse, int64, error) {
	offset := (req.Page - 1) * req.PageSize
	plannings, total, err := s.repo.Planning.ListByResponsible(ctx, responsibleID, offset, req.PageSize)
	if err != nil {
		s.logger.Error("list plannings failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.PlanningResponse, 0, len(plannings))
	for i := range plannings {
		result = append(result, *s.toPlanningResponse(&plannings[i], false))
	}
	return result, total, nil
}

// ────────────────────── items ──────────────────────

func (s *planningService) CreateItem(ctx context.Context, responsibleID string, req *dto.CreateItemRequest, callerID string) (*dto.ItemResponse, error) {
	date, err := time.Parse("2006-01-02", req.PlannedDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if _, err := parseClock(req.PlannedTime); err != nil {
		return nil, ErrInvalidDate
	}

	if err := s.slotSvc.ValidateDate(ctx, responsibleID, date); err != nil {
		return nil, err
	}
	if err := s.slotSvc.CheckSlot(ctx, responsibleID, date, req.PlannedTime, ""); err != nil {
		return nil, err
	}

	contact, err := s.repo.Contact.GetByID(ctx, req.ContactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	// Estimation failure degrades gracefully: the visit is persisted with
	// estimates pending backfill.
	estimate, estErr := s.geoSvc.EstimateToContact(ctx, contact)
	if estErr != nil && !errors.Is(estErr, ErrGeocodingUnavailable) {
		return nil, estErr
	}
	if estErr != nil {
		s.logger.Warn("visit created without estimates, geocoding unavailable",
			zap.String("contact_id", contact.ContactID))
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	var created *model.PlanningItem
	err = s.repo.Transaction(func(tx *repository.Repository) error {
		planning, err := s.resolveOrCreateTx(ctx, tx, responsibleID, date, callerID)
		if err != nil {
			return err
		}

		item := &model.PlanningItem{
			PlanningID:    planning.PlanningID,
			ResponsibleID: responsibleID,
			ContactID:     contact.ContactID,
			PlannedDate:   DateOnly(date),
			PlannedTime:   req.PlannedTime,
			VisitKind:     req.VisitKind,
			Priority:      priority,
			Status:        model.ItemStatusPlanned,
			Notes:         req.Notes,
		}
		if estimate != nil {
			item.PlannedDistance = &estimate.DistanceKm
			item.PlannedFuel = &estimate.FuelLiters
			item.PlannedTravelTime = &estimate.TravelTimeMin
			item.PlannedCost = &estimate.Cost
		}
		item.CreatedBy = &callerID
		item.UpdatedBy = &callerID

		if err := tx.PlanningItem.Create(ctx, item); err != nil {
			// The partial unique index is the authoritative guard; a lost
			// race surfaces here as a duplicate key.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				existing, findErr := tx.PlanningItem.FindSlotConflict(ctx, responsibleID, date, req.PlannedTime)
				if findErr == nil {
					return &SlotConflictError{Existing: existing}
				}
			}
			return err
		}

		created = item
		return s.recomputeAggregates(ctx, tx, planning, callerID)
	})
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error("create planning item failed", zap.Error(err))
		}
		return nil, err
	}

	created.Contact = contact
	return s.toItemResponse(created), nil
}

// resolveOrCreateTx is ResolveOrCreate bound to a transactional repository.
func (s *planningService) resolveOrCreateTx(ctx context.Context, tx *repository.Repository, responsibleID string, date time.Time, callerID string) (*model.WeeklyPlanning, error) {
	inner := &planningService{repo: tx, slotSvc: s.slotSvc, geoSvc: s.geoSvc, logger: s.logger, now: s.now}
	return inner.ResolveOrCreate(ctx, responsibleID, date, callerID)
}

func (s *planningService) RescheduleItem(ctx context.Context, itemID string, req *dto.RescheduleItemRequest, callerID string) (*dto.ItemResponse, error) {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsActive() {
		return nil, ErrItemNotActive
	}

	date, err := time.Parse("2006-01-02", req.PlannedDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if _, err := parseClock(req.PlannedTime); err != nil {
		return nil, ErrInvalidDate
	}

	if err := s.slotSvc.ValidateDate(ctx, item.ResponsibleID, date); err != nil {
		return nil, err
	}
	if err := s.slotSvc.CheckSlot(ctx, item.ResponsibleID, date, req.PlannedTime, item.ItemID); err != nil {
		return nil, err
	}

	// The new date must stay inside the owning planning's week; moving a
	// visit across weeks means cancelling and recreating it.
	planning, err := s.repo.Planning.GetByID(ctx, item.PlanningID)
	if err != nil {
		return nil, err
	}
	if !withinBounds(date, planning.WeekStart, planning.WeekEnd) {
		return nil, ErrDateOutsideWeek
	}

	now := s.now()
	item.PlannedDate = DateOnly(date)
	item.PlannedTime = req.PlannedTime
	item.Status = model.ItemStatusRescheduled
	item.RescheduleReason = &req.Reason
	item.RescheduledAt = &now
	item.UpdatedBy = &callerID

	err = s.repo.Transaction(func(tx *repository.Repository) error {
		if err := tx.PlanningItem.Update(ctx, item); err != nil {
			return err
		}
		return s.recomputeAggregates(ctx, tx, planning, callerID)
	})
	if err != nil {
		s.logger.Error("reschedule item failed", zap.String("item_id", itemID), zap.Error(err))
		return nil, err
	}

	return s.toItemResponse(item), nil
}

func (s *planningService) CancelItem(ctx context.Context, itemID string, reason string, callerID string) error {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.Status == model.ItemStatusCancelled {
		return nil // already settled
	}

	planning, err := s.repo.Planning.GetByID(ctx, item.PlanningID)
	if err != nil {
		return err
	}

	item.Status = model.ItemStatusCancelled
	item.CancelReason = &reason
	item.UpdatedBy = &callerID

	return s.repo.Transaction(func(tx *repository.Repository) error {
		if err := tx.PlanningItem.Update(ctx, item); err != nil {
			return err
		}
		return s.recomputeAggregates(ctx, tx, planning, callerID)
	})
}

func (s *planningService) CheckInItem(ctx context.Context, itemID string, callerID string) (*dto.ItemResponse, error) {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != model.ItemStatusPlanned && item.Status != model.ItemStatusRescheduled {
		return nil, ErrItemNotActive
	}

	now := s.now()
	item.Status = model.ItemStatusInProgress
	item.StartedAt = &now
	item.UpdatedBy = &callerID

	if err := s.repo.PlanningItem.Update(ctx, item); err != nil {
		s.logger.Error("check-in failed", zap.String("item_id", itemID), zap.Error(err))
		return nil, err
	}

	return s.toItemResponse(item), nil
}

func (s *planningService) CheckOutItem(ctx context.Context, itemID string, req *dto.CheckOutItemRequest, callerID string) (*dto.ItemResponse, error) {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != model.ItemStatusInProgress {
		return nil, ErrItemNotActive
	}

	planning, err := s.repo.Planning.GetByID(ctx, item.PlanningID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	item.Status = model.ItemStatusCompleted
	item.CompletedAt = &now
	if req.Notes != nil {
		item.Notes = req.Notes
	}

	// Actual figures default to the planned estimates when not supplied.
	item.ActualDistance = firstNonNil(req.ActualDistance, item.PlannedDistance)
	item.ActualFuel = firstNonNil(req.ActualFuel, item.PlannedFuel)
	item.ActualCost = firstNonNil(req.ActualCost, item.PlannedCost)
	item.ActualTravelTime = item.PlannedTravelTime
	item.UpdatedBy = &callerID

	err = s.repo.Transaction(func(tx *repository.Repository) error {
		if err := tx.PlanningItem.Update(ctx, item); err != nil {
			return err
		}
		return s.recomputeAggregates(ctx, tx, planning, callerID)
	})
	if err != nil {
		s.logger.Error("check-out failed", zap.String("item_id", itemID), zap.Error(err))
		return nil, err
	}

	return s.toItemResponse(item), nil
}

// ────────────────────── lifecycle ──────────────────────

func (s *planningService) StartExecution(ctx context.Context, planningID string, callerID string) (*dto.PlanningResponse, error) {
	return s.transition(ctx, planningID, callerID, func(planning *model.WeeklyPlanning, items []model.PlanningItem) error {
		if planning.Status != model.PlanningStatusDraft {
			return ErrInvalidTransition
		}
		active := 0
		for i := range items {
			if items[i].Status != model.ItemStatusCancelled {
				active++
			}
		}
		if active == 0 {
			return ErrEmptyPlanning
		}
		planning.Status = model.PlanningStatusExecuting
		return nil
	})
}

func (s *planningService) Complete(ctx context.Context, planningID string, callerID string) (*dto.PlanningResponse, error) {
	return s.transition(ctx, planningID, callerID, func(planning *model.WeeklyPlanning, _ []model.PlanningItem) error {
		if planning.Status != model.PlanningStatusExecuting {
			return ErrInvalidTransition
		}
		// No item-count precondition: a week may close with incomplete visits.
		planning.Status = model.PlanningStatusCompleted
		return nil
	})
}

func (s *planningService) Evaluate(ctx context.Context, planningID string, req *dto.EvaluatePlanningRequest, callerID string) (*dto.PlanningResponse, error) {
	return s.transition(ctx, planningID, callerID, func(planning *model.WeeklyPlanning, _ []model.PlanningItem) error {
		if planning.Status != model.PlanningStatusCompleted {
			return ErrInvalidTransition
		}
		if req.EvaluationNotes == "" {
			return ErrEvaluationRequired
		}
		planning.Status = model.PlanningStatusEvaluated
		planning.EvaluationNotes = &req.EvaluationNotes
		planning.NextPeriodNotes = req.NextPeriodNotes
		return nil
	})
}

func (s *planningService) Reopen(ctx context.Context, planningID string, callerID string) (*dto.PlanningResponse, error) {
	return s.transition(ctx, planningID, callerID, func(planning *model.WeeklyPlanning, _ []model.PlanningItem) error {
		// Reopening is the correction escape hatch: permitted from any
		// state, no precondition.
		planning.Status = model.PlanningStatusDraft
		return nil
	})
}

func (s *planningService) Cancel(ctx context.Context, planningID string, reason string, callerID string) (*dto.PlanningResponse, error) {
	return s.transition(ctx, planningID, callerID, func(planning *model.WeeklyPlanning, _ []model.PlanningItem) error {
		if planning.IsTerminal() {
			return ErrInvalidTransition
		}
		planning.Status = model.PlanningStatusCancelled
		note := appendNote(planning.Notes, "Cancelamento: "+reason)
		planning.Notes = &note
		return nil
	})
}

// transition applies one state-machine move atomically: precondition check,
// status change and aggregate recompute either all land or none do.
func (s *planningService) transition(ctx context.Context, planningID, callerID string,
	apply func(*model.WeeklyPlanning, []model.PlanningItem) error) (*dto.PlanningResponse, error) {

	var result *model.WeeklyPlanning
	err := s.repo.Transaction(func(tx *repository.Repository) error {
		planning, err := tx.Planning.GetByID(ctx, planningID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanningNotFound
			}
			return err
		}

		items, err := tx.PlanningItem.ListByPlanning(ctx, planningID)
		if err != nil {
			return err
		}

		if err := apply(planning, items); err != nil {
			return err
		}

		applyAggregates(planning, items)
		planning.UpdatedBy = &callerID
		if err := tx.Planning.Update(ctx, planning); err != nil {
			return err
		}

		result = planning
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error("planning transition failed",
				zap.String("planning_id", planningID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("planning status changed",
		zap.String("planning_id", planningID),
		zap.String("status", result.Status))

	return s.toPlanningResponse(result, false), nil
}

func (s *planningService) Delete(ctx context.Context, planningID string, req *dto.DeletePlanningRequest, callerID string) error {
	if len(req.Justification) < 10 {
		return ErrJustificationTooShort
	}

	return s.repo.Transaction(func(tx *repository.Repository) error {
		planning, err := tx.Planning.GetByID(ctx, planningID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanningNotFound
			}
			return err
		}

		items, err := tx.PlanningItem.ListByPlanning(ctx, planningID)
		if err != nil {
			return err
		}

		var active []model.PlanningItem
		for i := range items {
			if items[i].IsActive() {
				active = append(active, items[i])
			}
		}

		if len(active) > 0 {
			if req.Resolution != "concluir" {
				return &ActiveItemsError{Items: active}
			}
			if err := tx.PlanningItem.BatchCompleteActive(ctx, planningID, s.now(), callerID); err != nil {
				return err
			}
		}

		// The justification lands on the record before the soft delete so
		// the audit trail survives.
		note := appendNote(planning.Notes, "Exclusao: "+req.Justification)
		planning.Notes = &note
		planning.UpdatedBy = &callerID
		if err := tx.Planning.Update(ctx, planning); err != nil {
			return err
		}

		if err := tx.Planning.Delete(ctx, planningID, callerID); err != nil {
			return err
		}

		s.logger.Info("weekly planning deleted",
			zap.String("planning_id", planningID),
			zap.Int("resolved_items", len(active)))
		return nil
	})
}

// ────────────────────── aggregates ──────────────────────

// recomputeAggregates reloads items and rewrites the owning planning's
// derived counters. Aggregates are always recomputed from item state,
// never incremented independently.
func (s *planningService) recomputeAggregates(ctx context.Context, tx *repository.Repository, planning *model.WeeklyPlanning, callerID string) error {
	items, err := tx.PlanningItem.ListByPlanning(ctx, planning.PlanningID)
	if err != nil {
		return err
	}
	applyAggregates(planning, items)
	planning.UpdatedBy = &callerID
	return tx.Planning.Update(ctx, planning)
}

func applyAggregates(planning *model.WeeklyPlanning, items []model.PlanningItem) {
	var planned, completed, cancelled int
	var pDist, pFuel, pTime, pCost float64
	var aDist, aFuel, aTime, aCost float64

	for i := range items {
		it := &items[i]
		switch it.Status {
		case model.ItemStatusCancelled:
			cancelled++
			continue
		case model.ItemStatusCompleted:
			completed++
		}
		planned++

		pDist += derefF(it.PlannedDistance)
		pFuel += derefF(it.PlannedFuel)
		pTime += derefF(it.PlannedTravelTime)
		pCost += derefF(it.PlannedCost)

		if it.Status == model.ItemStatusCompleted {
			aDist += derefF(it.ActualDistance)
			aFuel += derefF(it.ActualFuel)
			aTime += derefF(it.ActualTravelTime)
			aCost += derefF(it.ActualCost)
		}
	}

	planning.PlannedVisits = planned
	planning.CompletedVisits = completed
	planning.CancelledVisits = cancelled
	planning.PlannedDistance = round2(pDist)
	planning.PlannedFuel = round1(pFuel)
	planning.PlannedTime = round1(pTime)
	planning.PlannedCost = round2(pCost)
	planning.ActualDistance = round2(aDist)
	planning.ActualFuel = round1(aFuel)
	planning.ActualTime = round1(aTime)
	planning.ActualCost = round2(aCost)
}

// ────────────────────── helpers ──────────────────────

func (s *planningService) getItem(ctx context.Context, itemID string) (*model.PlanningItem, error) {
	item, err := s.repo.PlanningItem.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		s.logger.Error("get item failed", zap.String("item_id", itemID), zap.Error(err))
		return nil, err
	}
	return item, nil
}

func (s *planningService) toPlanningResponse(planning *model.WeeklyPlanning, withItems bool) *dto.PlanningResponse {
	resp := &dto.PlanningResponse{
		ID:              planning.PlanningID,
		ResponsibleID:   planning.ResponsibleID,
		WeekStart:       planning.WeekStart.Format("2006-01-02"),
		WeekEnd:         planning.WeekEnd.Format("2006-01-02"),
		Status:          planning.Status,
		PlannedVisits:   planning.PlannedVisits,
		CompletedVisits: planning.CompletedVisits,
		CancelledVisits: planning.CancelledVisits,
		PlannedDistance: planning.PlannedDistance,
		PlannedFuel:     planning.PlannedFuel,
		PlannedTime:     planning.PlannedTime,
		PlannedCost:     planning.PlannedCost,
		ActualDistance:  planning.ActualDistance,
		ActualFuel:      planning.ActualFuel,
		ActualTime:      planning.ActualTime,
		ActualCost:      planning.ActualCost,
		Notes:           planning.Notes,
		EvaluationNotes: planning.EvaluationNotes,
		NextPeriodNotes: planning.NextPeriodNotes,
		CreatedAt:       planning.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       planning.UpdatedAt.Format(time.RFC3339),
	}

	if planning.Responsible != nil {
		resp.Responsible = &dto.UserBrief{
			ID:    planning.Responsible.UserID,
			Name:  planning.Responsible.Name,
			Email: planning.Responsible.Email,
		}
	}

	if withItems {
		resp.Items = make([]dto.ItemResponse, 0, len(planning.Items))
		for i := range planning.Items {
			resp.Items = append(resp.Items, *s.toItemResponse(&planning.Items[i]))
		}
	}

	return resp
}

func (s *planningService) toItemResponse(item *model.PlanningItem) *dto.ItemResponse {
	resp := &dto.ItemResponse{
		ID:                item.ItemID,
		PlanningID:        item.PlanningID,
		ResponsibleID:     item.ResponsibleID,
		PlannedDate:       item.PlannedDate.Format("2006-01-02"),
		PlannedTime:       item.PlannedTime,
		VisitKind:         item.VisitKind,
		Priority:          item.Priority,
		Status:            item.Status,
		PlannedDistance:   item.PlannedDistance,
		PlannedFuel:       item.PlannedFuel,
		PlannedTravelTime: item.PlannedTravelTime,
		PlannedCost:       item.PlannedCost,
		ActualDistance:    item.ActualDistance,
		ActualFuel:        item.ActualFuel,
		ActualCost:        item.ActualCost,
		Notes:             item.Notes,
		CancelReason:      item.CancelReason,
		RescheduleReason:  item.RescheduleReason,
		EstimatePending:   item.PlannedDistance == nil && item.Status != model.ItemStatusCancelled,
	}

	if item.StartedAt != nil {
		v := item.StartedAt.Format(time.RFC3339)
		resp.StartedAt = &v
	}
	if item.CompletedAt != nil {
		v := item.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
	}
	if item.Contact != nil {
		resp.Contact = &dto.ContactBrief{
			ID:   item.Contact.ContactID,
			Name: item.Contact.Name,
			City: item.Contact.City,
		}
	}

	return resp
}

// isDomainError separates expected business failures from infrastructure
// failures for logging purposes.
func isDomainError(err error) bool {
	var slotErr *SlotConflictError
	var activeErr *ActiveItemsError
	switch {
	case errors.As(err, &slotErr), errors.As(err, &activeErr):
		return true
	}
	for _, domain := range []error{
		ErrPlanningNotFound, ErrItemNotFound, ErrContactNotFound,
		ErrEmptyPlanning, ErrInvalidTransition, ErrEvaluationRequired,
		ErrJustificationTooShort, ErrContinuityViolation, ErrItemNotActive,
		ErrRetroactiveDate, ErrDateOutsideWeek, ErrInvalidDate,
	} {
		if errors.Is(err, domain) {
			return true
		}
	}
	return false
}

func firstNonNil(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func derefF(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func appendNote(existing *string, line string) string {
	if existing == nil || *existing == "" {
		return line
	}
	return *existing + "\n" + line
}
