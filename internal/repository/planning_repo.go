package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
	pkgerrors "github.com/nascimento1980/SmartCHAPP-sub000/pkg/errors"
)

// WeeklyPlanningRepository weekly planning data access.
type WeeklyPlanningRepository interface {
	Create(ctx context.Context, planning *model.WeeklyPlanning) error
	GetByID(ctx context.Context, id string) (*model.WeeklyPlanning, error)
	// FindByWeek returns the non-cancelled planning for the exact
	// (responsible, week_start, week_end) tuple.
	FindByWeek(ctx context.Context, responsibleID string, weekStart, weekEnd time.Time) (*model.WeeklyPlanning, error)
	// FindCoveringDate returns the non-cancelled planning whose
	// [week_start, week_end] contains the date.
	FindCoveringDate(ctx context.Context, responsibleID string, date time.Time) (*model.WeeklyPlanning, error)
	ListByResponsible(ctx context.Context, responsibleID string, offset, limit int) ([]model.WeeklyPlanning, int64, error)
	Update(ctx context.Context, planning *model.WeeklyPlanning) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

// PlanningItemRepository planning item data access.
type PlanningItemRepository interface {
	Create(ctx context.Context, item *model.PlanningItem) error
	GetByID(ctx context.Context, id string) (*model.PlanningItem, error)
	ListByPlanning(ctx context.Context, planningID string) ([]model.PlanningItem, error)
	// ListByResponsibleAndDate returns the non-cancelled items of one user
	// on one date; feeds slot generation.
	ListByResponsibleAndDate(ctx context.Context, responsibleID string, date time.Time) ([]model.PlanningItem, error)
	// FindSlotConflict returns the non-cancelled item already holding the
	// (responsible, date, time) slot, or gorm.ErrRecordNotFound.
	FindSlotConflict(ctx context.Context, responsibleID string, date time.Time, timeOfDay string) (*model.PlanningItem, error)
	// ListScheduledForDate returns every non-cancelled item planned for the
	// date across all plannings; feeds the auto-invite dispatcher.
	ListScheduledForDate(ctx context.Context, date time.Time) ([]model.PlanningItem, error)
	Update(ctx context.Context, item *model.PlanningItem) error
	// BatchCompleteActive transitions every unsettled item of a planning
	// (planejada, em_andamento, reagendada) to concluida stamping
	// completedAt; used by planning deletion.
	BatchCompleteActive(ctx context.Context, planningID string, completedAt time.Time, updatedBy string) error
}

// ── WeeklyPlanning implementation ──

type weeklyPlanningRepo struct {
	db *gorm.DB
}

// NewWeeklyPlanningRepo creates a WeeklyPlanningRepository.
func NewWeeklyPlanningRepo(db *gorm.DB) WeeklyPlanningRepository {
	return &weeklyPlanningRepo{db: db}
}

func (r *weeklyPlanningRepo) Create(ctx context.Context, planning *model.WeeklyPlanning) error {
	return r.db.WithContext(ctx).Create(planning).Error
}

func (r *weeklyPlanningRepo) GetByID(ctx context.Context, id string) (*model.WeeklyPlanning, error) {
	var planning model.WeeklyPlanning
	err := r.db.WithContext(ctx).
		Preload("Responsible").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("planned_date ASC, planned_time ASC")
		}).
		Preload("Items.Contact").
		Where("planning_id = ?", id).
		First(&planning).Error
	if err != nil {
		return nil, err
	}
	return &planning, nil
}

func (r *weeklyPlanningRepo) FindByWeek(ctx context.Context, responsibleID string, weekStart, weekEnd time.Time) (*model.WeeklyPlanning, error) {
	var planning model.WeeklyPlanning
	err := r.db.WithContext(ctx).
		Where("responsible_id = ? AND week_start = ? AND week_end = ? AND status != ?",
			responsibleID, weekStart.Format("2006-01-02"), weekEnd.Format("2006-01-02"), model.PlanningStatusCancelled).
		First(&planning).Error
	if err != nil {
		return nil, err
	}
	return &planning, nil
}

func (r *weeklyPlanningRepo) FindCoveringDate(ctx context.Context, responsibleID string, date time.Time) (*model.WeeklyPlanning, error) {
	var planning model.WeeklyPlanning
	d := date.Format("2006-01-02")
	err := r.db.WithContext(ctx).
		Where("responsible_id = ? AND week_start <= ? AND week_end >= ? AND status != ?",
			responsibleID, d, d, model.PlanningStatusCancelled).
		First(&planning).Error
	if err != nil {
		return nil, err
	}
	return &planning, nil
}

func (r *weeklyPlanningRepo) ListByResponsible(ctx context.Context, responsibleID string, offset, limit int) ([]model.WeeklyPlanning, int64, error) {
	var plannings []model.WeeklyPlanning
	var total int64

	db := r.db.WithContext(ctx).Model(&model.WeeklyPlanning{}).
		Where("responsible_id = ?", responsibleID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("week_start DESC").
		Find(&plannings).Error
	return plannings, total, err
}

func (r *weeklyPlanningRepo) Update(ctx context.Context, planning *model.WeeklyPlanning) error {
	oldVersion := planning.Version
	result := r.db.WithContext(ctx).
		Model(planning).
		Where("planning_id = ? AND version = ?", planning.PlanningID, oldVersion).
		Updates(map[string]interface{}{
			"status":            planning.Status,
			"planned_visits":    planning.PlannedVisits,
			"completed_visits":  planning.CompletedVisits,
			"cancelled_visits":  planning.CancelledVisits,
			"planned_distance":  planning.PlannedDistance,
			"planned_fuel":      planning.PlannedFuel,
			"planned_time":      planning.PlannedTime,
			"planned_cost":      planning.PlannedCost,
			"actual_distance":   planning.ActualDistance,
			"actual_fuel":       planning.ActualFuel,
			"actual_time":       planning.ActualTime,
			"actual_cost":       planning.ActualCost,
			"notes":             planning.Notes,
			"evaluation_notes":  planning.EvaluationNotes,
			"next_period_notes": planning.NextPeriodNotes,
			"updated_by":        planning.UpdatedBy,
			"version":           oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	planning.Version = oldVersion + 1
	return nil
}

func (r *weeklyPlanningRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.WeeklyPlanning{}).
		Where("planning_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// ── PlanningItem implementation ──

type planningItemRepo struct {
	db *gorm.DB
}

// NewPlanningItemRepo creates a PlanningItemRepository.
func NewPlanningItemRepo(db *gorm.DB) PlanningItemRepository {
	return &planningItemRepo{db: db}
}

func (r *planningItemRepo) Create(ctx context.Context, item *model.PlanningItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *planningItemRepo) GetByID(ctx context.Context, id string) (*model.PlanningItem, error) {
	var item model.PlanningItem
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Where("item_id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *planningItemRepo) ListByPlanning(ctx context.Context, planningID string) ([]model.PlanningItem, error) {
	var items []model.PlanningItem
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Where("planning_id = ?", planningID).
		Order("planned_date ASC, planned_time ASC").
		Find(&items).Error
	return items, err
}

func (r *planningItemRepo) ListByResponsibleAndDate(ctx context.Context, responsibleID string, date time.Time) ([]model.PlanningItem, error) {
	var items []model.PlanningItem
	err := r.db.WithContext(ctx).
		Where("responsible_id = ? AND planned_date = ? AND status != ?",
			responsibleID, date.Format("2006-01-02"), model.ItemStatusCancelled).
		Order("planned_time ASC").
		Find(&items).Error
	return items, err
}

func (r *planningItemRepo) FindSlotConflict(ctx context.Context, responsibleID string, date time.Time, timeOfDay string) (*model.PlanningItem, error) {
	var item model.PlanningItem
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Where("responsible_id = ? AND planned_date = ? AND planned_time = ? AND status != ?",
			responsibleID, date.Format("2006-01-02"), timeOfDay, model.ItemStatusCancelled).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *planningItemRepo) ListScheduledForDate(ctx context.Context, date time.Time) ([]model.PlanningItem, error) {
	var items []model.PlanningItem
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Preload("Planning").
		Where("planned_date = ? AND status != ?", date.Format("2006-01-02"), model.ItemStatusCancelled).
		Order("planned_time ASC").
		Find(&items).Error
	return items, err
}

func (r *planningItemRepo) Update(ctx context.Context, item *model.PlanningItem) error {
	oldVersion := item.Version
	result := r.db.WithContext(ctx).
		Model(item).
		Where("item_id = ? AND version = ?", item.ItemID, oldVersion).
		Updates(map[string]interface{}{
			"planned_date":        item.PlannedDate,
			"planned_time":        item.PlannedTime,
			"visit_kind":          item.VisitKind,
			"priority":            item.Priority,
			"status":              item.Status,
			"planned_distance":    item.PlannedDistance,
			"planned_fuel":        item.PlannedFuel,
			"planned_travel_time": item.PlannedTravelTime,
			"planned_cost":        item.PlannedCost,
			"actual_distance":     item.ActualDistance,
			"actual_fuel":         item.ActualFuel,
			"actual_travel_time":  item.ActualTravelTime,
			"actual_cost":         item.ActualCost,
			"started_at":          item.StartedAt,
			"completed_at":        item.CompletedAt,
			"notes":               item.Notes,
			"cancel_reason":       item.CancelReason,
			"reschedule_reason":   item.RescheduleReason,
			"rescheduled_at":      item.RescheduledAt,
			"updated_by":          item.UpdatedBy,
			"version":             oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	item.Version = oldVersion + 1
	return nil
}

func (r *planningItemRepo) BatchCompleteActive(ctx context.Context, planningID string, completedAt time.Time, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.PlanningItem{}).
		Where("planning_id = ? AND status IN ?", planningID,
			[]string{model.ItemStatusPlanned, model.ItemStatusInProgress, model.ItemStatusRescheduled}).
		Updates(map[string]interface{}{
			"status":       model.ItemStatusCompleted,
			"completed_at": completedAt,
			"updated_by":   updatedBy,
			"version":      gorm.Expr("version + 1"),
		}).Error
}
