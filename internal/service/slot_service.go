package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nascimento1980/SmartCHAPP-sub000/config"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/dto"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/repository"
)

// ── scheduling errors ──

var (
	// ErrRetroactiveDate rejects scheduling before today.
	ErrRetroactiveDate = errors.New("visits cannot be scheduled on past dates")
	// ErrDateOutsideWeek rejects a date that escapes the boundaries of the
	// week's existing planning.
	ErrDateOutsideWeek = errors.New("date falls outside the existing planning for that week")
	// ErrInvalidDate rejects unparseable dates/times.
	ErrInvalidDate = errors.New("invalid date or time")
)

// SlotConflictError carries the item already holding a requested slot so
// callers can prompt for an alternative; the conflict is never resolved
// silently.
type SlotConflictError struct {
	Existing *model.PlanningItem
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot %s %s already taken by item %s",
		e.Existing.PlannedDate.Format("2006-01-02"), e.Existing.PlannedTime, e.Existing.ItemID)
}

// SlotService validates scheduling dates and produces available time slots.
type SlotService interface {
	// AvailableSlots lists the free slots of the operating window for one
	// user on one date, ordered by time of day.
	AvailableSlots(ctx context.Context, responsibleID string, date time.Time) ([]dto.SlotResponse, error)
	// ValidateDate enforces the no-retroactive rule and week containment.
	ValidateDate(ctx context.Context, responsibleID string, date time.Time) error
	// CheckSlot is the pre-flight conflict check; the uq_item_slot unique
	// index remains the authoritative guard at the storage layer.
	// excludeItemID skips the item being moved so a reschedule that keeps
	// its current slot does not conflict with itself; empty on creation.
	CheckSlot(ctx context.Context, responsibleID string, date time.Time, timeOfDay, excludeItemID string) error
}

type slotService struct {
	cfg    *config.PlanningConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewSlotService creates a SlotService.
func NewSlotService(cfg *config.PlanningConfig, repo *repository.Repository, logger *zap.Logger) SlotService {
	return &slotService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

func (s *slotService) AvailableSlots(ctx context.Context, responsibleID string, date time.Time) ([]dto.SlotResponse, error) {
	items, err := s.repo.PlanningItem.ListByResponsibleAndDate(ctx, responsibleID, date)
	if err != nil {
		s.logger.Error("list items for slot generation failed",
			zap.String("responsible_id", responsibleID), zap.Error(err))
		return nil, err
	}

	occupied := make(map[string]bool, len(items))
	for _, it := range items {
		occupied[it.PlannedTime] = true
	}

	startMin, err := parseClock(s.cfg.WorkdayStart)
	if err != nil {
		return nil, fmt.Errorf("planning.workday_start: %w", err)
	}
	endMin, err := parseClock(s.cfg.WorkdayEnd)
	if err != nil {
		return nil, fmt.Errorf("planning.workday_end: %w", err)
	}
	lunchStart, _ := parseClock(s.cfg.LunchStart)
	lunchEnd, _ := parseClock(s.cfg.LunchEnd)

	step := s.cfg.SlotMinutes
	total := (endMin - startMin) / step

	slots := make([]dto.SlotResponse, 0, total)
	for i, m := 0, startMin; m < endMin; i, m = i+1, m+step {
		clock := formatClock(m)
		if occupied[clock] {
			continue
		}

		lunch := m >= lunchStart && m < lunchEnd
		// Ranking aid only: earlier slots score higher, lunch-window slots
		// are penalized but still offered.
		score := 1.0 - float64(i)/float64(total)*0.5
		if lunch {
			score -= 0.3
		}
		if score < 0 {
			score = 0
		}

		slots = append(slots, dto.SlotResponse{
			Time:        clock,
			Score:       round2(score),
			LunchWindow: lunch,
		})
	}

	return slots, nil
}

func (s *slotService) ValidateDate(ctx context.Context, responsibleID string, date time.Time) error {
	today := DateOnly(s.now())
	if DateOnly(date).Before(today) {
		return ErrRetroactiveDate
	}

	// Continuity containment: once a week has a planning its stored
	// boundaries are authoritative, so the lookup goes by date coverage.
	_, err := s.repo.Planning.FindCoveringDate(ctx, responsibleID, date)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// No planning covers the date. If the derived week still holds one,
	// the date escaped its stored boundaries.
	weekStart, weekEnd := WeekBounds(date)
	if _, werr := s.repo.Planning.FindByWeek(ctx, responsibleID, weekStart, weekEnd); werr == nil {
		return ErrDateOutsideWeek
	} else if !errors.Is(werr, gorm.ErrRecordNotFound) {
		return werr
	}

	return nil
}

func (s *slotService) CheckSlot(ctx context.Context, responsibleID string, date time.Time, timeOfDay, excludeItemID string) error {
	existing, err := s.repo.PlanningItem.FindSlotConflict(ctx, responsibleID, date, timeOfDay)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if excludeItemID != "" && existing.ItemID == excludeItemID {
		return nil
	}
	return &SlotConflictError{Existing: existing}
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDate, clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// formatClock converts minutes since midnight back to "HH:MM".
func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
