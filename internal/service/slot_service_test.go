package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
)

// fixedNow is a Monday; the surrounding week runs 2026-03-02 to 2026-03-06.
var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func setupSlotService(repos *testRepos) *slotService {
	svc := NewSlotService(testPlanningConfig(), repos.toRepository(), zap.NewNop()).(*slotService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestWeekBounds_Weekday(t *testing.T) {
	wednesday := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)
	start, end := WeekBounds(wednesday)

	if start.Weekday() != time.Monday || !SameDate(start, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("week start = %v, want Monday 2026-03-02", start)
	}
	if end.Weekday() != time.Friday || !SameDate(end, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("week end = %v, want Friday 2026-03-06", end)
	}
}

func TestWeekBounds_Weekend(t *testing.T) {
	saturday := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	start, end := WeekBounds(saturday)

	if !SameDate(start, saturday) || !SameDate(end, saturday) {
		t.Errorf("weekend bounds = [%v, %v], want the single day", start, end)
	}
}

func TestWeekBounds_EveryWeekdayMapsToSameWeek(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for offset := 0; offset < 5; offset++ {
		d := monday.AddDate(0, 0, offset)
		start, end := WeekBounds(d)
		if !SameDate(start, monday) || !SameDate(end, monday.AddDate(0, 0, 4)) {
			t.Errorf("bounds for %v = [%v, %v], want the shared Mon-Fri week", d, start, end)
		}
	}
}

func TestAvailableSlots_FullDay(t *testing.T) {
	repos := newTestRepos()
	svc := setupSlotService(repos)

	slots, err := svc.AvailableSlots(context.Background(), "user-1", fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 08:00-18:00 at 30-minute granularity.
	if len(slots) != 20 {
		t.Fatalf("slot count = %d, want 20", len(slots))
	}
	if slots[0].Time != "08:00" || slots[len(slots)-1].Time != "17:30" {
		t.Errorf("slot range = [%s, %s], want [08:00, 17:30]", slots[0].Time, slots[len(slots)-1].Time)
	}
}

func TestAvailableSlots_OccupiedExcluded(t *testing.T) {
	repos := newTestRepos()
	repos.item.items["item-1"] = &model.PlanningItem{
		ItemID: "item-1", PlanningID: "planning-1", ResponsibleID: "user-1",
		PlannedDate: DateOnly(fixedNow), PlannedTime: "10:00",
		Status: model.ItemStatusPlanned,
	}
	svc := setupSlotService(repos)

	slots, err := svc.AvailableSlots(context.Background(), "user-1", fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 19 {
		t.Errorf("slot count = %d, want 19 with one slot taken", len(slots))
	}
	for _, s := range slots {
		if s.Time == "10:00" {
			t.Errorf("occupied slot 10:00 still offered")
		}
	}
}

func TestAvailableSlots_CancelledItemFreesSlot(t *testing.T) {
	repos := newTestRepos()
	repos.item.items["item-1"] = &model.PlanningItem{
		ItemID: "item-1", PlanningID: "planning-1", ResponsibleID: "user-1",
		PlannedDate: DateOnly(fixedNow), PlannedTime: "10:00",
		Status: model.ItemStatusCancelled,
	}
	svc := setupSlotService(repos)

	slots, err := svc.AvailableSlots(context.Background(), "user-1", fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 20 {
		t.Errorf("slot count = %d, cancelled item must not block its slot", len(slots))
	}
}

func TestAvailableSlots_Scoring(t *testing.T) {
	repos := newTestRepos()
	svc := setupSlotService(repos)

	slots, err := svc.AvailableSlots(context.Background(), "user-1", fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byTime := make(map[string]float64, len(slots))
	lunch := make(map[string]bool, len(slots))
	for _, s := range slots {
		byTime[s.Time] = s.Score
		lunch[s.Time] = s.LunchWindow
	}

	// Earlier beats later outside the lunch window.
	if byTime["08:00"] <= byTime["17:30"] {
		t.Errorf("morning slot should outscore late afternoon: %.2f vs %.2f",
			byTime["08:00"], byTime["17:30"])
	}
	// Lunch slots are flagged and penalized but still offered.
	if !lunch["12:00"] || !lunch["12:30"] {
		t.Errorf("12:00 and 12:30 must be flagged as lunch window")
	}
	if lunch["13:00"] {
		t.Errorf("13:00 is outside the lunch window")
	}
	if byTime["12:00"] >= byTime["11:30"] {
		t.Errorf("lunch slot should score below the adjacent morning slot")
	}
	for _, s := range slots {
		if s.Score < 0 || s.Score > 1 {
			t.Errorf("score %.2f for %s out of [0,1]", s.Score, s.Time)
		}
	}
}

func TestValidateDate_Retroactive(t *testing.T) {
	repos := newTestRepos()
	svc := setupSlotService(repos)

	yesterday := fixedNow.AddDate(0, 0, -1)
	if err := svc.ValidateDate(context.Background(), "user-1", yesterday); !errors.Is(err, ErrRetroactiveDate) {
		t.Errorf("err = %v, want ErrRetroactiveDate", err)
	}

	// Today is allowed.
	if err := svc.ValidateDate(context.Background(), "user-1", fixedNow); err != nil {
		t.Errorf("today rejected: %v", err)
	}
}

func TestCheckSlot_Conflict(t *testing.T) {
	repos := newTestRepos()
	repos.item.items["item-1"] = &model.PlanningItem{
		ItemID: "item-1", PlanningID: "planning-1", ResponsibleID: "user-1",
		PlannedDate: DateOnly(fixedNow), PlannedTime: "09:00",
		Status: model.ItemStatusPlanned,
	}
	svc := setupSlotService(repos)

	err := svc.CheckSlot(context.Background(), "user-1", fixedNow, "09:00", "")
	var conflict *SlotConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want SlotConflictError", err)
	}
	if conflict.Existing.ItemID != "item-1" {
		t.Errorf("conflict carries item %s, want item-1", conflict.Existing.ItemID)
	}

	// A different user may hold the same slot.
	if err := svc.CheckSlot(context.Background(), "user-2", fixedNow, "09:00", ""); err != nil {
		t.Errorf("slot must be per-responsible, got %v", err)
	}

	// A free slot passes.
	if err := svc.CheckSlot(context.Background(), "user-1", fixedNow, "09:30", ""); err != nil {
		t.Errorf("free slot rejected: %v", err)
	}

	// The holder itself is excluded when moving an item onto its own slot.
	if err := svc.CheckSlot(context.Background(), "user-1", fixedNow, "09:00", "item-1"); err != nil {
		t.Errorf("item conflicts with itself: %v", err)
	}
}

func TestValidateDate_CoveredByExistingPlanning(t *testing.T) {
	repos := newTestRepos()
	repos.planning.plannings["planning-1"] = &model.WeeklyPlanning{
		PlanningID: "planning-1", ResponsibleID: "user-1",
		WeekStart: fixedNow, WeekEnd: fixedNow.AddDate(0, 0, 4),
		Status: model.PlanningStatusDraft,
	}
	svc := setupSlotService(repos)

	wednesday := fixedNow.AddDate(0, 0, 2)
	if err := svc.ValidateDate(context.Background(), "user-1", wednesday); err != nil {
		t.Errorf("date inside the stored week rejected: %v", err)
	}
}

func TestParseClock(t *testing.T) {
	if _, err := parseClock("25:00"); err == nil {
		t.Errorf("25:00 accepted")
	}
	m, err := parseClock("14:30")
	if err != nil || m != 14*60+30 {
		t.Errorf("parseClock(14:30) = %d, %v", m, err)
	}
	if got := formatClock(8 * 60); got != "08:00" {
		t.Errorf("formatClock(480) = %s", got)
	}
}
