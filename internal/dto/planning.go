package dto

// ── weekly planning module DTOs ──

// CreateItemRequest schedules a visit. The owning weekly planning is
// resolved (or created) from the planned date; callers never supply week
// boundaries.
type CreateItemRequest struct {
	ContactID   string  `json:"contact_id"   binding:"required,uuid"`
	PlannedDate string  `json:"planned_date" binding:"required"` // "2006-01-02"
	PlannedTime string  `json:"planned_time" binding:"required"` // "HH:MM"
	VisitKind   string  `json:"visit_kind"   binding:"required,oneof=comercial tecnica instalacao manutencao suporte treinamento implantacao"`
	Priority    string  `json:"priority"     binding:"omitempty,oneof=baixa media alta critica"`
	Notes       *string `json:"notes"        binding:"omitempty,max=2000"`
}

// RescheduleItemRequest moves a visit to another slot.
type RescheduleItemRequest struct {
	PlannedDate string `json:"planned_date" binding:"required"`
	PlannedTime string `json:"planned_time" binding:"required"`
	Reason      string `json:"reason"       binding:"required,min=5,max=500"`
}

// CancelItemRequest cancels a visit; the reason is mandatory because items
// are soft-deleted, never purged.
type CancelItemRequest struct {
	Reason string `json:"reason" binding:"required,min=5,max=500"`
}

// CheckOutItemRequest closes a visit; actual figures are optional and
// default to the planned estimates.
type CheckOutItemRequest struct {
	ActualDistance *float64 `json:"actual_distance" binding:"omitempty,min=0"`
	ActualFuel     *float64 `json:"actual_fuel"     binding:"omitempty,min=0"`
	ActualCost     *float64 `json:"actual_cost"     binding:"omitempty,min=0"`
	Notes          *string  `json:"notes"           binding:"omitempty,max=2000"`
}

// EvaluatePlanningRequest closes the retrospective.
type EvaluatePlanningRequest struct {
	EvaluationNotes string  `json:"evaluation_notes"  binding:"required,min=10"`
	NextPeriodNotes *string `json:"next_period_notes" binding:"omitempty,max=5000"`
}

// CancelPlanningRequest cancels a planning.
type CancelPlanningRequest struct {
	Reason string `json:"reason" binding:"required,min=10,max=500"`
}

// DeletePlanningRequest removes a planning. Justification is an audit
// requirement; resolution selects what happens to still-active items.
type DeletePlanningRequest struct {
	Justification string `json:"justification" binding:"required,min=10,max=500"`
	// "concluir" batch-completes active items; empty requires none active.
	Resolution string `json:"resolution" binding:"omitempty,oneof=concluir"`
}

// PlanningListRequest pagination query.
type PlanningListRequest struct {
	Page     int `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize int `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// AvailableSlotsRequest slot query for one date.
type AvailableSlotsRequest struct {
	Date string `form:"date" binding:"required"` // "2006-01-02"
}

// SlotResponse one candidate time-of-day. Score is a UX ranking aid, not a
// constraint: earlier slots outside the lunch window score higher.
type SlotResponse struct {
	Time        string  `json:"time"`
	Score       float64 `json:"score"`
	LunchWindow bool    `json:"lunch_window"`
}

// EstimateResponse distance/fuel/cost figures for one leg.
type EstimateResponse struct {
	DistanceKm    float64 `json:"distance_km"`
	TravelTimeMin float64 `json:"travel_time_min"`
	FuelLiters    float64 `json:"fuel_liters"`
	Cost          float64 `json:"cost"`
}

// ItemResponse planning item payload.
type ItemResponse struct {
	ID            string        `json:"id"`
	PlanningID    string        `json:"planning_id"`
	ResponsibleID string        `json:"responsible_id"`
	Contact       *ContactBrief `json:"contact,omitempty"`
	PlannedDate   string        `json:"planned_date"`
	PlannedTime   string        `json:"planned_time"`
	VisitKind     string        `json:"visit_kind"`
	Priority      string        `json:"priority"`
	Status        string        `json:"status"`

	PlannedDistance   *float64 `json:"planned_distance,omitempty"`
	PlannedFuel       *float64 `json:"planned_fuel,omitempty"`
	PlannedTravelTime *float64 `json:"planned_travel_time,omitempty"`
	PlannedCost       *float64 `json:"planned_cost,omitempty"`
	ActualDistance    *float64 `json:"actual_distance,omitempty"`
	ActualFuel        *float64 `json:"actual_fuel,omitempty"`
	ActualCost        *float64 `json:"actual_cost,omitempty"`

	StartedAt   *string `json:"started_at,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty"`

	Notes            *string `json:"notes,omitempty"`
	CancelReason     *string `json:"cancel_reason,omitempty"`
	RescheduleReason *string `json:"reschedule_reason,omitempty"`

	// EstimatePending marks items persisted without distance/fuel/cost
	// because geocoding was unavailable.
	EstimatePending bool `json:"estimate_pending,omitempty"`
}

// ItemBrief conflict detail payload: enough for the caller to prompt the
// user with an alternative.
type ItemBrief struct {
	ID          string `json:"id"`
	PlannedDate string `json:"planned_date"`
	PlannedTime string `json:"planned_time"`
	Status      string `json:"status"`
	ContactName string `json:"contact_name,omitempty"`
}

// PlanningResponse weekly planning payload.
type PlanningResponse struct {
	ID            string     `json:"id"`
	ResponsibleID string     `json:"responsible_id"`
	Responsible   *UserBrief `json:"responsible,omitempty"`
	WeekStart     string     `json:"week_start"`
	WeekEnd       string     `json:"week_end"`
	Status        string     `json:"status"`

	PlannedVisits   int     `json:"planned_visits"`
	CompletedVisits int     `json:"completed_visits"`
	CancelledVisits int     `json:"cancelled_visits"`
	PlannedDistance float64 `json:"planned_distance"`
	PlannedFuel     float64 `json:"planned_fuel"`
	PlannedTime     float64 `json:"planned_time"`
	PlannedCost     float64 `json:"planned_cost"`
	ActualDistance  float64 `json:"actual_distance"`
	ActualFuel      float64 `json:"actual_fuel"`
	ActualTime      float64 `json:"actual_time"`
	ActualCost      float64 `json:"actual_cost"`

	Notes           *string `json:"notes,omitempty"`
	EvaluationNotes *string `json:"evaluation_notes,omitempty"`
	NextPeriodNotes *string `json:"next_period_notes,omitempty"`

	Items []ItemResponse `json:"items,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
