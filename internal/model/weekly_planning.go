package model

import "time"

// Weekly planning statuses. The lifecycle is
// em_planejamento → em_execucao → concluida → avaliada, with cancelada
// reachable from any non-terminal state and reopen returning to
// em_planejamento.
const (
	PlanningStatusDraft     = "em_planejamento"
	PlanningStatusExecuting = "em_execucao"
	PlanningStatusCompleted = "concluida"
	PlanningStatusEvaluated = "avaliada"
	PlanningStatusCancelled = "cancelada"
)

// Planning item statuses.
const (
	ItemStatusPlanned     = "planejada"
	ItemStatusInProgress  = "em_andamento"
	ItemStatusCompleted   = "concluida"
	ItemStatusCancelled   = "cancelada"
	ItemStatusRescheduled = "reagendada"
)

// Visit kinds.
const (
	VisitKindCommercial   = "comercial"
	VisitKindTechnical    = "tecnica"
	VisitKindInstallation = "instalacao"
	VisitKindMaintenance  = "manutencao"
	VisitKindSupport      = "suporte"
	VisitKindTraining     = "treinamento"
	VisitKindDeployment   = "implantacao"
)

// Item priorities.
const (
	PriorityLow      = "baixa"
	PriorityMedium   = "media"
	PriorityHigh     = "alta"
	PriorityCritical = "critica"
)

// WeeklyPlanning maps weekly_plannings. The week-scoped container for a
// responsible user's visits. At most one non-cancelled planning may exist
// per (responsible_id, week_start, week_end); the uq_planning_week partial
// index enforces it. Once created, week boundaries are immutable.
type WeeklyPlanning struct {
	PlanningID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"    json:"planning_id"`
	ResponsibleID string    `gorm:"type:uuid;not null"                                json:"responsible_id"`
	WeekStart     time.Time `gorm:"type:date;not null"                                json:"week_start"`
	WeekEnd       time.Time `gorm:"type:date;not null"                                json:"week_end"`
	Status        string    `gorm:"type:varchar(20);not null;default:'em_planejamento'" json:"status"`

	// Derived aggregates, recomputed from item state on every mutation.
	PlannedVisits   int     `gorm:"not null;default:0" json:"planned_visits"`
	CompletedVisits int     `gorm:"not null;default:0" json:"completed_visits"`
	CancelledVisits int     `gorm:"not null;default:0" json:"cancelled_visits"`
	PlannedDistance float64 `gorm:"not null;default:0" json:"planned_distance"`
	PlannedFuel     float64 `gorm:"not null;default:0" json:"planned_fuel"`
	PlannedTime     float64 `gorm:"not null;default:0" json:"planned_time"`
	PlannedCost     float64 `gorm:"not null;default:0" json:"planned_cost"`
	ActualDistance  float64 `gorm:"not null;default:0" json:"actual_distance"`
	ActualFuel      float64 `gorm:"not null;default:0" json:"actual_fuel"`
	ActualTime      float64 `gorm:"not null;default:0" json:"actual_time"`
	ActualCost      float64 `gorm:"not null;default:0" json:"actual_cost"`

	Notes           *string `gorm:"type:text" json:"notes,omitempty"`
	EvaluationNotes *string `gorm:"type:text" json:"evaluation_notes,omitempty"`
	NextPeriodNotes *string `gorm:"type:text" json:"next_period_notes,omitempty"`
	VersionedModel

	Responsible *User          `gorm:"foreignKey:ResponsibleID;references:UserID" json:"responsible,omitempty"`
	Items       []PlanningItem `gorm:"foreignKey:PlanningID"                      json:"items,omitempty"`
}

// TableName sets the table name.
func (WeeklyPlanning) TableName() string { return "weekly_plannings" }

// IsTerminal reports whether the planning reached a terminal status.
func (p *WeeklyPlanning) IsTerminal() bool {
	return p.Status == PlanningStatusEvaluated || p.Status == PlanningStatusCancelled
}

// PlanningItem maps planning_items. One scheduled client visit inside a
// weekly planning. planned_date must fall within the owning planning's
// [week_start, week_end]; the slot (responsible, date, time) is unique among
// non-cancelled items (uq_item_slot).
type PlanningItem struct {
	ItemID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"item_id"`
	PlanningID    string    `gorm:"type:uuid;not null"                             json:"planning_id"`
	ResponsibleID string    `gorm:"type:uuid;not null"                             json:"responsible_id"`
	ContactID     string    `gorm:"type:uuid;not null"                             json:"contact_id"`
	PlannedDate   time.Time `gorm:"type:date;not null"                             json:"planned_date"`
	PlannedTime   string    `gorm:"type:varchar(5);not null"                       json:"planned_time"` // "HH:MM"
	VisitKind     string    `gorm:"type:varchar(20);not null"                      json:"visit_kind"`
	Priority      string    `gorm:"type:varchar(10);not null;default:'media'"      json:"priority"`
	Status        string    `gorm:"type:varchar(20);not null;default:'planejada'"  json:"status"`

	// Leg estimates; nil when geocoding was unavailable at creation time
	// and the estimate is pending backfill.
	PlannedDistance   *float64 `json:"planned_distance,omitempty"`
	PlannedFuel       *float64 `json:"planned_fuel,omitempty"`
	PlannedTravelTime *float64 `json:"planned_travel_time,omitempty"`
	PlannedCost       *float64 `json:"planned_cost,omitempty"`
	ActualDistance    *float64 `json:"actual_distance,omitempty"`
	ActualFuel        *float64 `json:"actual_fuel,omitempty"`
	ActualTravelTime  *float64 `json:"actual_travel_time,omitempty"`
	ActualCost        *float64 `json:"actual_cost,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Notes            *string    `gorm:"type:text"         json:"notes,omitempty"`
	CancelReason     *string    `gorm:"type:varchar(500)" json:"cancel_reason,omitempty"`
	RescheduleReason *string    `gorm:"type:varchar(500)" json:"reschedule_reason,omitempty"`
	RescheduledAt    *time.Time `json:"rescheduled_at,omitempty"`
	VersionedModel

	Planning *WeeklyPlanning `gorm:"foreignKey:PlanningID;references:PlanningID" json:"planning,omitempty"`
	Contact  *Contact        `gorm:"foreignKey:ContactID;references:ContactID"   json:"contact,omitempty"`
}

// TableName sets the table name.
func (PlanningItem) TableName() string { return "planning_items" }

// IsActive reports whether the item is still unsettled. A rescheduled
// visit stays live: it can be moved again, checked in, and it blocks
// planning deletion like a planned one.
func (i *PlanningItem) IsActive() bool {
	return i.Status == ItemStatusPlanned ||
		i.Status == ItemStatusInProgress ||
		i.Status == ItemStatusRescheduled
}
