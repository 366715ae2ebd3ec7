package model

import "time"

// Invite statuses.
const (
	InviteStatusPending   = "pendente"
	InviteStatusAccepted  = "aceito"
	InviteStatusDeclined  = "recusado"
	InviteStatusCancelled = "cancelado"
)

// PlanningCollaborator maps planning_collaborators. Grants a user
// view/edit/execute permissions on a weekly planning. Weak reference: the
// planning is referenced by id, never owned.
type PlanningCollaborator struct {
	CollaboratorID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"collaborator_id"`
	PlanningID     string `gorm:"type:uuid;not null"                             json:"planning_id"`
	UserID         string `gorm:"type:uuid;not null"                             json:"user_id"`
	CanView        bool   `gorm:"not null;default:true"                          json:"can_view"`
	CanEdit        bool   `gorm:"not null;default:false"                         json:"can_edit"`
	CanExecute     bool   `gorm:"not null;default:false"                         json:"can_execute"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName sets the table name.
func (PlanningCollaborator) TableName() string { return "planning_collaborators" }

// PlanningInvite maps planning_invites. Automatic invites are created
// already accepted (lightweight same-day reminders, not approval gates);
// the uq_invite_auto_day partial index is the dispatcher's idempotency key.
type PlanningInvite struct {
	InviteID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invite_id"`
	PlanningID       string     `gorm:"type:uuid;not null"                             json:"planning_id"`
	InvitedUserID    string     `gorm:"type:uuid;not null"                             json:"invited_user_id"`
	InviteDate       time.Time  `gorm:"type:date;not null"                             json:"invite_date"`
	Status           string     `gorm:"type:varchar(20);not null;default:'pendente'"   json:"status"`
	IsAutomatic      bool       `gorm:"not null;default:false"                         json:"is_automatic"`
	NotificationSent bool       `gorm:"not null;default:false"                         json:"notification_sent"`
	Message          *string    `gorm:"type:varchar(500)"                              json:"message,omitempty"`
	RespondedAt      *time.Time `json:"responded_at,omitempty"`
	BaseModel

	InvitedUser *User `gorm:"foreignKey:InvitedUserID;references:UserID" json:"invited_user,omitempty"`
}

// TableName sets the table name.
func (PlanningInvite) TableName() string { return "planning_invites" }

// IsTerminal reports whether the invite was responded to or cancelled.
func (i *PlanningInvite) IsTerminal() bool {
	return i.Status != InviteStatusPending
}
