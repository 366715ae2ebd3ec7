package dto

// ── collaborator / invite module DTOs ──

// AddCollaboratorRequest grants a user permissions on a planning.
type AddCollaboratorRequest struct {
	UserID     string `json:"user_id"     binding:"required,uuid"`
	CanView    *bool  `json:"can_view"`
	CanEdit    *bool  `json:"can_edit"`
	CanExecute *bool  `json:"can_execute"`
}

// CollaboratorResponse collaborator payload.
type CollaboratorResponse struct {
	ID         string     `json:"id"`
	PlanningID string     `json:"planning_id"`
	User       *UserBrief `json:"user,omitempty"`
	CanView    bool       `json:"can_view"`
	CanEdit    bool       `json:"can_edit"`
	CanExecute bool       `json:"can_execute"`
}

// CreateInviteRequest manual invite payload.
type CreateInviteRequest struct {
	PlanningID    string  `json:"planning_id"     binding:"required,uuid"`
	InvitedUserID string  `json:"invited_user_id" binding:"required,uuid"`
	Message       *string `json:"message"         binding:"omitempty,max=500"`
}

// RespondInviteRequest accept/decline payload.
type RespondInviteRequest struct {
	Accept bool `json:"accept"`
}

// InviteResponse invite payload.
type InviteResponse struct {
	ID               string     `json:"id"`
	PlanningID       string     `json:"planning_id"`
	InvitedUser      *UserBrief `json:"invited_user,omitempty"`
	InviteDate       string     `json:"invite_date"`
	Status           string     `json:"status"`
	IsAutomatic      bool       `json:"is_automatic"`
	NotificationSent bool       `json:"notification_sent"`
	Message          *string    `json:"message,omitempty"`
	RespondedAt      *string    `json:"responded_at,omitempty"`
}
