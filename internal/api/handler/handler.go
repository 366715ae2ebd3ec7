package handler

import "github.com/nascimento1980/SmartCHAPP-sub000/internal/service"

// Handler aggregates all HTTP handlers.
type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Contact  *ContactHandler
	Planning *PlanningHandler
	Invite   *InviteHandler
	Export   *ExportHandler
}

// NewHandler wires the handler aggregate.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		User:     NewUserHandler(svc.User),
		Contact:  NewContactHandler(svc.Contact),
		Planning: NewPlanningHandler(svc.Planning, svc.Slot),
		Invite:   NewInviteHandler(svc.Invite),
		Export:   NewExportHandler(svc.Export),
	}
}
