package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/dto"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/repository"
)

// ── collaborator / invite module errors ──

var (
	ErrInviteNotFound       = errors.New("invite not found")
	ErrInviteAlreadySettled = errors.New("invite already responded or cancelled")
	ErrNotInvitee           = errors.New("only the invited user can respond")
	ErrAlreadyCollaborator  = errors.New("user is already a collaborator")
)

// InviteService collaborator grants and manual invite handling. Automatic
// invites come from the dispatcher, not from here.
type InviteService interface {
	AddCollaborator(ctx context.Context, planningID string, req *dto.AddCollaboratorRequest, callerID string) (*dto.CollaboratorResponse, error)
	ListCollaborators(ctx context.Context, planningID string) ([]dto.CollaboratorResponse, error)
	RemoveCollaborator(ctx context.Context, planningID, userID string) error

	CreateInvite(ctx context.Context, req *dto.CreateInviteRequest, callerID string) (*dto.InviteResponse, error)
	ListInvites(ctx context.Context, planningID string) ([]dto.InviteResponse, error)
	// Respond settles a pending invite; accepting grants view/execute
	// collaboration on the planning.
	Respond(ctx context.Context, inviteID string, req *dto.RespondInviteRequest, callerID string) (*dto.InviteResponse, error)
}

type inviteService struct {
	repo   *repository.Repository
	mailer Mailer
	logger *zap.Logger
	now    func() time.Time
}

// NewInviteService creates an InviteService.
func NewInviteService(repo *repository.Repository, mailer Mailer, logger *zap.Logger) InviteService {
	return &inviteService{repo: repo, mailer: mailer, logger: logger, now: time.Now}
}

// ────────────────────── collaborators ──────────────────────

func (s *inviteService) AddCollaborator(ctx context.Context, planningID string, req *dto.AddCollaboratorRequest, callerID string) (*dto.CollaboratorResponse, error) {
	if _, err := s.repo.Planning.GetByID(ctx, planningID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanningNotFound
		}
		return nil, err
	}

	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if _, err := s.repo.Collaborator.GetByPlanningAndUser(ctx, planningID, req.UserID); err == nil {
		return nil, ErrAlreadyCollaborator
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	collab := &model.PlanningCollaborator{
		PlanningID: planningID,
		UserID:     req.UserID,
		CanView:    boolOr(req.CanView, true),
		CanEdit:    boolOr(req.CanEdit, false),
		CanExecute: boolOr(req.CanExecute, false),
	}
	collab.CreatedBy = &callerID
	collab.UpdatedBy = &callerID

	if err := s.repo.Collaborator.Create(ctx, collab); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyCollaborator
		}
		s.logger.Error("add collaborator failed", zap.Error(err))
		return nil, err
	}

	collab.User = user
	return toCollaboratorResponse(collab), nil
}

func (s *inviteService) ListCollaborators(ctx context.Context, planningID string) ([]dto.CollaboratorResponse, error) {
	collabs, err := s.repo.Collaborator.ListByPlanning(ctx, planningID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.CollaboratorResponse, 0, len(collabs))
	for i := range collabs {
		result = append(result, *toCollaboratorResponse(&collabs[i]))
	}
	return result, nil
}

func (s *inviteService) RemoveCollaborator(ctx context.Context, planningID, userID string) error {
	return s.repo.Collaborator.Delete(ctx, planningID, userID)
}

// ────────────────────── invites ──────────────────────

func (s *inviteService) CreateInvite(ctx context.Context, req *dto.CreateInviteRequest, callerID string) (*dto.InviteResponse, error) {
	if _, err := s.repo.Planning.GetByID(ctx, req.PlanningID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanningNotFound
		}
		return nil, err
	}

	user, err := s.repo.User.GetByID(ctx, req.InvitedUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	invite := &model.PlanningInvite{
		PlanningID:    req.PlanningID,
		InvitedUserID: req.InvitedUserID,
		InviteDate:    DateOnly(s.now()),
		Status:        model.InviteStatusPending,
		IsAutomatic:   false,
		Message:       req.Message,
	}
	invite.CreatedBy = &callerID
	invite.UpdatedBy = &callerID

	if err := s.repo.Invite.Create(ctx, invite); err != nil {
		s.logger.Error("create invite failed", zap.Error(err))
		return nil, err
	}

	if err := s.mailer.Send(user.Email, "Convite de planejamento",
		"Voce foi convidado para colaborar em um planejamento semanal."); err != nil {
		s.logger.Warn("invite notification failed",
			zap.String("invite_id", invite.InviteID), zap.Error(err))
	} else if err := s.repo.Invite.MarkNotificationSent(ctx, invite.InviteID); err != nil {
		s.logger.Warn("mark notification sent failed",
			zap.String("invite_id", invite.InviteID), zap.Error(err))
	} else {
		invite.NotificationSent = true
	}

	invite.InvitedUser = user
	return toInviteResponse(invite), nil
}

func (s *inviteService) ListInvites(ctx context.Context, planningID string) ([]dto.InviteResponse, error) {
	invites, err := s.repo.Invite.ListByPlanning(ctx, planningID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.InviteResponse, 0, len(invites))
	for i := range invites {
		result = append(result, *toInviteResponse(&invites[i]))
	}
	return result, nil
}

func (s *inviteService) Respond(ctx context.Context, inviteID string, req *dto.RespondInviteRequest, callerID string) (*dto.InviteResponse, error) {
	invite, err := s.repo.Invite.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}

	if invite.InvitedUserID != callerID {
		return nil, ErrNotInvitee
	}
	if invite.IsTerminal() {
		return nil, ErrInviteAlreadySettled
	}

	now := s.now()
	if req.Accept {
		invite.Status = model.InviteStatusAccepted
	} else {
		invite.Status = model.InviteStatusDeclined
	}
	invite.RespondedAt = &now
	invite.UpdatedBy = &callerID

	err = s.repo.Transaction(func(tx *repository.Repository) error {
		if err := tx.Invite.Update(ctx, invite); err != nil {
			return err
		}

		if !req.Accept {
			return nil
		}

		// Acceptance grants execute-level collaboration, once.
		_, err := tx.Collaborator.GetByPlanningAndUser(ctx, invite.PlanningID, invite.InvitedUserID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		collab := &model.PlanningCollaborator{
			PlanningID: invite.PlanningID,
			UserID:     invite.InvitedUserID,
			CanView:    true,
			CanExecute: true,
		}
		collab.CreatedBy = &callerID
		collab.UpdatedBy = &callerID
		return tx.Collaborator.Create(ctx, collab)
	})
	if err != nil {
		s.logger.Error("respond invite failed", zap.String("invite_id", inviteID), zap.Error(err))
		return nil, err
	}

	return toInviteResponse(invite), nil
}

// ────────────────────── mapping ──────────────────────

func toCollaboratorResponse(c *model.PlanningCollaborator) *dto.CollaboratorResponse {
	resp := &dto.CollaboratorResponse{
		ID:         c.CollaboratorID,
		PlanningID: c.PlanningID,
		CanView:    c.CanView,
		CanEdit:    c.CanEdit,
		CanExecute: c.CanExecute,
	}
	if c.User != nil {
		resp.User = &dto.UserBrief{ID: c.User.UserID, Name: c.User.Name, Email: c.User.Email}
	}
	return resp
}

func toInviteResponse(i *model.PlanningInvite) *dto.InviteResponse {
	resp := &dto.InviteResponse{
		ID:               i.InviteID,
		PlanningID:       i.PlanningID,
		InviteDate:       i.InviteDate.Format("2006-01-02"),
		Status:           i.Status,
		IsAutomatic:      i.IsAutomatic,
		NotificationSent: i.NotificationSent,
		Message:          i.Message,
	}
	if i.RespondedAt != nil {
		v := i.RespondedAt.Format(time.RFC3339)
		resp.RespondedAt = &v
	}
	if i.InvitedUser != nil {
		resp.InvitedUser = &dto.UserBrief{ID: i.InvitedUser.UserID, Name: i.InvitedUser.Name, Email: i.InvitedUser.Email}
	}
	return resp
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
