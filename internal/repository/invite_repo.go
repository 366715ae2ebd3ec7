package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
)

// CollaboratorRepository planning collaborator data access.
type CollaboratorRepository interface {
	Create(ctx context.Context, collab *model.PlanningCollaborator) error
	GetByPlanningAndUser(ctx context.Context, planningID, userID string) (*model.PlanningCollaborator, error)
	ListByPlanning(ctx context.Context, planningID string) ([]model.PlanningCollaborator, error)
	Delete(ctx context.Context, planningID, userID string) error
}

// InviteRepository planning invite data access.
type InviteRepository interface {
	Create(ctx context.Context, invite *model.PlanningInvite) error
	GetByID(ctx context.Context, id string) (*model.PlanningInvite, error)
	ListByPlanning(ctx context.Context, planningID string) ([]model.PlanningInvite, error)
	// FindAutomaticForDay looks up the dispatcher idempotency key
	// (planning, user, date) among non-cancelled automatic invites.
	FindAutomaticForDay(ctx context.Context, planningID, userID string, date time.Time) (*model.PlanningInvite, error)
	Update(ctx context.Context, invite *model.PlanningInvite) error
	MarkNotificationSent(ctx context.Context, id string) error
}

// ── Collaborator implementation ──

type collaboratorRepo struct {
	db *gorm.DB
}

// NewCollaboratorRepo creates a CollaboratorRepository.
func NewCollaboratorRepo(db *gorm.DB) CollaboratorRepository {
	return &collaboratorRepo{db: db}
}

func (r *collaboratorRepo) Create(ctx context.Context, collab *model.PlanningCollaborator) error {
	return r.db.WithContext(ctx).Create(collab).Error
}

func (r *collaboratorRepo) GetByPlanningAndUser(ctx context.Context, planningID, userID string) (*model.PlanningCollaborator, error) {
	var collab model.PlanningCollaborator
	err := r.db.WithContext(ctx).
		Where("planning_id = ? AND user_id = ?", planningID, userID).
		First(&collab).Error
	if err != nil {
		return nil, err
	}
	return &collab, nil
}

func (r *collaboratorRepo) ListByPlanning(ctx context.Context, planningID string) ([]model.PlanningCollaborator, error) {
	var collabs []model.PlanningCollaborator
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("planning_id = ?", planningID).
		Find(&collabs).Error
	return collabs, err
}

func (r *collaboratorRepo) Delete(ctx context.Context, planningID, userID string) error {
	return r.db.WithContext(ctx).
		Where("planning_id = ? AND user_id = ?", planningID, userID).
		Delete(&model.PlanningCollaborator{}).Error
}

// ── Invite implementation ──

type inviteRepo struct {
	db *gorm.DB
}

// NewInviteRepo creates an InviteRepository.
func NewInviteRepo(db *gorm.DB) InviteRepository {
	return &inviteRepo{db: db}
}

func (r *inviteRepo) Create(ctx context.Context, invite *model.PlanningInvite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *inviteRepo) GetByID(ctx context.Context, id string) (*model.PlanningInvite, error) {
	var invite model.PlanningInvite
	err := r.db.WithContext(ctx).
		Preload("InvitedUser").
		Where("invite_id = ?", id).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepo) ListByPlanning(ctx context.Context, planningID string) ([]model.PlanningInvite, error) {
	var invites []model.PlanningInvite
	err := r.db.WithContext(ctx).
		Preload("InvitedUser").
		Where("planning_id = ?", planningID).
		Order("created_at DESC").
		Find(&invites).Error
	return invites, err
}

func (r *inviteRepo) FindAutomaticForDay(ctx context.Context, planningID, userID string, date time.Time) (*model.PlanningInvite, error) {
	var invite model.PlanningInvite
	err := r.db.WithContext(ctx).
		Where("planning_id = ? AND invited_user_id = ? AND invite_date = ? AND is_automatic = ? AND status != ?",
			planningID, userID, date.Format("2006-01-02"), true, model.InviteStatusCancelled).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepo) Update(ctx context.Context, invite *model.PlanningInvite) error {
	return r.db.WithContext(ctx).Save(invite).Error
}

func (r *inviteRepo) MarkNotificationSent(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.PlanningInvite{}).
		Where("invite_id = ?", id).
		Update("notification_sent", true).Error
}
