package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nascimento1980/SmartCHAPP-sub000/config"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/repository"
)

// ErrDispatchInProgress reports an invite run that overlapped a still
// running one. The overlapping run is skipped, never queued.
var ErrDispatchInProgress = errors.New("auto-invite dispatch already running")

// DispatchStats summarizes one auto-invite run.
type DispatchStats struct {
	ItemsScanned int
	Created      int
	Skipped      int
	Failed       int
}

// AutoInviteScheduler creates same-day automatic invites for every visit
// scheduled today and notifies the invited users. Runs are idempotent: the
// (planning, user, date) key is checked before inserting, and the
// uq_invite_auto_day partial index backstops the check under concurrency.
type AutoInviteScheduler struct {
	repo    *repository.Repository
	mailer  Mailer
	cfg     *config.SchedulerConfig
	baseURL string
	logger  *zap.Logger
	cron    *cron.Cron
	running atomic.Bool
	now     func() time.Time
}

// NewAutoInviteScheduler creates the dispatcher. Start must be called to
// activate the cron entries.
func NewAutoInviteScheduler(repo *repository.Repository, mailer Mailer, cfg *config.SchedulerConfig, baseURL string, logger *zap.Logger) *AutoInviteScheduler {
	return &AutoInviteScheduler{
		repo:    repo,
		mailer:  mailer,
		cfg:     cfg,
		baseURL: baseURL,
		logger:  logger,
		now:     time.Now,
	}
}

// Start registers the morning run and the reinforcement runs and starts the
// cron loop. No-op when the dispatcher is disabled by configuration.
func (s *AutoInviteScheduler) Start() error {
	if !s.cfg.AutoInviteEnabled {
		s.logger.Info("auto-invite dispatcher disabled")
		return nil
	}

	s.cron = cron.New()
	for _, spec := range []string{s.cfg.MorningCron, s.cfg.ReinforceCron} {
		if spec == "" {
			continue
		}
		if _, err := s.cron.AddFunc(spec, s.runScheduled); err != nil {
			return fmt.Errorf("register cron %q: %w", spec, err)
		}
	}

	s.cron.Start()
	s.logger.Info("auto-invite dispatcher started",
		zap.String("morning_cron", s.cfg.MorningCron),
		zap.String("reinforce_cron", s.cfg.ReinforceCron))
	return nil
}

// Stop halts the cron loop and waits for a running entry to finish.
func (s *AutoInviteScheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("auto-invite dispatcher stopped")
}

func (s *AutoInviteScheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stats, err := s.RunOnce(ctx)
	if err != nil {
		if errors.Is(err, ErrDispatchInProgress) {
			s.logger.Warn("auto-invite run skipped, previous run still active")
			return
		}
		s.logger.Error("auto-invite run failed", zap.Error(err))
		return
	}

	s.logger.Info("auto-invite run finished",
		zap.Int("items_scanned", stats.ItemsScanned),
		zap.Int("created", stats.Created),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed))
}

// RunOnce executes a single dispatch pass. Only one pass runs at a time;
// a second caller gets ErrDispatchInProgress immediately. Failures on one
// item never abort the batch.
func (s *AutoInviteScheduler) RunOnce(ctx context.Context) (DispatchStats, error) {
	if !s.running.CompareAndSwap(false, true) {
		return DispatchStats{}, ErrDispatchInProgress
	}
	defer s.running.Store(false)

	today := DateOnly(s.now())

	items, err := s.repo.PlanningItem.ListScheduledForDate(ctx, today)
	if err != nil {
		return DispatchStats{}, fmt.Errorf("list today's items: %w", err)
	}

	stats := DispatchStats{ItemsScanned: len(items)}
	users := make(map[string]*model.User)
	collabs := make(map[string][]model.PlanningCollaborator)

	for i := range items {
		item := &items[i]

		members, err := s.planningCollaborators(ctx, item.PlanningID, collabs)
		if err != nil {
			stats.Failed++
			s.logger.Error("auto-invite dispatch failed for item",
				zap.String("item_id", item.ItemID),
				zap.String("planning_id", item.PlanningID),
				zap.Error(err))
			continue
		}

		for j := range members {
			// The responsible owns the planning and needs no invite.
			if members[j].UserID == item.ResponsibleID {
				continue
			}

			created, err := s.dispatchInvite(ctx, item, members[j].UserID, today, users)
			if err != nil {
				stats.Failed++
				s.logger.Error("auto-invite dispatch failed for collaborator",
					zap.String("item_id", item.ItemID),
					zap.String("user_id", members[j].UserID),
					zap.Error(err))
				continue
			}
			if created {
				stats.Created++
			} else {
				stats.Skipped++
			}
		}
	}

	return stats, nil
}

func (s *AutoInviteScheduler) planningCollaborators(ctx context.Context, planningID string, cache map[string][]model.PlanningCollaborator) ([]model.PlanningCollaborator, error) {
	if members, ok := cache[planningID]; ok {
		return members, nil
	}
	members, err := s.repo.Collaborator.ListByPlanning(ctx, planningID)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	cache[planningID] = members
	return members, nil
}

// dispatchInvite creates the automatic invite for one collaborator of one
// scheduled visit, reporting whether a new invite was created.
func (s *AutoInviteScheduler) dispatchInvite(ctx context.Context, item *model.PlanningItem, userID string, today time.Time, users map[string]*model.User) (bool, error) {
	user, err := s.lookupUser(ctx, userID, users)
	if err != nil {
		return false, err
	}
	if !user.IsActive {
		return false, nil
	}

	// Idempotency: one automatic invite per (planning, user, day). An invite
	// whose notification failed earlier gets the mail retried here.
	existing, err := s.repo.Invite.FindAutomaticForDay(ctx, item.PlanningID, user.UserID, today)
	if err == nil {
		if !existing.NotificationSent {
			if nerr := s.notify(user, item, today); nerr != nil {
				s.logger.Warn("invite notification retry failed",
					zap.String("invite_id", existing.InviteID), zap.Error(nerr))
			} else if merr := s.repo.Invite.MarkNotificationSent(ctx, existing.InviteID); merr != nil {
				s.logger.Warn("mark notification sent failed",
					zap.String("invite_id", existing.InviteID), zap.Error(merr))
			}
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("idempotency lookup: %w", err)
	}

	message := s.inviteMessage(item, today)
	invite := &model.PlanningInvite{
		PlanningID:    item.PlanningID,
		InvitedUserID: user.UserID,
		InviteDate:    today,
		// Automatic invites are reminders, not approval requests; they are
		// born accepted.
		Status:      model.InviteStatusAccepted,
		IsAutomatic: true,
		Message:     &message,
	}

	if err := s.repo.Invite.Create(ctx, invite); err != nil {
		// Lost race against a concurrent run; the unique index kept the day
		// idempotent.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("create invite: %w", err)
	}

	if err := s.notify(user, item, today); err != nil {
		// The invite exists; the notification retries on the reinforcement
		// runs because notification_sent stays false.
		s.logger.Warn("invite notification failed",
			zap.String("invite_id", invite.InviteID), zap.Error(err))
		return true, nil
	}

	if err := s.repo.Invite.MarkNotificationSent(ctx, invite.InviteID); err != nil {
		s.logger.Warn("mark notification sent failed",
			zap.String("invite_id", invite.InviteID), zap.Error(err))
	}
	return true, nil
}

func (s *AutoInviteScheduler) lookupUser(ctx context.Context, userID string, cache map[string]*model.User) (*model.User, error) {
	if u, ok := cache[userID]; ok {
		return u, nil
	}
	u, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", userID, err)
	}
	cache[userID] = u
	return u, nil
}

func (s *AutoInviteScheduler) inviteMessage(item *model.PlanningItem, today time.Time) string {
	contact := "cliente"
	if item.Contact != nil {
		contact = item.Contact.Name
	}
	return fmt.Sprintf("Visita %s agendada para hoje (%s) as %s com %s.",
		item.VisitKind, today.Format("02/01/2006"), item.PlannedTime, contact)
}

func (s *AutoInviteScheduler) notify(user *model.User, item *model.PlanningItem, today time.Time) error {
	subject := fmt.Sprintf("Lembrete de visita - %s", today.Format("02/01/2006"))
	body := s.inviteMessage(item, today)
	if s.baseURL != "" {
		body += fmt.Sprintf("\n\nAcesse o planejamento: %s/plannings/%s", s.baseURL, item.PlanningID)
	}
	return s.mailer.Send(user.Email, subject, body)
}
