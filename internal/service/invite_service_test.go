package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/dto"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
)

func setupInviteService(repos *testRepos, mailer *stubMailer) *inviteService {
	svc := NewInviteService(repos.toRepository(), mailer, zap.NewNop()).(*inviteService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// seedInviteFixture builds a planning owned by user-1 and two directory
// users to invite.
func seedInviteFixture(repos *testRepos) {
	repos.user.users["user-1"] = &model.User{UserID: "user-1", Name: "Responsavel", Email: "resp@example.com", IsActive: true}
	repos.user.users["user-2"] = &model.User{UserID: "user-2", Name: "Convidado", Email: "conv@example.com", IsActive: true}

	repos.planning.plannings["planning-1"] = &model.WeeklyPlanning{
		PlanningID: "planning-1", ResponsibleID: "user-1",
		WeekStart: fixedNow, WeekEnd: fixedNow.AddDate(0, 0, 4),
		Status: model.PlanningStatusDraft,
	}
}

func TestAddCollaborator_Defaults(t *testing.T) {
	repos := newTestRepos()
	seedInviteFixture(repos)
	svc := setupInviteService(repos, &stubMailer{})

	result, err := svc.AddCollaborator(context.Background(), "planning-1",
		&dto.AddCollaboratorRequest{UserID: "user-2"}, "user-1")
	if err != nil {
		t.Fatalf("add collaborator failed: %v", err)
	}

	if !result.CanView || result.CanEdit || result.CanExecute {
		t.Errorf("permissions = %+v, want view-only defaults", result)
	}
	if result.User == nil || result.User.ID != "user-2" {
		t.Errorf("collaborator user missing from response")
	}
}

func TestAddCollaborator_Duplicate(t *testing.T) {
	repos := newTestRepos()
	seedInviteFixture(repos)
	svc := setupInviteService(repos, &stubMailer{})
	ctx := context.Background()

	req := &dto.AddCollaboratorRequest{UserID: "user-2"}
	if _, err := svc.AddCollaborator(ctx, "planning-1", req, "user-1"); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if _, err := svc.AddCollaborator(ctx, "planning-1", req, "user-1"); !errors.Is(err, ErrAlreadyCollaborator) {
		t.Errorf("err = %v, want ErrAlreadyCollaborator", err)
	}
}

func TestAddCollaborator_UnknownPlanningOrUser(t *testing.T) {
	repos := newTestRepos()
	seedInviteFixture(repos)
	svc := setupInviteService(repos, &stubMailer{})
	ctx := context.Background()

	if _, err := svc.AddCollaborator(ctx, "missing",
		&dto.AddCollaboratorRequest{UserID: "user-2"}, "user-1"); !errors.Is(err, ErrPlanningNotFound) {
		t.Errorf("err = %v, want ErrPlanningNotFound", err)
	}
	if _, err := svc.AddCollaborator(ctx, "planning-1",
		&dto.AddCollaboratorRequest{UserID: "missing"}, "user-1"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestCreateInvite_PendingAndNotified(t *testing.T) {
	repos := newTestRepos()
	seedInviteFixture(repos)
	mailer := &stubMailer{}
	svc := setupInviteService(repos, mailer)

	result, err := svc.CreateInvite(context.Background(), &dto.CreateInviteRequest{
		PlanningID:    "planning-1",
		InvitedUserID: "user-2",
	}, "user-1")
	if err != nil {
		t.Fatalf("create invite failed: %v", err)
	}

	if result.Status != model.InviteStatusPending {
		t.Errorf("status = %s, manual invites start pendente", result.Status)
	}
	if result.IsAutomatic {
		t.Errorf("manual invite flagged as automatic")
	}
	if !result.NotificationSent {
		t.Errorf("notification not marked sent")
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "conv@example.com" {
		t.Errorf("mail recipients = %v, want the invitee", mailer.sent)
	}
}

func TestCreateInvite_MailFailureDoesNotBlock(t *testing.T) {
	repos := newTestRepos()
	seedInviteFixture(repos)
	svc := setupInviteService(repos, &stubMailer{fail: true})

	result, err := svc.CreateInvite(context.Background(), &dto.CreateInviteRequest{
		PlanningID:    "planning-1",
		InvitedUserID: "user-2",
	}, "user-1")
	if err != nil {
		t.Fatalf("mail failure must not block the invite: %v", err)
	}
	if result.NotificationSent {
		t.Errorf("notification_sent set despite mail failure")
	}
}

func TestRespond_AcceptGrantsCollaboration(t *testing.T) {
	repos := newTestRepos()
	seedInviteFixture(repos)
	svc := setupInviteService(repos, &stubMailer{})
	ctx := context.Background()

	invite, _ := svc.CreateInvite(ctx, &dto.CreateInviteRequest{
		PlanningID: "planning-1", InvitedUserID: "user-2",
	}, "user-1")

	result, err := svc.Respond(ctx, invite.ID, &dto.RespondInviteRequest{Accept: true}, "user-2")
	if err != nil {
		t.Fatalf("respond failed: %v", err)
	}
	if result.Status != model.InviteStatusAccepted || result.RespondedAt == nil {
		t.Errorf("result = %+v, want aceito with responded_at", result)
	}

	collab, err := repos.collab.GetByPlanningAndUser(ctx, "planning-1", "user-2")
	if err != nil {
		t.Fatalf("acceptance did not grant collaboration: %v", err)
	}
	if !collab.CanView || !collab.CanExecute {
		t.Errorf("granted permissions = %+v, want view+execute", collab)
	}
}

func TestRespond_DeclineGrantsNothing(t *testing.T) {
	repos := newTestRepos()
	seedInviteFixture(repos)
	svc := setupInviteService(repos, &stubMailer{})
	ctx := context.Background()

	invite, _ := svc.CreateInvite(ctx, &dto.CreateInviteRequest{
		PlanningID: "planning-1", InvitedUserID: "user-2",
	}, "user-1")

	result, err := svc.Respond(ctx, invite.ID, &dto.RespondInviteRequest{Accept: false}, "user-2")
	if err != nil {
		t.Fatalf("respond failed: %v", err)
	}
	if result.Status != model.InviteStatusDeclined {
		t.Errorf("status = %s, want recusado", result.Status)
	}
	if _, err := repos.collab.GetByPlanningAndUser(ctx, "planning-1", "user-2"); err == nil {
		t.Errorf("decline still granted collaboration")
	}
}

func TestRespond_OnlyInvitee(t *testing.T) {
	repos := newTestRepos()
	seedInviteFixture(repos)
	svc := setupInviteService(repos, &stubMailer{})
	ctx := context.Background()

	invite, _ := svc.CreateInvite(ctx, &dto.CreateInviteRequest{
		PlanningID: "planning-1", InvitedUserID: "user-2",
	}, "user-1")

	_, err := svc.Respond(ctx, invite.ID, &dto.RespondInviteRequest{Accept: true}, "user-1")
	if !errors.Is(err, ErrNotInvitee) {
		t.Errorf("err = %v, want ErrNotInvitee", err)
	}
}

func TestRespond_AlreadySettled(t *testing.T) {
	repos := newTestRepos()
	seedInviteFixture(repos)
	svc := setupInviteService(repos, &stubMailer{})
	ctx := context.Background()

	invite, _ := svc.CreateInvite(ctx, &dto.CreateInviteRequest{
		PlanningID: "planning-1", InvitedUserID: "user-2",
	}, "user-1")

	if _, err := svc.Respond(ctx, invite.ID, &dto.RespondInviteRequest{Accept: true}, "user-2"); err != nil {
		t.Fatalf("first respond failed: %v", err)
	}
	_, err := svc.Respond(ctx, invite.ID, &dto.RespondInviteRequest{Accept: false}, "user-2")
	if !errors.Is(err, ErrInviteAlreadySettled) {
		t.Errorf("err = %v, want ErrInviteAlreadySettled", err)
	}
}

func TestRemoveCollaborator(t *testing.T) {
	repos := newTestRepos()
	seedInviteFixture(repos)
	svc := setupInviteService(repos, &stubMailer{})
	ctx := context.Background()

	if _, err := svc.AddCollaborator(ctx, "planning-1",
		&dto.AddCollaboratorRequest{UserID: "user-2"}, "user-1"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.RemoveCollaborator(ctx, "planning-1", "user-2"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := repos.collab.GetByPlanningAndUser(ctx, "planning-1", "user-2"); err == nil {
		t.Errorf("collaborator still present after removal")
	}
}
