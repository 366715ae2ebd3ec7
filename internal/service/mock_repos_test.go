package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock ContactRepository ──

type mockContactRepo struct {
	contacts map[string]*model.Contact
}

func newMockContactRepo() *mockContactRepo {
	return &mockContactRepo{contacts: make(map[string]*model.Contact)}
}

func (m *mockContactRepo) Create(_ context.Context, contact *model.Contact) error {
	if contact.ContactID == "" {
		contact.ContactID = "contact-" + contact.Name
	}
	m.contacts[contact.ContactID] = contact
	return nil
}

func (m *mockContactRepo) GetByID(_ context.Context, id string) (*model.Contact, error) {
	if c, ok := m.contacts[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockContactRepo) List(_ context.Context, _ string, _, _ int) ([]model.Contact, int64, error) {
	var result []model.Contact
	for _, c := range m.contacts {
		result = append(result, *c)
	}
	return result, int64(len(result)), nil
}

func (m *mockContactRepo) Update(_ context.Context, contact *model.Contact) error {
	m.contacts[contact.ContactID] = contact
	return nil
}

func (m *mockContactRepo) UpdateCoordinates(_ context.Context, id string, lat, lon float64) error {
	c, ok := m.contacts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Latitude = &lat
	c.Longitude = &lon
	return nil
}

func (m *mockContactRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.contacts, id)
	return nil
}

// ── Mock WeeklyPlanningRepository ──

type mockPlanningRepo struct {
	plannings map[string]*model.WeeklyPlanning
	deleted   map[string]bool
	seq       int
}

func newMockPlanningRepo() *mockPlanningRepo {
	return &mockPlanningRepo{
		plannings: make(map[string]*model.WeeklyPlanning),
		deleted:   make(map[string]bool),
	}
}

func (m *mockPlanningRepo) Create(_ context.Context, planning *model.WeeklyPlanning) error {
	// uq_planning_week: one non-cancelled planning per responsible per week.
	for id, p := range m.plannings {
		if m.deleted[id] || p.Status == model.PlanningStatusCancelled {
			continue
		}
		if p.ResponsibleID == planning.ResponsibleID &&
			p.WeekStart.Equal(planning.WeekStart) && p.WeekEnd.Equal(planning.WeekEnd) {
			return gorm.ErrDuplicatedKey
		}
	}
	if planning.PlanningID == "" {
		m.seq++
		planning.PlanningID = fmt.Sprintf("planning-%d", m.seq)
	}
	if planning.Version == 0 {
		planning.Version = 1
	}
	m.plannings[planning.PlanningID] = planning
	return nil
}

func (m *mockPlanningRepo) GetByID(_ context.Context, id string) (*model.WeeklyPlanning, error) {
	if p, ok := m.plannings[id]; ok && !m.deleted[id] {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPlanningRepo) FindByWeek(_ context.Context, responsibleID string, weekStart, weekEnd time.Time) (*model.WeeklyPlanning, error) {
	for id, p := range m.plannings {
		if m.deleted[id] || p.Status == model.PlanningStatusCancelled {
			continue
		}
		if p.ResponsibleID == responsibleID && p.WeekStart.Equal(weekStart) && p.WeekEnd.Equal(weekEnd) {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPlanningRepo) FindCoveringDate(_ context.Context, responsibleID string, date time.Time) (*model.WeeklyPlanning, error) {
	d := DateOnly(date)
	for id, p := range m.plannings {
		if m.deleted[id] || p.Status == model.PlanningStatusCancelled {
			continue
		}
		if p.ResponsibleID == responsibleID && !d.Before(p.WeekStart) && !d.After(p.WeekEnd) {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPlanningRepo) ListByResponsible(_ context.Context, responsibleID string, _, _ int) ([]model.WeeklyPlanning, int64, error) {
	var result []model.WeeklyPlanning
	for id, p := range m.plannings {
		if m.deleted[id] {
			continue
		}
		if p.ResponsibleID == responsibleID {
			result = append(result, *p)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockPlanningRepo) Update(_ context.Context, planning *model.WeeklyPlanning) error {
	stored, ok := m.plannings[planning.PlanningID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored != planning && stored.Version != planning.Version {
		return gorm.ErrRecordNotFound
	}
	planning.Version++
	m.plannings[planning.PlanningID] = planning
	return nil
}

func (m *mockPlanningRepo) Delete(_ context.Context, id string, _ string) error {
	m.deleted[id] = true
	return nil
}

// ── Mock PlanningItemRepository ──

type mockItemRepo struct {
	items map[string]*model.PlanningItem
	seq   int
}

func newMockItemRepo() *mockItemRepo {
	return &mockItemRepo{items: make(map[string]*model.PlanningItem)}
}

func (m *mockItemRepo) Create(_ context.Context, item *model.PlanningItem) error {
	// uq_item_slot: one non-cancelled item per (responsible, date, time).
	for _, it := range m.items {
		if it.Status == model.ItemStatusCancelled {
			continue
		}
		if it.ResponsibleID == item.ResponsibleID &&
			SameDate(it.PlannedDate, item.PlannedDate) && it.PlannedTime == item.PlannedTime {
			return gorm.ErrDuplicatedKey
		}
	}
	if item.ItemID == "" {
		m.seq++
		item.ItemID = fmt.Sprintf("item-%d", m.seq)
	}
	if item.Version == 0 {
		item.Version = 1
	}
	m.items[item.ItemID] = item
	return nil
}

func (m *mockItemRepo) GetByID(_ context.Context, id string) (*model.PlanningItem, error) {
	if it, ok := m.items[id]; ok {
		return it, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockItemRepo) ListByPlanning(_ context.Context, planningID string) ([]model.PlanningItem, error) {
	var result []model.PlanningItem
	for _, it := range m.items {
		if it.PlanningID == planningID {
			result = append(result, *it)
		}
	}
	return result, nil
}

func (m *mockItemRepo) ListByResponsibleAndDate(_ context.Context, responsibleID string, date time.Time) ([]model.PlanningItem, error) {
	var result []model.PlanningItem
	for _, it := range m.items {
		if it.Status == model.ItemStatusCancelled {
			continue
		}
		if it.ResponsibleID == responsibleID && SameDate(it.PlannedDate, date) {
			result = append(result, *it)
		}
	}
	return result, nil
}

func (m *mockItemRepo) FindSlotConflict(_ context.Context, responsibleID string, date time.Time, timeOfDay string) (*model.PlanningItem, error) {
	for _, it := range m.items {
		if it.Status == model.ItemStatusCancelled {
			continue
		}
		if it.ResponsibleID == responsibleID && SameDate(it.PlannedDate, date) && it.PlannedTime == timeOfDay {
			return it, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockItemRepo) ListScheduledForDate(_ context.Context, date time.Time) ([]model.PlanningItem, error) {
	var result []model.PlanningItem
	for _, it := range m.items {
		if it.Status == model.ItemStatusCancelled {
			continue
		}
		if SameDate(it.PlannedDate, date) {
			result = append(result, *it)
		}
	}
	return result, nil
}

func (m *mockItemRepo) Update(_ context.Context, item *model.PlanningItem) error {
	if _, ok := m.items[item.ItemID]; !ok {
		return gorm.ErrRecordNotFound
	}
	item.Version++
	m.items[item.ItemID] = item
	return nil
}

func (m *mockItemRepo) BatchCompleteActive(_ context.Context, planningID string, completedAt time.Time, updatedBy string) error {
	for _, it := range m.items {
		if it.PlanningID != planningID {
			continue
		}
		if it.IsActive() {
			it.Status = model.ItemStatusCompleted
			at := completedAt
			it.CompletedAt = &at
			it.UpdatedBy = &updatedBy
			it.Version++
		}
	}
	return nil
}

// ── Mock CollaboratorRepository ──

type mockCollabRepo struct {
	collabs map[string]*model.PlanningCollaborator
	seq     int
}

func newMockCollabRepo() *mockCollabRepo {
	return &mockCollabRepo{collabs: make(map[string]*model.PlanningCollaborator)}
}

func (m *mockCollabRepo) Create(_ context.Context, collab *model.PlanningCollaborator) error {
	for _, c := range m.collabs {
		if c.PlanningID == collab.PlanningID && c.UserID == collab.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if collab.CollaboratorID == "" {
		m.seq++
		collab.CollaboratorID = fmt.Sprintf("collab-%d", m.seq)
	}
	m.collabs[collab.CollaboratorID] = collab
	return nil
}

func (m *mockCollabRepo) GetByPlanningAndUser(_ context.Context, planningID, userID string) (*model.PlanningCollaborator, error) {
	for _, c := range m.collabs {
		if c.PlanningID == planningID && c.UserID == userID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCollabRepo) ListByPlanning(_ context.Context, planningID string) ([]model.PlanningCollaborator, error) {
	var result []model.PlanningCollaborator
	for _, c := range m.collabs {
		if c.PlanningID == planningID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCollabRepo) Delete(_ context.Context, planningID, userID string) error {
	for id, c := range m.collabs {
		if c.PlanningID == planningID && c.UserID == userID {
			delete(m.collabs, id)
		}
	}
	return nil
}

// ── Mock InviteRepository ──

type mockInviteRepo struct {
	invites map[string]*model.PlanningInvite
	seq     int
}

func newMockInviteRepo() *mockInviteRepo {
	return &mockInviteRepo{invites: make(map[string]*model.PlanningInvite)}
}

func (m *mockInviteRepo) Create(_ context.Context, invite *model.PlanningInvite) error {
	// uq_invite_auto_day: one non-cancelled automatic invite per
	// (planning, user, date).
	if invite.IsAutomatic {
		for _, i := range m.invites {
			if !i.IsAutomatic || i.Status == model.InviteStatusCancelled {
				continue
			}
			if i.PlanningID == invite.PlanningID && i.InvitedUserID == invite.InvitedUserID &&
				SameDate(i.InviteDate, invite.InviteDate) {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if invite.InviteID == "" {
		m.seq++
		invite.InviteID = fmt.Sprintf("invite-%d", m.seq)
	}
	m.invites[invite.InviteID] = invite
	return nil
}

func (m *mockInviteRepo) GetByID(_ context.Context, id string) (*model.PlanningInvite, error) {
	if i, ok := m.invites[id]; ok {
		return i, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInviteRepo) ListByPlanning(_ context.Context, planningID string) ([]model.PlanningInvite, error) {
	var result []model.PlanningInvite
	for _, i := range m.invites {
		if i.PlanningID == planningID {
			result = append(result, *i)
		}
	}
	return result, nil
}

func (m *mockInviteRepo) FindAutomaticForDay(_ context.Context, planningID, userID string, date time.Time) (*model.PlanningInvite, error) {
	for _, i := range m.invites {
		if !i.IsAutomatic || i.Status == model.InviteStatusCancelled {
			continue
		}
		if i.PlanningID == planningID && i.InvitedUserID == userID && SameDate(i.InviteDate, date) {
			return i, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInviteRepo) Update(_ context.Context, invite *model.PlanningInvite) error {
	m.invites[invite.InviteID] = invite
	return nil
}

func (m *mockInviteRepo) MarkNotificationSent(_ context.Context, id string) error {
	i, ok := m.invites[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	i.NotificationSent = true
	return nil
}

// ── aggregate helper ──

type testRepos struct {
	user     *mockUserRepo
	contact  *mockContactRepo
	planning *mockPlanningRepo
	item     *mockItemRepo
	collab   *mockCollabRepo
	invite   *mockInviteRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		user:     newMockUserRepo(),
		contact:  newMockContactRepo(),
		planning: newMockPlanningRepo(),
		item:     newMockItemRepo(),
		collab:   newMockCollabRepo(),
		invite:   newMockInviteRepo(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		User:         r.user,
		Contact:      r.contact,
		Planning:     r.planning,
		PlanningItem: r.item,
		Collaborator: r.collab,
		Invite:       r.invite,
	}
}

// ── stub mailer / geocoder ──

type stubMailer struct {
	sent []string
	fail bool
}

func (m *stubMailer) Send(to, _, _ string) error {
	if m.fail {
		return fmt.Errorf("smtp unreachable")
	}
	m.sent = append(m.sent, to)
	return nil
}

type stubGeocoder struct {
	coords Coordinates
	fail   bool
}

func (g *stubGeocoder) GeocodePostalCode(_ context.Context, _ string) (Coordinates, error) {
	if g.fail {
		return Coordinates{}, ErrGeocodeNotFound
	}
	return g.coords, nil
}

func (g *stubGeocoder) GeocodeAddress(_ context.Context, _, _, _ string) (Coordinates, error) {
	if g.fail {
		return Coordinates{}, ErrGeocodeNotFound
	}
	return g.coords, nil
}
