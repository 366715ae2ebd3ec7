package repository

import "gorm.io/gorm"

// Repository aggregates all repository interfaces.
type Repository struct {
	User         UserRepository
	Contact      ContactRepository
	Planning     WeeklyPlanningRepository
	PlanningItem PlanningItemRepository
	Collaborator CollaboratorRepository
	Invite       InviteRepository

	db *gorm.DB
}

// NewRepository wires the repository aggregate.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Contact:      NewContactRepo(db),
		Planning:     NewWeeklyPlanningRepo(db),
		PlanningItem: NewPlanningItemRepo(db),
		Collaborator: NewCollaboratorRepo(db),
		Invite:       NewInviteRepo(db),
		db:           db,
	}
}

// Transaction runs fn inside a database transaction, with a Repository
// bound to the transactional connection. Used by lifecycle transitions that
// must not leave partial writes behind.
func (r *Repository) Transaction(fn func(txRepo *Repository) error) error {
	if r.db == nil {
		// In-memory test repositories: no real transaction to open.
		return fn(r)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
