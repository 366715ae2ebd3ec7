package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
)

// ContactRepository client/address book data access.
type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	GetByID(ctx context.Context, id string) (*model.Contact, error)
	List(ctx context.Context, search string, offset, limit int) ([]model.Contact, int64, error)
	Update(ctx context.Context, contact *model.Contact) error
	UpdateCoordinates(ctx context.Context, id string, lat, lon float64) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type contactRepo struct {
	db *gorm.DB
}

// NewContactRepo creates a ContactRepository.
func NewContactRepo(db *gorm.DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) Create(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *contactRepo) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.WithContext(ctx).
		Where("contact_id = ?", id).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepo) List(ctx context.Context, search string, offset, limit int) ([]model.Contact, int64, error) {
	var contacts []model.Contact
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Contact{})
	if search != "" {
		pattern := "%" + search + "%"
		db = db.Where("name ILIKE ? OR city ILIKE ?", pattern, pattern)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&contacts).Error
	return contacts, total, err
}

func (r *contactRepo) Update(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

// UpdateCoordinates persists a geocoded or manually entered position.
func (r *contactRepo) UpdateCoordinates(ctx context.Context, id string, lat, lon float64) error {
	return r.db.WithContext(ctx).
		Model(&model.Contact{}).
		Where("contact_id = ?", id).
		Updates(map[string]interface{}{
			"latitude":  lat,
			"longitude": lon,
		}).Error
}

func (r *contactRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Contact{}).
		Where("contact_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
