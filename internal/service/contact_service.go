package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/dto"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/repository"
)

// ContactService client/address book management.
type ContactService interface {
	Create(ctx context.Context, req *dto.CreateContactRequest, callerID string) (*dto.ContactResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ContactResponse, error)
	List(ctx context.Context, req *dto.ContactListRequest) ([]dto.ContactResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateContactRequest, callerID string) (*dto.ContactResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// Geocode resolves and persists the contact's coordinates on demand,
	// the manual backfill path after a degraded visit creation.
	Geocode(ctx context.Context, id string) (*dto.ContactResponse, error)
}

type contactService struct {
	repo   *repository.Repository
	geoSvc GeoService
	logger *zap.Logger
}

// NewContactService creates a ContactService.
func NewContactService(repo *repository.Repository, geoSvc GeoService, logger *zap.Logger) ContactService {
	return &contactService{repo: repo, geoSvc: geoSvc, logger: logger}
}

func (s *contactService) Create(ctx context.Context, req *dto.CreateContactRequest, callerID string) (*dto.ContactResponse, error) {
	contact := &model.Contact{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	}
	contact.CreatedBy = &callerID
	contact.UpdatedBy = &callerID

	if err := s.repo.Contact.Create(ctx, contact); err != nil {
		s.logger.Error("create contact failed", zap.Error(err))
		return nil, err
	}

	return toContactResponse(contact), nil
}

func (s *contactService) GetByID(ctx context.Context, id string) (*dto.ContactResponse, error) {
	contact, err := s.repo.Contact.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return toContactResponse(contact), nil
}

func (s *contactService) List(ctx context.Context, req *dto.ContactListRequest) ([]dto.ContactResponse, int64, error) {
	offset := (req.Page - 1) * req.PageSize
	contacts, total, err := s.repo.Contact.List(ctx, req.Search, offset, req.PageSize)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.ContactResponse, 0, len(contacts))
	for i := range contacts {
		result = append(result, *toContactResponse(&contacts[i]))
	}
	return result, total, nil
}

func (s *contactService) Update(ctx context.Context, id string, req *dto.UpdateContactRequest, callerID string) (*dto.ContactResponse, error) {
	contact, err := s.repo.Contact.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		contact.Name = *req.Name
	}
	if req.Email != nil {
		contact.Email = req.Email
	}
	if req.Phone != nil {
		contact.Phone = req.Phone
	}
	if req.Address != nil {
		contact.Address = req.Address
	}
	if req.City != nil {
		contact.City = req.City
	}
	if req.State != nil {
		contact.State = req.State
	}
	if req.PostalCode != nil {
		contact.PostalCode = req.PostalCode
	}
	if req.Latitude != nil {
		contact.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		contact.Longitude = req.Longitude
	}
	contact.UpdatedBy = &callerID

	if err := s.repo.Contact.Update(ctx, contact); err != nil {
		s.logger.Error("update contact failed", zap.String("contact_id", id), zap.Error(err))
		return nil, err
	}

	return toContactResponse(contact), nil
}

func (s *contactService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Contact.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContactNotFound
		}
		return err
	}
	return s.repo.Contact.Delete(ctx, id, callerID)
}

func (s *contactService) Geocode(ctx context.Context, id string) (*dto.ContactResponse, error) {
	contact, err := s.repo.Contact.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	coords, err := s.geoSvc.ResolveCoordinates(ctx, contact)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Contact.UpdateCoordinates(ctx, id, coords.Lat, coords.Lon); err != nil {
		return nil, err
	}
	contact.Latitude = &coords.Lat
	contact.Longitude = &coords.Lon

	s.logger.Info("contact geocoded", zap.String("contact_id", id))
	return toContactResponse(contact), nil
}

func toContactResponse(c *model.Contact) *dto.ContactResponse {
	return &dto.ContactResponse{
		ID:         c.ContactID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		State:      c.State,
		PostalCode: c.PostalCode,
		Latitude:   c.Latitude,
		Longitude:  c.Longitude,
	}
}
