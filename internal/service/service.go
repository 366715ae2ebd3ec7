package service

import (
	"go.uber.org/zap"

	"github.com/nascimento1980/SmartCHAPP-sub000/config"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/repository"
	"github.com/nascimento1980/SmartCHAPP-sub000/pkg/jwt"
	"github.com/nascimento1980/SmartCHAPP-sub000/pkg/redis"
)

// Service aggregates all service interfaces. The auto-invite scheduler is
// constructed separately because its lifecycle (Start/Stop) belongs to main.
type Service struct {
	Auth     AuthService
	User     UserService
	Contact  ContactService
	Geo      GeoService
	Slot     SlotService
	Planning PlanningService
	Invite   InviteService
	Export   ExportService
	Mailer   Mailer
}

// NewService wires the service aggregate. cache may be nil when Redis is
// unavailable; dependent services degrade instead of failing.
func NewService(cfg *config.Config, repo *repository.Repository, jwtMgr *jwt.Manager, cache *redis.Client, logger *zap.Logger) *Service {
	geocoder := NewGeocodingClient(&cfg.Geocoding, cache, logger)
	geoSvc := NewGeoService(&cfg.Planning, geocoder, logger)
	slotSvc := NewSlotService(&cfg.Planning, repo, logger)
	mailer := NewMailer(&cfg.Mail, logger)

	return &Service{
		Auth:     NewAuthService(repo, jwtMgr, cache, logger),
		User:     NewUserService(repo, logger),
		Contact:  NewContactService(repo, geoSvc, logger),
		Geo:      geoSvc,
		Slot:     slotSvc,
		Planning: NewPlanningService(repo, slotSvc, geoSvc, logger),
		Invite:   NewInviteService(repo, mailer, logger),
		Export:   NewExportService(repo, logger),
		Mailer:   mailer,
	}
}
