package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/dto"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/service"
	"github.com/nascimento1980/SmartCHAPP-sub000/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.LoginResponse
	loginErr      error
	refreshResult *dto.RefreshTokenResponse
	refreshErr    error
	logoutErr     error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.LoginResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ string) error {
	return m.logoutErr
}

// ── Mock PlanningService ──

type mockPlanningService struct {
	getResult        *dto.PlanningResponse
	getErr           error
	listResult       []dto.PlanningResponse
	listTotal        int64
	listErr          error
	createItemResult *dto.ItemResponse
	createItemErr    error
	rescheduleResult *dto.ItemResponse
	rescheduleErr    error
	cancelItemErr    error
	checkInResult    *dto.ItemResponse
	checkInErr       error
	checkOutResult   *dto.ItemResponse
	checkOutErr      error
	transitionResult *dto.PlanningResponse
	transitionErr    error
	deleteErr        error
}

func (m *mockPlanningService) ResolveOrCreate(_ context.Context, _ string, _ time.Time, _ string) (*model.WeeklyPlanning, error) {
	return nil, nil
}
func (m *mockPlanningService) GetByID(_ context.Context, _ string) (*dto.PlanningResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockPlanningService) List(_ context.Context, _ string, _ *dto.PlanningListRequest) ([]dto.PlanningResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockPlanningService) CreateItem(_ context.Context, _ string, _ *dto.CreateItemRequest, _ string) (*dto.ItemResponse, error) {
	return m.createItemResult, m.createItemErr
}
func (m *mockPlanningService) RescheduleItem(_ context.Context, _ string, _ *dto.RescheduleItemRequest, _ string) (*dto.ItemResponse, error) {
	return m.rescheduleResult, m.rescheduleErr
}
func (m *mockPlanningService) CancelItem(_ context.Context, _ string, _ string, _ string) error {
	return m.cancelItemErr
}
func (m *mockPlanningService) CheckInItem(_ context.Context, _ string, _ string) (*dto.ItemResponse, error) {
	return m.checkInResult, m.checkInErr
}
func (m *mockPlanningService) CheckOutItem(_ context.Context, _ string, _ *dto.CheckOutItemRequest, _ string) (*dto.ItemResponse, error) {
	return m.checkOutResult, m.checkOutErr
}
func (m *mockPlanningService) StartExecution(_ context.Context, _ string, _ string) (*dto.PlanningResponse, error) {
	return m.transitionResult, m.transitionErr
}
func (m *mockPlanningService) Complete(_ context.Context, _ string, _ string) (*dto.PlanningResponse, error) {
	return m.transitionResult, m.transitionErr
}
func (m *mockPlanningService) Evaluate(_ context.Context, _ string, _ *dto.EvaluatePlanningRequest, _ string) (*dto.PlanningResponse, error) {
	return m.transitionResult, m.transitionErr
}
func (m *mockPlanningService) Reopen(_ context.Context, _ string, _ string) (*dto.PlanningResponse, error) {
	return m.transitionResult, m.transitionErr
}
func (m *mockPlanningService) Cancel(_ context.Context, _ string, _ string, _ string) (*dto.PlanningResponse, error) {
	return m.transitionResult, m.transitionErr
}
func (m *mockPlanningService) Delete(_ context.Context, _ string, _ *dto.DeletePlanningRequest, _ string) error {
	return m.deleteErr
}

// ── Mock SlotService ──

type mockSlotService struct {
	slotsResult []dto.SlotResponse
	slotsErr    error
}

func (m *mockSlotService) AvailableSlots(_ context.Context, _ string, _ time.Time) ([]dto.SlotResponse, error) {
	return m.slotsResult, m.slotsErr
}
func (m *mockSlotService) ValidateDate(_ context.Context, _ string, _ time.Time) error { return nil }
func (m *mockSlotService) CheckSlot(_ context.Context, _ string, _ time.Time, _, _ string) error {
	return nil
}

// ── Mock ExportService ──

type mockExportService struct {
	data     []byte
	filename string
	err      error
}

func (m *mockExportService) ExportXLSX(_ context.Context, _ string) ([]byte, string, error) {
	return m.data, m.filename, m.err
}
func (m *mockExportService) ExportICS(_ context.Context, _ string) ([]byte, string, error) {
	return m.data, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "gestor")
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.LoginResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
		},
	}
	h := NewAuthHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "tecnico@example.com",
		Password: "senha123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "tecnico@example.com",
		Password: "senha_errada",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_InactiveUser(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrUserInactive})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "inativo@example.com",
		Password: "senha123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrInvalidRefresh})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(dto.RefreshTokenRequest{
		RefreshToken: "stale-token",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11003 {
		t.Errorf("expected error code 11003, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// PlanningHandler Tests
// ═══════════════════════════════════════════════════════════

func TestPlanningHandler_Get_NotFound(t *testing.T) {
	h := NewPlanningHandler(&mockPlanningService{getErr: service.ErrPlanningNotFound}, &mockSlotService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/plannings/missing", nil)

	r := gin.New()
	r.GET("/plannings/:id", h.Get)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14002 {
		t.Errorf("expected error code 14002, got %d", resp.Code)
	}
}

func TestPlanningHandler_CreateItem_Unauthenticated(t *testing.T) {
	h := NewPlanningHandler(&mockPlanningService{}, &mockSlotService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/plannings/items", jsonBody(dto.CreateItemRequest{
		ContactID:   "11111111-1111-1111-1111-111111111111",
		PlannedDate: "2026-03-04",
		PlannedTime: "09:00",
		VisitKind:   "comercial",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/plannings/items", h.CreateItem)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestPlanningHandler_CreateItem_SlotConflict(t *testing.T) {
	conflict := &service.SlotConflictError{
		Existing: &model.PlanningItem{
			ItemID: "item-1", PlannedDate: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
			PlannedTime: "09:00", Status: model.ItemStatusPlanned,
		},
	}
	h := NewPlanningHandler(&mockPlanningService{createItemErr: conflict}, &mockSlotService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/plannings/items", jsonBody(dto.CreateItemRequest{
		ContactID:   "11111111-1111-1111-1111-111111111111",
		PlannedDate: "2026-03-04",
		PlannedTime: "09:00",
		VisitKind:   "comercial",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/plannings/items", func(c *gin.Context) {
		setAuth(c)
		h.CreateItem(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14001 {
		t.Errorf("expected error code 14001, got %d", resp.Code)
	}
	if resp.Details == nil {
		t.Error("expected the conflicting item in details")
	}
}

func TestPlanningHandler_CreateItem_Success(t *testing.T) {
	h := NewPlanningHandler(&mockPlanningService{
		createItemResult: &dto.ItemResponse{ID: "item-1", Status: model.ItemStatusPlanned},
	}, &mockSlotService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/plannings/items", jsonBody(dto.CreateItemRequest{
		ContactID:   "11111111-1111-1111-1111-111111111111",
		PlannedDate: "2026-03-04",
		PlannedTime: "09:00",
		VisitKind:   "comercial",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/plannings/items", func(c *gin.Context) {
		setAuth(c)
		h.CreateItem(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestPlanningHandler_Delete_ActiveItems(t *testing.T) {
	h := NewPlanningHandler(&mockPlanningService{
		deleteErr: &service.ActiveItemsError{
			Items: []model.PlanningItem{
				{ItemID: "item-1", PlannedDate: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
					PlannedTime: "09:00", Status: model.ItemStatusPlanned},
			},
		},
	}, &mockSlotService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/plannings/planning-1", jsonBody(dto.DeletePlanningRequest{
		Justification: "planejamento duplicado",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.DELETE("/plannings/:id", func(c *gin.Context) {
		setAuth(c)
		h.Delete(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14005 {
		t.Errorf("expected error code 14005, got %d", resp.Code)
	}
	if resp.Details == nil {
		t.Error("expected the active items in details")
	}
}

func TestPlanningHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"PlanningNotFound", service.ErrPlanningNotFound, 404, 14002},
		{"ItemNotFound", service.ErrItemNotFound, 404, 14003},
		{"ContactNotFound", service.ErrContactNotFound, 404, 13001},
		{"Retroactive", service.ErrRetroactiveDate, 400, 14004},
		{"OutsideWeek", service.ErrDateOutsideWeek, 400, 14006},
		{"EmptyPlanning", service.ErrEmptyPlanning, 400, 14007},
		{"InvalidTransition", service.ErrInvalidTransition, 409, 14008},
		{"EvaluationRequired", service.ErrEvaluationRequired, 400, 14009},
		{"JustificationShort", service.ErrJustificationTooShort, 400, 14010},
		{"ItemNotActive", service.ErrItemNotActive, 409, 14011},
		{"Continuity", service.ErrContinuityViolation, 409, 14012},
		{"Internal", errors.New("boom"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPlanningHandler(&mockPlanningService{getErr: tt.err}, &mockSlotService{})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/plannings/planning-1", nil)

			r := gin.New()
			r.GET("/plannings/:id", h.Get)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestPlanningHandler_AvailableSlots(t *testing.T) {
	h := NewPlanningHandler(&mockPlanningService{}, &mockSlotService{
		slotsResult: []dto.SlotResponse{{Time: "08:00", Score: 1.0}},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/plannings/slots?date=2026-03-04", nil)

	r := gin.New()
	r.GET("/plannings/slots", func(c *gin.Context) {
		setAuth(c)
		h.AvailableSlots(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestPlanningHandler_AvailableSlots_BadDate(t *testing.T) {
	h := NewPlanningHandler(&mockPlanningService{}, &mockSlotService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/plannings/slots?date=04-03-2026", nil)

	r := gin.New()
	r.GET("/plannings/slots", func(c *gin.Context) {
		setAuth(c)
		h.AvailableSlots(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_XLSX_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		data:     []byte("PK\x03\x04stub"),
		filename: "planejamento_2026-03-02.xlsx",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/plannings/planning-1/export/xlsx", nil)

	r := gin.New()
	r.GET("/plannings/:id/export/xlsx", h.ExportXLSX)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("unexpected content type: %s", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "planejamento_2026-03-02.xlsx") {
		t.Errorf("Content-Disposition missing the filename: %s", cd)
	}
}

func TestExportHandler_ICS_NotFound(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrPlanningNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/plannings/missing/export/ics", nil)

	r := gin.New()
	r.GET("/plannings/:id/export/ics", h.ExportICS)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
