package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/repository"
)

// ExportService renders a weekly planning as a downloadable document.
type ExportService interface {
	// ExportXLSX renders the planning itinerary as a spreadsheet: one row
	// per visit plus an aggregate summary block.
	ExportXLSX(ctx context.Context, planningID string) ([]byte, string, error)
	// ExportICS renders the planning's non-cancelled visits as calendar
	// events.
	ExportICS(ctx context.Context, planningID string) ([]byte, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var visitDuration = 60 * time.Minute

func (s *exportService) loadPlanning(ctx context.Context, planningID string) (*model.WeeklyPlanning, error) {
	planning, err := s.repo.Planning.GetByID(ctx, planningID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanningNotFound
		}
		return nil, err
	}
	return planning, nil
}

func (s *exportService) ExportXLSX(ctx context.Context, planningID string) ([]byte, string, error) {
	planning, err := s.loadPlanning(ctx, planningID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Planejamento"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Data", "Hora", "Cliente", "Cidade", "Tipo", "Prioridade", "Status",
		"Distancia (km)", "Combustivel (L)", "Tempo (min)", "Custo (R$)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	f.SetCellStyle(sheet, "A1", "K1", headerStyle)

	row := 2
	for i := range planning.Items {
		item := &planning.Items[i]

		contactName, city := "", ""
		if item.Contact != nil {
			contactName = item.Contact.Name
			city = deref(item.Contact.City)
		}

		values := []interface{}{
			item.PlannedDate.Format("02/01/2006"),
			item.PlannedTime,
			contactName,
			city,
			item.VisitKind,
			item.Priority,
			item.Status,
			derefF(item.PlannedDistance),
			derefF(item.PlannedFuel),
			derefF(item.PlannedTravelTime),
			derefF(item.PlannedCost),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	// Summary block below the itinerary.
	row++
	summary := [][]interface{}{
		{"Visitas planejadas", planning.PlannedVisits},
		{"Visitas concluidas", planning.CompletedVisits},
		{"Visitas canceladas", planning.CancelledVisits},
		{"Distancia prevista (km)", planning.PlannedDistance},
		{"Combustivel previsto (L)", planning.PlannedFuel},
		{"Tempo previsto (min)", planning.PlannedTime},
		{"Custo previsto (R$)", planning.PlannedCost},
		{"Distancia realizada (km)", planning.ActualDistance},
		{"Custo realizado (R$)", planning.ActualCost},
	}
	for _, line := range summary {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(sheet, labelCell, line[0])
		f.SetCellValue(sheet, valueCell, line[1])
		row++
	}

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "C", "C", 30)
	f.SetColWidth(sheet, "D", "G", 14)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		s.logger.Error("write xlsx failed", zap.String("planning_id", planningID), zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("planejamento_%s.xlsx", planning.WeekStart.Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *exportService) ExportICS(ctx context.Context, planningID string) ([]byte, string, error) {
	planning, err := s.loadPlanning(ctx, planningID)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//SmartCHAPP//Planejamento Semanal//PT-BR")

	for i := range planning.Items {
		item := &planning.Items[i]
		if item.Status == model.ItemStatusCancelled {
			continue
		}

		start, err := visitStart(item)
		if err != nil {
			s.logger.Warn("skipping item with malformed time",
				zap.String("item_id", item.ItemID), zap.Error(err))
			continue
		}

		event := cal.AddEvent(item.ItemID)
		event.SetStartAt(start)
		event.SetEndAt(start.Add(visitDuration))
		event.SetDtStampTime(time.Now())

		summary := fmt.Sprintf("Visita %s", item.VisitKind)
		if item.Contact != nil {
			summary = fmt.Sprintf("Visita %s - %s", item.VisitKind, item.Contact.Name)
			location := contactLocation(item.Contact)
			if location != "" {
				event.SetLocation(location)
			}
		}
		event.SetSummary(summary)
		if item.Notes != nil && *item.Notes != "" {
			event.SetDescription(*item.Notes)
		}
	}

	filename := fmt.Sprintf("planejamento_%s.ics", planning.WeekStart.Format("2006-01-02"))
	return []byte(cal.Serialize()), filename, nil
}

// visitStart combines the item's date and "HH:MM" into a timestamp.
func visitStart(item *model.PlanningItem) (time.Time, error) {
	minutes, err := parseClock(item.PlannedTime)
	if err != nil {
		return time.Time{}, err
	}
	d := item.PlannedDate
	return time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, d.Location()), nil
}

func contactLocation(c *model.Contact) string {
	parts := make([]string, 0, 3)
	for _, p := range []*string{c.Address, c.City, c.State} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
