package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mathsoc-club/backend/internal/models"
	"github.com/mathsoc-club/backend/pkg/logger"
)

// ErrAlertNotFound indicates the referenced announcement no longer exists.
var ErrAlertNotFound = errors.New("alert service: alert not found")

// AlertView is the payload served to the homepage banner. Alerts are served
// fresh on every request and deliberately never pass through a content cache.
type AlertView struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Date      models.Timestamp `json:"date"`
	Location  string           `json:"location,omitempty"`
	Link      string           `json:"link,omitempty"`
	Prizepool string           `json:"prizepool,omitempty"`
	CreatedAt models.Timestamp `json:"createdAt"`
}

// AlertInput carries the fields of a new announcement. Only the title is
// mandatory.
type AlertInput struct {
	Title     string
	Date      *time.Time
	Location  string
	Link      string
	Prizepool string
}

// AlertService manages the short-lived upcoming-activity announcements.
type AlertService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewAlertService wires the service.
func NewAlertService(db *gorm.DB) (*AlertService, error) {
	if db == nil {
		return nil, errors.New("alert service: database handle is required")
	}
	return &AlertService{db: db, log: logger.WithModule("services.alerts")}, nil
}

// List returns all current announcements, newest first.
func (s *AlertService) List(ctx context.Context) ([]AlertView, error) {
	var alerts []models.UpcomingAlert
	if err := s.db.WithContext(ensuredContext(ctx)).
		Order("created_at DESC").
		Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("alert service: list alerts: %w", err)
	}

	views := make([]AlertView, 0, len(alerts))
	for i := range alerts {
		views = append(views, newAlertView(&alerts[i]))
	}
	return views, nil
}

// Create stores a new announcement.
func (s *AlertService) Create(ctx context.Context, input AlertInput) (*models.UpcomingAlert, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.New("alert service: title is required")
	}

	alert := models.UpcomingAlert{
		Title:     title,
		Date:      input.Date,
		Location:  strings.TrimSpace(input.Location),
		Link:      strings.TrimSpace(input.Link),
		Prizepool: strings.TrimSpace(input.Prizepool),
	}

	if err := s.db.WithContext(ensuredContext(ctx)).Create(&alert).Error; err != nil {
		return nil, fmt.Errorf("alert service: create alert: %w", err)
	}

	s.log.Info("alert created", zap.String("id", alert.ID), zap.String("title", alert.Title))
	return &alert, nil
}

// Delete removes an announcement.
func (s *AlertService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrAlertNotFound
	}

	result := s.db.WithContext(ensuredContext(ctx)).Delete(&models.UpcomingAlert{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("alert service: delete alert %q: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlertNotFound
	}

	s.log.Info("alert deleted", zap.String("id", id))
	return nil
}

func newAlertView(alert *models.UpcomingAlert) AlertView {
	view := AlertView{
		ID:        alert.ID,
		Title:     alert.Title,
		Location:  alert.Location,
		Link:      alert.Link,
		Prizepool: alert.Prizepool,
		CreatedAt: models.NewTimestamp(alert.CreatedAt),
	}
	if alert.Date != nil {
		view.Date = models.NewTimestamp(*alert.Date)
	}
	return view
}
