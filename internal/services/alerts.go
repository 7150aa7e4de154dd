package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"resqlink-backend/internal/models"
	"resqlink-backend/internal/repository"
)

const AlertQueue = "queue:sos-alerts"

type incidentStore interface {
	Create(ctx context.Context, inc *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	GetOpenByUser(ctx context.Context, userID uuid.UUID) (*models.Incident, error)
	Resolve(ctx context.Context, id, userID uuid.UUID) error
}

type jobQueue interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// AlertService records SOS activations and hands the contact fan-out to the
// worker pool over the alert queue.
type AlertService struct {
	incidents incidentStore
	queue     jobQueue
}

func NewAlertService(incidents incidentStore, queue jobQueue) *AlertService {
	return &AlertService{incidents: incidents, queue: queue}
}

// TriggerSOS opens an incident and enqueues the alert fan-out. A user has at
// most one open incident; triggering again while one is open returns it
// unchanged so a double press never double-alerts.
func (s *AlertService) TriggerSOS(ctx context.Context, userID uuid.UUID, req models.TriggerSOSRequest) (*models.Incident, bool, error) {
	existing, err := s.incidents.GetOpenByUser(ctx, userID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to check open incidents: %w", err)
	}

	incidentType := req.Type
	if incidentType == "" {
		incidentType = "sos"
	}

	incident := &models.Incident{
		UserID:      userID,
		Type:        incidentType,
		Description: req.Description,
		Location:    req.Location,
	}
	if err := s.incidents.Create(ctx, incident); err != nil {
		return nil, false, fmt.Errorf("failed to create incident: %w", err)
	}

	job := models.AlertJob{
		ID:         uuid.New(),
		IncidentID: incident.ID,
		UserID:     userID,
		CreatedAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal alert job: %w", err)
	}

	if err := s.queue.RPush(ctx, AlertQueue, payload).Err(); err != nil {
		return nil, false, fmt.Errorf("failed to enqueue alert job: %w", err)
	}

	return incident, true, nil
}

// Resolve closes the caller's incident. Only the reporter may resolve it.
func (s *AlertService) Resolve(ctx context.Context, incidentID, userID uuid.UUID) (*models.Incident, error) {
	incident, err := s.incidents.GetByID(ctx, incidentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Incident not found"}
		}
		return nil, fmt.Errorf("failed to load incident: %w", err)
	}
	if incident.UserID != userID {
		return nil, &ForbiddenError{Message: "You can only resolve your own incidents"}
	}

	if err := s.incidents.Resolve(ctx, incidentID, userID); err != nil {
		return nil, fmt.Errorf("failed to resolve incident: %w", err)
	}

	incident, err = s.incidents.GetByID(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload incident: %w", err)
	}
	return incident, nil
}

// Active returns the caller's open incident, if any.
func (s *AlertService) Active(ctx context.Context, userID uuid.UUID) (*models.Incident, error) {
	incident, err := s.incidents.GetOpenByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Incident not found"}
		}
		return nil, fmt.Errorf("failed to load open incident: %w", err)
	}
	return incident, nil
}

const (
	reminderLastSentKey  = "reminder:contacts:"
	reminderInterval     = 7 * 24 * time.Hour
	reminderPollInterval = 1 * time.Hour
)

// ReminderScheduler periodically nudges users who still have no emergency
// contacts on file.
type ReminderScheduler struct {
	userRepo *repository.UserRepo
	email    *EmailService
	redis    *redis.Client
	stopChan chan struct{}
}

func NewReminderScheduler(userRepo *repository.UserRepo, email *EmailService, redisClient *redis.Client) *ReminderScheduler {
	return &ReminderScheduler{
		userRepo: userRepo,
		email:    email,
		redis:    redisClient,
		stopChan: make(chan struct{}),
	}
}

func (s *ReminderScheduler) Start() {
	if s.userRepo == nil || s.email == nil {
		return
	}

	go s.loop()
	log.Printf("Reminder scheduler started")
}

func (s *ReminderScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *ReminderScheduler) loop() {
	// Run on startup as well as by interval.
	s.sendContactReminders(context.Background())

	ticker := time.NewTicker(reminderPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sendContactReminders(context.Background())
		}
	}
}

func (s *ReminderScheduler) sendContactReminders(ctx context.Context) {
	recipients, err := s.userRepo.ListUsersWithoutContacts(ctx)
	if err != nil {
		log.Printf("contact reminders: failed to list recipients: %v", err)
		return
	}

	for _, recipient := range recipients {
		key := reminderLastSentKey + recipient.ID.String()

		// SetNX doubles as the last-sent marker: once set, no repeat until
		// the key expires.
		sent, err := s.redis.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), reminderInterval).Result()
		if err != nil || !sent {
			continue
		}

		if err := s.email.SendPreparednessReminderEmail(recipient.Email, recipient.FullName); err != nil {
			log.Printf("contact reminders: failed to send to %s: %v", recipient.Email, err)
			s.redis.Del(ctx, key)
		}
	}
}
