package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"resqlink-backend/internal/models"
	"resqlink-backend/internal/repository"
	"resqlink-backend/internal/services"
)

// Pool consumes SOS alert jobs and fans each one out to the reporter's
// emergency contacts: an in-app notification plus a realtime push for
// contacts who are registered users, and an email wherever an address is
// known.
type Pool struct {
	redis        *redis.Client
	email        *services.EmailService
	publisher    *services.EventPublisher
	userRepo     *repository.UserRepo
	contactRepo  *repository.ContactRepo
	incidentRepo *repository.IncidentRepo
	notifRepo    *repository.NotificationRepo
	workerCount  int
	stopChan     chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	email *services.EmailService,
	publisher *services.EventPublisher,
	userRepo *repository.UserRepo,
	contactRepo *repository.ContactRepo,
	incidentRepo *repository.IncidentRepo,
	notifRepo *repository.NotificationRepo,
	workerCount int,
) *Pool {
	return &Pool{
		redis:        redisClient,
		email:        email,
		publisher:    publisher,
		userRepo:     userRepo,
		contactRepo:  contactRepo,
		incidentRepo: incidentRepo,
		notifRepo:    notifRepo,
		workerCount:  workerCount,
		stopChan:     make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}

	log.Printf("Started %d alert worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Alert worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, services.AlertQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.AlertJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Alert worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log.Printf("Alert worker %d: processing incident %s", id, job.IncidentID)

		if err := p.processAlert(ctx, &job); err != nil {
			log.Printf("Alert worker %d: incident %s failed: %v", id, job.IncidentID, err)
		}

		// Release lock
		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) processAlert(ctx context.Context, job *models.AlertJob) error {
	incident, err := p.incidentRepo.GetByID(ctx, job.IncidentID)
	if err != nil {
		return fmt.Errorf("failed to load incident: %w", err)
	}

	sender, err := p.userRepo.GetProfile(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to load sender profile: %w", err)
	}

	contacts, err := p.contactRepo.ListByUser(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	if len(contacts) == 0 {
		log.Printf("Incident %s: user %s has no emergency contacts", incident.ID, job.UserID)
		return nil
	}

	senderName := sender.FullName
	if senderName == "" {
		senderName = sender.Email
	}

	for _, contact := range contacts {
		if contact.IsAppUser && contact.AppUserID != nil {
			notif := &models.Notification{
				UserID:   *contact.AppUserID,
				Type:     models.NotificationEmergency,
				Title:    "🚨 Emergency Alert",
				Message:  fmt.Sprintf("%s needs help! %s", senderName, incident.Description),
				FromUser: &job.UserID,
			}
			if incident.Location != "" {
				loc := incident.Location
				notif.Location = &loc
			}

			if err := p.notifRepo.Create(ctx, notif); err != nil {
				log.Printf("Incident %s: failed to store notification for %s: %v", incident.ID, *contact.AppUserID, err)
			} else {
				p.publisher.PublishMessage(ctx, *contact.AppUserID, models.WSMessage{
					Type:    models.WSNotification,
					Payload: notif,
				})
			}
		}

		if contact.Email != nil && *contact.Email != "" {
			if err := p.email.SendIncidentAlertEmail(*contact.Email, contact.Name, senderName, incident.Location); err != nil {
				log.Printf("Incident %s: failed to email %s: %v", incident.ID, *contact.Email, err)
			}
		}
	}

	return nil
}
