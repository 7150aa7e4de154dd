package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"resqlink-backend/internal/models"
)

type stubIncidentStore struct {
	incidents map[uuid.UUID]*models.Incident
}

func newStubIncidentStore() *stubIncidentStore {
	return &stubIncidentStore{incidents: make(map[uuid.UUID]*models.Incident)}
}

func (s *stubIncidentStore) Create(ctx context.Context, inc *models.Incident) error {
	inc.ID = uuid.New()
	inc.Status = models.IncidentOpen
	s.incidents[inc.ID] = inc
	return nil
}

func (s *stubIncidentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	inc, ok := s.incidents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return inc, nil
}

func (s *stubIncidentStore) GetOpenByUser(ctx context.Context, userID uuid.UUID) (*models.Incident, error) {
	for _, inc := range s.incidents {
		if inc.UserID == userID && inc.Status == models.IncidentOpen {
			return inc, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubIncidentStore) Resolve(ctx context.Context, id, userID uuid.UUID) error {
	if inc, ok := s.incidents[id]; ok && inc.UserID == userID {
		inc.Status = models.IncidentResolved
	}
	return nil
}

type stubQueue struct {
	pushed [][]byte
}

func (q *stubQueue) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	for _, v := range values {
		if b, ok := v.([]byte); ok {
			q.pushed = append(q.pushed, b)
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(q.pushed)))
	return cmd
}

func TestTriggerSOSCreatesIncidentAndEnqueues(t *testing.T) {
	store := newStubIncidentStore()
	queue := &stubQueue{}
	svc := NewAlertService(store, queue)
	userID := uuid.New()

	incident, created, err := svc.TriggerSOS(context.Background(), userID, models.TriggerSOSRequest{
		Description: "trapped after earthquake",
		Location:    "Sector 12",
	})
	if err != nil {
		t.Fatalf("TriggerSOS failed: %v", err)
	}
	if !created {
		t.Fatalf("expected a new incident")
	}
	if incident.Type != "sos" || incident.Status != models.IncidentOpen {
		t.Fatalf("unexpected incident: %+v", incident)
	}

	if len(queue.pushed) != 1 {
		t.Fatalf("expected one queued alert job, got %d", len(queue.pushed))
	}

	var job models.AlertJob
	if err := json.Unmarshal(queue.pushed[0], &job); err != nil {
		t.Fatalf("failed to decode queued job: %v", err)
	}
	if job.IncidentID != incident.ID || job.UserID != userID {
		t.Fatalf("queued job does not match incident: %+v", job)
	}
}

func TestTriggerSOSIsIdempotentWhileOpen(t *testing.T) {
	store := newStubIncidentStore()
	queue := &stubQueue{}
	svc := NewAlertService(store, queue)
	userID := uuid.New()

	first, _, err := svc.TriggerSOS(context.Background(), userID, models.TriggerSOSRequest{})
	if err != nil {
		t.Fatalf("first trigger failed: %v", err)
	}

	second, created, err := svc.TriggerSOS(context.Background(), userID, models.TriggerSOSRequest{})
	if err != nil {
		t.Fatalf("second trigger failed: %v", err)
	}
	if created {
		t.Fatalf("expected the open incident to be returned, not a new one")
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same incident, got %s and %s", first.ID, second.ID)
	}
	if len(queue.pushed) != 1 {
		t.Fatalf("expected a single queued job across double trigger, got %d", len(queue.pushed))
	}
}

func TestResolveRequiresOwnership(t *testing.T) {
	store := newStubIncidentStore()
	svc := NewAlertService(store, &stubQueue{})
	owner := uuid.New()

	incident, _, err := svc.TriggerSOS(context.Background(), owner, models.TriggerSOSRequest{})
	if err != nil {
		t.Fatalf("TriggerSOS failed: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), incident.ID, uuid.New()); err == nil {
		t.Fatalf("expected resolve by a different user to fail")
	}

	resolved, err := svc.Resolve(context.Background(), incident.ID, owner)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Status != models.IncidentResolved {
		t.Fatalf("expected resolved status, got %q", resolved.Status)
	}
}
