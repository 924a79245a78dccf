package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/segmentio/ksuid"

	"bonusthoughts-backend/internal/db"
	"bonusthoughts-backend/internal/models"
)

// SupportNotifier delivers an out-of-band notification for a new support
// request. Implementations are optional; a nil notifier disables delivery.
type SupportNotifier interface {
	Send(subject, body string) error
}

// supportService implements the SupportService interface.
type supportService struct {
	productRepo db.ProductRepository
	requestRepo db.RequestRepository
	notifier    SupportNotifier // may be nil
}

// NewSupportService creates a new SupportService instance.
func NewSupportService(pr db.ProductRepository, rr db.RequestRepository, notifier SupportNotifier) SupportService {
	return &supportService{
		productRepo: pr,
		requestRepo: rr,
		notifier:    notifier,
	}
}

// Submit attaches a free-text request to one of the user's active
// deployments. The referenced deployment must belong to the submitting
// user. Ticket numbers are assigned server-side and are unique by
// construction.
func (s *supportService) Submit(ctx context.Context, userID, userEmail string, req models.CreateSupportRequest) (*models.SupportRequest, error) {
	if s.productRepo == nil || s.requestRepo == nil {
		return nil, errors.New("supportService: component not initialized")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}

	products, err := s.productRepo.ListActiveByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deployments for user '%s': %w", userID, err)
	}
	var product *models.Product
	for _, p := range products {
		if p.ID == req.ProductID {
			product = p
			break
		}
	}
	if product == nil {
		return nil, fmt.Errorf("%w: '%s' is not one of the user's deployments", ErrDeploymentNotFound, req.ProductID)
	}

	request := &models.SupportRequest{
		UserID:      userID,
		UserEmail:   strings.ToLower(strings.TrimSpace(userEmail)),
		ProductID:   product.ID,
		ProductName: product.Name,
		Message:     req.Message,
		Status:      "pending",
		Ticket:      "T-" + ksuid.New().String(),
	}
	if _, err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create support request: %w", err)
	}

	if s.notifier != nil {
		subject := fmt.Sprintf("[%s] Support request for %s", request.Ticket, product.Name)
		body := fmt.Sprintf("From: %s\nDeployment: %s (%s)\n\n%s", request.UserEmail, product.Name, product.ID, req.Message)
		if err := s.notifier.Send(subject, body); err != nil {
			// Delivery is best-effort; the request is already persisted.
			log.Printf("support notification failed for ticket %s: %v", request.Ticket, err)
		}
	}

	return request, nil
}
