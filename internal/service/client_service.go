package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientRequest struct {
	Name          string `json:"name" binding:"required,max=255"`
	CompanyName   string `json:"company_name" binding:"max=255"`
	ContactPerson string `json:"contact_person" binding:"max=255"`
	Email         string `json:"email" binding:"omitempty,email"`
	Phone         string `json:"phone" binding:"max=50"`
	State         string `json:"state" binding:"max=10"`
	LeadSource    string `json:"lead_source" binding:"omitempty,oneof=WEB PHONE REFERRAL OTHER"`
	Notes         string `json:"notes"`
	IsActive      *bool  `json:"is_active"`
}

type ClientService interface {
	CreateClient(ctx context.Context, req ClientRequest, userID string) (*model.Client, error)
	UpdateClient(ctx context.Context, id string, req ClientRequest, userID string) (*model.Client, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
	ListClients(ctx context.Context, search string, page, limit int) ([]model.Client, int64, error)
}

type clientService struct {
	clientRepo repository.ClientRepository
	auditRepo  repository.AuditRepository
}

func NewClientService(clientRepo repository.ClientRepository, auditRepo repository.AuditRepository) ClientService {
	return &clientService{clientRepo: clientRepo, auditRepo: auditRepo}
}

func (s *clientService) CreateClient(ctx context.Context, req ClientRequest, userID string) (*model.Client, error) {
	if req.Email != "" {
		if _, err := s.clientRepo.FindByEmail(ctx, req.Email); err == nil {
			return nil, fmt.Errorf("a client with email %s already exists", req.Email)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check client email: %w", err)
		}
	}

	client := &model.Client{
		Name:          strings.TrimSpace(req.Name),
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		State:         strings.ToUpper(strings.TrimSpace(req.State)),
		LeadSource:    req.LeadSource,
		Notes:         req.Notes,
		IsActive:      true,
	}
	if client.LeadSource == "" {
		client.LeadSource = model.LeadSourceOther
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionCreateClient, client)
	return client, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id string, req ClientRequest, userID string) (*model.Client, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != "" && req.Email != client.Email {
		if existing, err := s.clientRepo.FindByEmail(ctx, req.Email); err == nil && existing.ID != client.ID {
			return nil, fmt.Errorf("a client with email %s already exists", req.Email)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check client email: %w", err)
		}
	}

	client.Name = strings.TrimSpace(req.Name)
	client.CompanyName = req.CompanyName
	client.ContactPerson = req.ContactPerson
	client.Email = req.Email
	client.Phone = req.Phone
	client.State = strings.ToUpper(strings.TrimSpace(req.State))
	client.Notes = req.Notes
	if req.LeadSource != "" {
		client.LeadSource = req.LeadSource
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionUpdateClient, client)
	return client, nil
}

func (s *clientService) GetClient(ctx context.Context, id string) (*model.Client, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid client id: %w", err)
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client not found")
		}
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}
	return client, nil
}

func (s *clientService) ListClients(ctx context.Context, search string, page, limit int) ([]model.Client, int64, error) {
	clients, total, err := s.clientRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch clients: %w", err)
	}
	return clients, total, nil
}

func (s *clientService) writeAudit(ctx context.Context, userID, action string, client *model.Client) {
	entry := model.AuditLog{
		Action:     action,
		EntityID:   client.ID.String(),
		EntityName: client.Name,
	}
	if parsed, err := uuid.Parse(userID); err == nil {
		entry.UserID = &parsed
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		log.Printf("failed to write audit log for %s: %v", action, err)
	}
}
