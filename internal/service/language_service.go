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

type LanguageRequest struct {
	Code     string `json:"code" binding:"required,max=20"`
	Name     string `json:"name" binding:"required,max=255"`
	IsActive *bool  `json:"is_active"`
}

type LanguageService interface {
	CreateLanguage(ctx context.Context, req LanguageRequest, userID string) (*model.Language, error)
	UpdateLanguage(ctx context.Context, id string, req LanguageRequest, userID string) (*model.Language, error)
	DeleteLanguage(ctx context.Context, id string, userID string) error
	GetLanguage(ctx context.Context, id string) (*model.Language, error)
	ListLanguages(ctx context.Context, activeOnly bool) ([]model.Language, error)
}

type languageService struct {
	langRepo  repository.LanguageRepository
	auditRepo repository.AuditRepository
}

func NewLanguageService(langRepo repository.LanguageRepository, auditRepo repository.AuditRepository) LanguageService {
	return &languageService{langRepo: langRepo, auditRepo: auditRepo}
}

func (s *languageService) CreateLanguage(ctx context.Context, req LanguageRequest, userID string) (*model.Language, error) {
	code := strings.TrimSpace(req.Code)

	if _, err := s.langRepo.FindByCode(ctx, code); err == nil {
		return nil, fmt.Errorf("language code %s already exists", code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check language code: %w", err)
	}

	lang := &model.Language{
		Code:     code,
		Name:     strings.TrimSpace(req.Name),
		IsActive: true,
	}
	if req.IsActive != nil {
		lang.IsActive = *req.IsActive
	}

	if err := s.langRepo.Create(ctx, lang); err != nil {
		return nil, fmt.Errorf("failed to create language: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionCreateLanguage, lang)
	return lang, nil
}

func (s *languageService) UpdateLanguage(ctx context.Context, id string, req LanguageRequest, userID string) (*model.Language, error) {
	lang, err := s.GetLanguage(ctx, id)
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	if code != lang.Code {
		if _, err := s.langRepo.FindByCode(ctx, code); err == nil {
			return nil, fmt.Errorf("language code %s already exists", code)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check language code: %w", err)
		}
	}

	lang.Code = code
	lang.Name = strings.TrimSpace(req.Name)
	if req.IsActive != nil {
		lang.IsActive = *req.IsActive
	}

	if err := s.langRepo.Update(ctx, lang); err != nil {
		return nil, fmt.Errorf("failed to update language: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionUpdateLanguage, lang)
	return lang, nil
}

func (s *languageService) DeleteLanguage(ctx context.Context, id string, userID string) error {
	lang, err := s.GetLanguage(ctx, id)
	if err != nil {
		return err
	}

	if err := s.langRepo.Delete(ctx, lang.ID); err != nil {
		return fmt.Errorf("failed to delete language: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionDeleteLanguage, lang)
	return nil
}

func (s *languageService) GetLanguage(ctx context.Context, id string) (*model.Language, error) {
	langID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid language id: %w", err)
	}

	lang, err := s.langRepo.FindByID(ctx, langID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("language not found")
		}
		return nil, fmt.Errorf("failed to fetch language: %w", err)
	}
	return lang, nil
}

func (s *languageService) ListLanguages(ctx context.Context, activeOnly bool) ([]model.Language, error) {
	langs, err := s.langRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch languages: %w", err)
	}
	return langs, nil
}

func (s *languageService) writeAudit(ctx context.Context, userID, action string, lang *model.Language) {
	entry := model.AuditLog{
		Action:     action,
		EntityID:   lang.ID.String(),
		EntityName: lang.Code + " " + lang.Name,
	}
	if parsed, err := uuid.Parse(userID); err == nil {
		entry.UserID = &parsed
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		log.Printf("failed to write audit log for %s: %v", action, err)
	}
}
