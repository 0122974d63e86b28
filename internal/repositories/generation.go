package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-roast/internal/models"
)

var ErrNotFound = errors.New("record not found")

type GenerationRepository interface {
	Create(ctx context.Context, gen *models.Generation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Generation, error)
	ListRecentByTask(ctx context.Context, task string, limit int) ([]models.Generation, error)
}

type generationRepository struct {
	db *gorm.DB
}

func NewGenerationRepository(db *gorm.DB) GenerationRepository {
	return &generationRepository{db: db}
}

func (r *generationRepository) Create(ctx context.Context, gen *models.Generation) error {
	if err := r.db.WithContext(ctx).Create(gen).Error; err != nil {
		return fmt.Errorf("failed to create generation: %w", err)
	}
	return nil
}

func (r *generationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Generation, error) {
	var gen models.Generation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&gen).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("generation %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find generation: %w", err)
	}
	return &gen, nil
}

func (r *generationRepository) ListRecentByTask(ctx context.Context, task string, limit int) ([]models.Generation, error) {
	var gens []models.Generation
	err := r.db.WithContext(ctx).
		Where("task = ?", task).
		Order("created_at DESC").
		Limit(limit).
		Find(&gens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	return gens, nil
}
