package platform

import (
	"context"

	"github.com/nazh/votelink/internal/models"
	"github.com/nazh/votelink/internal/repository"
)

type PlatformService struct {
	// Repository to access long term data
	platformRepo repository.PlatformRepo
}

func NewService(platformRepo repository.PlatformRepo) *PlatformService {
	return &PlatformService{
		platformRepo: platformRepo,
	}
}

func (s *PlatformService) Create(ctx context.Context, name string, published bool) (models.Platform, error) {
	return s.platformRepo.Create(ctx, name, published)
}

func (s *PlatformService) SetPublished(ctx context.Context, id int64, published bool) (models.Platform, error) {
	return s.platformRepo.SetPublished(ctx, id, published)
}

// ListPublished is the public catalogue of vote targets
func (s *PlatformService) ListPublished(ctx context.Context) ([]models.Platform, error) {
	return s.platformRepo.List(ctx, true)
}

func (s *PlatformService) ListAll(ctx context.Context) ([]models.Platform, error) {
	return s.platformRepo.List(ctx, false)
}
