package report

import (
	"context"

	"github.com/nazh/votelink/internal/models"
	"github.com/nazh/votelink/internal/repository"
)

const defaultListLimit = 500

// ReportService serves the operator read paths: recent tokens, recent
// submissions and vote totals. Pure reads over the ledger.
type ReportService struct {
	tokenRepo      repository.TokenRepo
	submissionRepo repository.SubmissionRepo
}

func NewService(tokenRepo repository.TokenRepo, submissionRepo repository.SubmissionRepo) *ReportService {
	return &ReportService{
		tokenRepo:      tokenRepo,
		submissionRepo: submissionRepo,
	}
}

func (s *ReportService) ListTokens(ctx context.Context) ([]models.Token, error) {
	return s.tokenRepo.ListRecent(ctx, defaultListLimit)
}

func (s *ReportService) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	return s.submissionRepo.ListRecent(ctx, defaultListLimit)
}

func (s *ReportService) TotalsByPlatform(ctx context.Context) ([]models.PlatformTotal, error) {
	return s.submissionRepo.TotalsByPlatform(ctx)
}
