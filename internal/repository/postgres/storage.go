package postgres

import (
	"context"
	"fmt"

	"github.com/nazh/votelink/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) Tokens() repository.TokenRepo {
	return &TokenRepo{DB: s.db}
}

func (s *Storage) Submissions() repository.SubmissionRepo {
	return &SubmissionRepo{DB: s.db}
}

func (s *Storage) Platforms() repository.PlatformRepo {
	return &PlatformRepo{DB: s.db}
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			err = tx.Commit(ctx)
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(NewStorage(tx))

	return err
}
