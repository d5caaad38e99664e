package qa

import (
	"context"

	"github.com/futig/docqa-backend/internal/entity"
)

type QAUsecase interface {
	Run(ctx context.Context, req *entity.RunRequest) (*entity.RunResponse, error)
}
