package qa

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/docqa-backend/internal/entity"
	"github.com/futig/docqa-backend/internal/pkg/logger"
	"github.com/futig/docqa-backend/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// maxBodyBytes bounds the JSON request body
const maxBodyBytes = 1 << 20

type Handler struct {
	usecase QAUsecase
}

func NewHandler(usecase QAUsecase) *Handler {
	return &Handler{
		usecase: usecase,
	}
}

// Run handles POST /hackrx/run
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Run")

	var req entity.RunRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctxzap.Info(ctx, "run requested",
		zap.String("document", req.Documents),
		zap.Int("question_count", len(req.Questions)),
	)

	resp, err := h.usecase.Run(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	response.ErrorWithMessage(w, status, http.StatusText(status), message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrMissingField) || errors.Is(err, entity.ErrInvalidFormat) || errors.Is(err, entity.ErrTooManyQuestions):
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, context.Canceled):
		// client went away; nobody reads the body
		h.respondError(ctx, w, http.StatusServiceUnavailable, "request cancelled", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "An internal processing error occurred: "+err.Error(), err)
	}
}
