package validator

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/futig/docqa-backend/internal/config"
	"github.com/futig/docqa-backend/internal/entity"
)

// Validator validates question-answering requests
type Validator struct {
	cfg config.AnswerConfig
}

func NewValidator(cfg config.AnswerConfig) *Validator {
	return &Validator{cfg: cfg}
}

func (v *Validator) ValidateRunRequest(req *entity.RunRequest) error {
	if strings.TrimSpace(req.Documents) == "" {
		return fmt.Errorf("%w: documents", entity.ErrMissingField)
	}
	if err := ValidateDocumentURL(req.Documents); err != nil {
		return err
	}

	if len(req.Questions) == 0 {
		return fmt.Errorf("%w: questions", entity.ErrMissingField)
	}
	if len(req.Questions) > v.cfg.MaxQuestions {
		return fmt.Errorf("%w: maximum %d questions allowed, got %d", entity.ErrTooManyQuestions, v.cfg.MaxQuestions, len(req.Questions))
	}
	for i, q := range req.Questions {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("%w: questions[%d] is blank", entity.ErrMissingField, i)
		}
	}

	return nil
}

// ValidateDocumentURL accepts absolute http and https URLs only
func ValidateDocumentURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: documents: %v", entity.ErrInvalidFormat, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: documents must be an http(s) URL", entity.ErrInvalidFormat)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: documents URL has no host", entity.ErrInvalidFormat)
	}
	return nil
}
