package document

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/futig/docqa-backend/internal/config"
	"github.com/futig/docqa-backend/internal/entity"
	"github.com/futig/docqa-backend/internal/integration/common"
	pkghttp "github.com/futig/docqa-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector downloads source documents by URL
type Connector struct {
	config    config.DownloadConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.DownloadConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

const acceptedContentTypes = "application/pdf, application/vnd.openxmlformats-officedocument.wordprocessingml.document, */*;q=0.8"

// Download fetches the document at url and infers its type from the URL path.
// Network errors and 5xx responses are retried; other failures are returned at once.
func (c *Connector) Download(ctx context.Context, url string) (*entity.Document, error) {
	ctxzap.Info(ctx, "downloading document", zap.String("url", url))

	opts := append(c.config.Retry.ToRetryOptions(),
		retry.Context(ctx),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Warn(ctx, "document download attempt failed",
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)

	content, err := retry.DoWithData(func() ([]byte, error) {
		return c.connector.Fetch(ctx, "", c.config.MaxBytes, pkghttp.WithURL(url),
			pkghttp.WithHeader("Accept", acceptedContentTypes),
		)
	}, opts...)
	if err != nil {
		if errors.Is(err, pkghttp.ErrBodyTooLarge) {
			return nil, fmt.Errorf("%w: %w: %w", entity.ErrDownload, entity.ErrDocumentTooLarge, err)
		}
		return nil, fmt.Errorf("%w: %w", entity.ErrDownload, err)
	}

	doc := &entity.Document{
		Source:  url,
		Type:    entity.DocumentTypeFromURL(url),
		Content: content,
	}

	ctxzap.Info(ctx, "document downloaded",
		zap.String("type", string(doc.Type)),
		zap.Int("size_bytes", len(content)),
	)

	return doc, nil
}

func isRetryable(err error) bool {
	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= http.StatusInternalServerError || httpErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
