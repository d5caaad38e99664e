package common

import (
	"net/http"

	"github.com/futig/docqa-backend/internal/config"
	pkgHTTP "github.com/futig/docqa-backend/pkg/http"
	"go.uber.org/zap"
)

func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger: logger,
	}

	return pkgHTTP.NewConnector(connCfg, clientOptions(cfg)...)
}

// NewHTTPClient returns a client with the shared transport chain for SDKs that accept one
func NewHTTPClient(cfg config.HTTPClientConfig) *http.Client {
	return pkgHTTP.NewClient(clientOptions(cfg)...)
}

func clientOptions(cfg config.HTTPClientConfig) []pkgHTTP.HttpOpts {
	return []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithTLSHandshakeTimeout(cfg.TLSHandshakeTimeout),
		pkgHTTP.WithMaxIdleConns(cfg.MaxIdleConns),
		pkgHTTP.WithMaxIdleConnsPerHost(cfg.MaxIdleConnsPerHost),
		pkgHTTP.WithInsecureSkipVerify(cfg.InsecureSkipVerify),
		pkgHTTP.WithUserAgent(cfg.UserAgent),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithAuthToken(cfg.Token),
	}
}
