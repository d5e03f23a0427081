package common

import (
	"github.com/futig/saarthi/internal/config"
	pkgHTTP "github.com/futig/saarthi/pkg/http"
	"go.uber.org/zap"
)

const (
	AdminKeyHeader  = "X-Admin-Key"
	AdminPathMarker = "/admin/"
)

func NewBaseConnector(cfg config.HTTPClientConfig, holder pkgHTTP.CredentialHolder, logger *zap.Logger) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	return pkgHTTP.NewConnector(
		connCfg,
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithUserAgent(cfg.UserAgent),
		pkgHTTP.WithInsecureSkipVerify(cfg.InsecureSkipVerify),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithCredential(AdminKeyHeader, AdminPathMarker, holder),
	)
}
