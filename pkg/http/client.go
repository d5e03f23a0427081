package http

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// TransportFunc decorates a round tripper, e.g. to add headers or logging.
type TransportFunc func(http.RoundTripper) http.RoundTripper

type httpConfig struct {
	dialTimeout           time.Duration
	requestTimeout        time.Duration
	keepAlive             time.Duration
	tlsHandshakeTimeout   time.Duration
	responseHeaderTimeout time.Duration
	idleConnTimeout       time.Duration
	maxIdleConns          int
	maxIdleConnsPerHost   int
	middlewares           []TransportFunc
	insecureSkipVerify    bool
	userAgent             string
}

// The request timeout matches the 30s bound of the web client this replaces.
func defaultHTTPConfig() *httpConfig {
	return &httpConfig{
		dialTimeout:           10 * time.Second,
		requestTimeout:        30 * time.Second,
		keepAlive:             90 * time.Second,
		tlsHandshakeTimeout:   10 * time.Second,
		responseHeaderTimeout: 30 * time.Second,
		idleConnTimeout:       90 * time.Second,
		maxIdleConns:          20,
		maxIdleConnsPerHost:   4,
		userAgent:             "saarthi-client",
	}
}

func (cfg *httpConfig) transport() http.RoundTripper {
	dialer := &net.Dialer{Timeout: cfg.dialTimeout, KeepAlive: cfg.keepAlive}

	var rt http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.maxIdleConns,
		MaxIdleConnsPerHost:   cfg.maxIdleConnsPerHost,
		TLSHandshakeTimeout:   cfg.tlsHandshakeTimeout,
		ResponseHeaderTimeout: cfg.responseHeaderTimeout,
		IdleConnTimeout:       cfg.idleConnTimeout,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: cfg.insecureSkipVerify},
	}

	// the last registered middleware ends up outermost
	for _, wrap := range cfg.middlewares {
		rt = wrap(rt)
	}
	return rt
}

func newClient(cfg *httpConfig) *http.Client {
	return &http.Client{
		Timeout:   cfg.requestTimeout,
		Transport: cfg.transport(),
	}
}
