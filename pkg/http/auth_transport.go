package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CredentialHolder supplies the credential attached to protected requests.
// It is consulted on every request, so a credential set after the client
// was built still applies.
type CredentialHolder interface {
	Credential(ctx context.Context) (string, error)
	ClearCredential(ctx context.Context) error
}

type credentialTransport struct {
	header     string
	pathMarker string
	holder     CredentialHolder
	transport  http.RoundTripper
}

func (t *credentialTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	reqCopy := req.Clone(ctx)

	if strings.Contains(req.URL.Path, t.pathMarker) {
		key, err := t.holder.Credential(ctx)
		if err != nil {
			ctxzap.Warn(ctx, "failed to read stored credential", zap.Error(err))
		}
		if key != "" {
			reqCopy.Header.Set(t.header, key)
		}
	}

	resp, err := t.transport.RoundTrip(reqCopy)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		ctxzap.Info(ctx, "authorization rejected, clearing stored credential",
			zap.String("path", req.URL.Path),
		)
		if err := t.holder.ClearCredential(ctx); err != nil {
			ctxzap.Error(ctx, "failed to clear stored credential", zap.Error(err))
		}
	}

	return resp, nil
}

// WithCredential attaches the holder's credential as header on every request
// whose path contains pathMarker, and clears the holder on any 401 response.
func WithCredential(header, pathMarker string, holder CredentialHolder) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &credentialTransport{
			header:     header,
			pathMarker: pathMarker,
			holder:     holder,
			transport:  rt,
		}
	})
}
