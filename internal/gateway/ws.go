package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/shareit/shareit-api/internal/middleware"
	"github.com/shareit/shareit-api/internal/pkg/errorhandler"
	"github.com/shareit/shareit-api/internal/pkg/metrics"
	"github.com/shareit/shareit-api/internal/pkg/response"
	"github.com/shareit/shareit-api/internal/pkg/upstream"
)

// NewWebSocketProxy relays the notification stream to the server's /ws.
// The caller must already be identified by the user middleware. signer may be nil.
func NewWebSocketProxy(serverURL string, signer upstream.TokenSigner) (http.Handler, error) {
	target, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.URL.Path = "/ws"
			pr.Out.URL.RawPath = ""
			pr.SetXForwarded()

			if signer == nil {
				return
			}
			token, err := signer.GenerateServiceToken(middleware.GetUserID(pr.In.Context()))
			if err != nil {
				// The server rejects the upgrade without a token
				errorhandler.LogExternalServiceError(pr.In.Context(), "shareit-server", "/ws", 0, err)
				return
			}
			pr.Out.Header.Set("Authorization", "Bearer "+token)
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			metrics.IncUpstreamError("unavailable")
			errorhandler.LogExternalServiceError(r.Context(), "shareit-server", "/ws", http.StatusBadGateway, err)
			response.BadGateway(w, "ShareIt server is unavailable")
		},
	}, nil
}
