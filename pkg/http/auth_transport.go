package http

import "net/http"

type authTransport struct {
	token     string
	transport http.RoundTripper
}

// RoundTrip sets a bearer token unless the request already carries credentials
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token == "" || req.Header.Get("Authorization") != "" {
		return t.transport.RoundTrip(req)
	}

	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set("Authorization", "Bearer "+t.token)

	return t.transport.RoundTrip(reqCopy)
}

func WithAuthToken(token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			token:     token,
			transport: rt,
		}
	})
}

type uaTransport struct {
	userAgent string
	transport http.RoundTripper
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.transport.RoundTrip(req)
	}
	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set("User-Agent", t.userAgent)
	return t.transport.RoundTrip(reqCopy)
}

func userAgentTransport(userAgent string) TransportFunc {
	return func(rt http.RoundTripper) http.RoundTripper {
		return &uaTransport{userAgent: userAgent, transport: rt}
	}
}
