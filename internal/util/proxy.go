package util

import (
	"net/http"
	"net/url"
)

// NewProxyFunc routes outbound fetches through the configured proxies. An empty
// or unparsable setting defers to HTTP_PROXY / HTTPS_PROXY from the environment.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	plain, secure := parseProxy(httpProxy), parseProxy(httpsProxy)
	if plain == nil && secure == nil {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		switch {
		case req.URL.Scheme == "https" && secure != nil:
			return secure, nil
		case plain != nil:
			return plain, nil
		}
		return http.ProxyFromEnvironment(req)
	}
}

func parseProxy(raw string) *url.URL {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil
	}
	return u
}
