package authmw

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2/clientcredentials"
)

// IntrospectionEndpoint wires an RFC 7662 token-introspection endpoint
// through an OAuth2 client-credentials grant, for deployments that
// issue ipc-tokens from a central authorization server rather than
// this process's own HKDF secret.
type IntrospectionEndpoint struct {
	url    string
	config clientcredentials.Config
}

// NewIntrospectionEndpoint builds an introspector that authenticates
// to tokenURL with clientID/clientSecret before calling introspectURL.
func NewIntrospectionEndpoint(introspectURL, tokenURL, clientID, clientSecret string, scopes ...string) *IntrospectionEndpoint {
	return &IntrospectionEndpoint{
		url: introspectURL,
		config: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
		},
	}
}

// introspectionResponse is the RFC 7662 response shape this endpoint
// cares about; fields it doesn't use are dropped during decode.
type introspectionResponse struct {
	Active bool `json:"active"`
}

// Introspect reports whether token is still active per the remote
// authorization server. Suitable as the introspect callback passed to
// NewRemoteIntrospector.
func (e *IntrospectionEndpoint) Introspect(ctx context.Context, token string) (bool, error) {
	client := e.config.Client(ctx)

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("authmw: failed to build introspection request: %w", err)
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("authmw: introspection request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("authmw: introspection endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed introspectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("authmw: failed to decode introspection response: %w", err)
	}
	return parsed.Active, nil
}
