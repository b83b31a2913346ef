package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	apiRegister = "/api/register"
	apiLogin    = "/api/login"
)

// Register creates an account on the backend. The caller still has to
// sign in afterwards to obtain a credential.
func (g *Gateway) Register(ctx context.Context, login, password string) error {
	_, err := g.postCredentials(ctx, apiRegister, login, password)
	return err
}

// Login exchanges credentials for a bearer token.
func (g *Gateway) Login(ctx context.Context, login, password string) (string, error) {
	body, err := g.postCredentials(ctx, apiLogin, login, password)
	if err != nil {
		return "", err
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: decode login response: %v", ErrRemoteUnavailable, err)
	}
	if result.Token == "" {
		return "", fmt.Errorf("%w: empty token in login response", ErrRemoteUnavailable)
	}
	return result.Token, nil
}

func (g *Gateway) postCredentials(ctx context.Context, path, login, password string) ([]byte, error) {
	payload, _ := json.Marshal(map[string]string{"login": login, "password": password})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode >= 400:
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server error: %s", string(data))
	}
	return io.ReadAll(resp.Body)
}
