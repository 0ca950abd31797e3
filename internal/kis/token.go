package kis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Token is an access token issued by the OAuth endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// ExpiresIn is the lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
	// ExpiredAt is the upstream's own "YYYY-MM-DD HH:MM:SS" expiry, informational only.
	ExpiredAt string `json:"access_token_token_expired"`
}

// TTL returns the token lifetime.
func (t Token) TTL() time.Duration { return time.Duration(t.ExpiresIn) * time.Second }

type tokenRequest struct {
	GrantType string `json:"grant_type"`
	AppKey    string `json:"appkey"`
	AppSecret string `json:"appsecret"`
}

// IssueToken requests a new access token with the client credentials grant.
func (c *Client) IssueToken(ctx context.Context) (Token, error) {
	if !c.Configured() {
		return Token{}, ErrMissingSecrets
	}

	body, err := json.Marshal(tokenRequest{GrantType: "client_credentials", AppKey: c.appKey, AppSecret: c.appSecret})
	if err != nil {
		return Token{}, fmt.Errorf("encoding token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth2/tokenP", bytes.NewReader(body))
	if err != nil {
		return Token{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	b, err := readBody(res)
	if err != nil {
		return Token{}, err
	}

	var tok Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return Token{}, &DecodeError{Reason: fmt.Sprintf("token: %v", err)}
	}
	if tok.AccessToken == "" {
		return Token{}, &DecodeError{Reason: "token: missing access_token"}
	}
	return tok, nil
}
