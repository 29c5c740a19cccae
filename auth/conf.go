package auth

import (
	"errors"

	"golang.org/x/oauth2/clientcredentials"
)

// Conf holds OAuth2 client credentials for an upstream master-data API.
type Conf struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	TokenURL     string   `json:"token_url"`
	Scopes       []string `json:"scopes"`
}

// Enabled reports whether credentials are configured.
func (c Conf) Enabled() bool { return c.ClientID != "" || c.TokenURL != "" }

// Validate requires the id, secret and token URL together.
func (c Conf) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.ClientID == "" || c.ClientSecret == "" || c.TokenURL == "" {
		return errors.New("auth: client_id, client_secret and token_url are required together")
	}
	return nil
}

func (c Conf) oauth2Config() *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL,
		Scopes:       c.Scopes,
	}
}
