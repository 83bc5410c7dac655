package clients

import (
	"slices"

	"golang.org/x/crypto/bcrypt"
)

// Client is a registered OAuth2 client.
type Client struct {
	ID           string   `json:"id"`
	Description  string   `json:"description"`
	SecretHash   string   `json:"-"` // bcrypt hash, never serialized
	RedirectURIs []string `json:"redirectURIs"`
}

// New builds a client with its secret hashed.
func New(id, secret, description string, redirectURIs ...string) (*Client, error) {
	hash, err := HashSecret(secret)
	if err != nil {
		return nil, err
	}
	return &Client{
		ID:           id,
		Description:  description,
		SecretHash:   hash,
		RedirectURIs: redirectURIs,
	}, nil
}

// CheckSecret reports whether secret matches the client's stored hash.
func (c *Client) CheckSecret(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.SecretHash), []byte(secret)) == nil
}

// HasRedirectURI reports whether uri is registered for the client. Matching is exact.
func (c *Client) HasRedirectURI(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}

func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(bytes), err
}
