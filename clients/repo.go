package clients

import "github.com/pkg/errors"

// ErrNotFound is returned by a Repo for an unknown client.
var ErrNotFound = errors.New("client not found")

type Repo interface {
	Upsert(client *Client) error
	Get(clientID string) (*Client, error)
}
