package domain

import (
	"encoding/base64"
	"encoding/json"

	"github.com/creatorlens/creatorlens-go/pkg/errors"
)

// SearchCursor is the opaque continuation token for "Load More". It is
// self-describing and round-trips through the client verbatim; there is no
// server-side cursor store, so a cursor survives server restarts.
type SearchCursor struct {
	QueryIndex   int      `json:"queryIndex"`
	PageToken    string   `json:"pageToken,omitempty"`
	SeenIDs      []string `json:"seenIds"`
	ScannedCount int      `json:"scannedCount"`
}

func (c *SearchCursor) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func DecodeSearchCursor(token string) (*SearchCursor, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.NewValidationError("malformed cursor", "cursor", token).WithCause(err)
	}
	var cursor SearchCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, errors.NewValidationError("malformed cursor", "cursor", token).WithCause(err)
	}
	if cursor.QueryIndex < 0 || cursor.ScannedCount < 0 {
		return nil, errors.NewValidationError("cursor fields out of range", "cursor", token)
	}
	return &cursor, nil
}

// SeenSet returns the seen-ID membership set for cross-query de-duplication.
func (c *SearchCursor) SeenSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.SeenIDs))
	for _, id := range c.SeenIDs {
		set[id] = struct{}{}
	}
	return set
}
