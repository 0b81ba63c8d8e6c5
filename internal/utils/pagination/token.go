package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// EncodeMovementToken creates a base64 encoded cursor from the created-at
// timestamp and movement id of the last item on a page. Movement listings are
// ordered by (created_at DESC, movement_id DESC); the id breaks ties between
// movements sharing a timestamp (e.g. the two legs of a transfer).
func EncodeMovementToken(createdAt time.Time, movementID string) string {
	tokenStr := fmt.Sprintf("%s|%s", createdAt.Format(timeFormat), movementID)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMovementToken parses the base64 encoded cursor back into its
// created-at timestamp and movement id.
func DecodeMovementToken(token string) (time.Time, string, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (split)")
	}

	createdAt, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}

	return createdAt, parts[1], nil
}
