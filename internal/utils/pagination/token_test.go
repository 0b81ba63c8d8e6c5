package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeMovementToken(t *testing.T) {
	createdAt := time.Date(2025, 5, 15, 14, 30, 45, 123456789, time.UTC)
	movementID := "0c1a9d52-7c2e-4d4e-9a31-6a9f6de1c001"

	token := EncodeMovementToken(createdAt, movementID)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedAt, decodedID, err := DecodeMovementToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, createdAt, decodedAt, "Created at time should match after decode")
	assert.Equal(t, movementID, decodedID, "Movement id should match after decode")

	// Movement ids never contain pipes, but the decoder must still keep any
	// trailing content intact via SplitN.
	now := time.Now().UTC()
	token = EncodeMovementToken(now, "id|with|pipes")
	decodedAt, decodedID, err = DecodeMovementToken(token)
	assert.NoError(t, err)
	assert.True(t, now.Equal(decodedAt))
	assert.Equal(t, "id|with|pipes", decodedID)
}

func TestDecodeMovementTokenError(t *testing.T) {
	_, _, err := DecodeMovementToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	// Base64 encoded timestamp without separator.
	_, _, err = DecodeMovementToken("MjAyMy0wNS0xNVQwMDowMDowMFo=")
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split")

	// Base64 encoded "notadate|some-id".
	_, _, err = DecodeMovementToken("bm90YWRhdGV8c29tZS1pZA==")
	assert.Error(t, err, "Should return an error for invalid date format")
	assert.Contains(t, err.Error(), "created_at parse")
}
