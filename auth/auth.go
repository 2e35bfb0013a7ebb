// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidOwnerKey = errors.New("invalid owner key")

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateOwnerKey creates an HMAC-based owner key for a qwirl
// This is deterministic and verifiable
func GenerateOwnerKey(qwirlID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(qwirlID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateOwnerKey checks if the provided owner key is valid for the qwirl
func ValidateOwnerKey(qwirlID, ownerKey, salt string) error {
	expected := GenerateOwnerKey(qwirlID, salt)
	if !hmac.Equal([]byte(ownerKey), []byte(expected)) {
		return ErrInvalidOwnerKey
	}
	return nil
}

// GenerateViewerToken creates a random secure token for a viewer
// This is used to identify viewers and allow response updates
func GenerateViewerToken() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate viewer token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
