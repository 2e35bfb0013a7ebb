// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Owner Keys

Owner keys use HMAC-SHA256 to create deterministic, verifiable keys:

	ownerKey := auth.GenerateOwnerKey(qwirlID, salt)
	err := auth.ValidateOwnerKey(qwirlID, ownerKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same qwirl ID and salt always produce the same key. This allows validation
without storing the key in the database.

# Viewer Tokens

Viewer tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateViewerToken()

Tokens are URL-safe base64 encoded and used to authenticate response
submissions. Each viewer gets a unique token when starting a session.

# ID Generation

Random hex IDs for secret-bearing records:

	id, err := auth.GenerateID(16)  // 32 hex characters

Non-secret entity IDs (qwirls, items, sessions) use github.com/google/uuid
instead; see the handlers package.

# IP Hashing

For privacy-preserving fraud detection:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
