// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package sessionsync reconciles viewer responses against the Qwirl API.

Every mutation follows the same pattern:

 1. Cancel any in-flight fetch for the cache key.
 2. Snapshot the cached aggregate.
 3. Write the optimistically patched aggregate.
 4. Issue the request.
 5. On failure, write the snapshot back verbatim; on settle either way,
    invalidate the key so the next fetch brings server truth.

The patch arithmetic lives in pure functions (ApplyAnswer, ApplyComment) so
it can be tested without a network or a cache. ApplyAnswer distinguishes
first responses from corrections: a changed answer moves one vote between
options without touching response totals.

Network and validation failures are non-fatal here. The rollback restores
the exact prior cache state and the error carries a user-facing message
(ErrSubmitFailed, ErrCommentFailed); retry is up to the user.
*/
package sessionsync
