// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is the HTTP client for the Qwirl API.

It covers the viewer-side session operations the response controller needs:

	view, err := c.GetQwirl(ctx, "alice")
	sess, err := c.StartSession(ctx, "alice", "bob")
	rec, err := c.SubmitAnswer(ctx, sessionID, itemID, &answer) // nil answer = skip
	rec, err := c.SaveComment(ctx, sessionID, itemID, "same!")
	sum, err := c.FinishSession(ctx, sessionID)

plus the owner operations (CreateQwirl, AddItem, PublishQwirl) used to set a
questionnaire up. Viewer and owner credentials are sent via the
X-Viewer-Token and X-Owner-Key headers; set them with SetViewerToken and
SetOwnerKey.

Non-2xx responses become *APIError values carrying the status code and the
server's message.
*/
package client
