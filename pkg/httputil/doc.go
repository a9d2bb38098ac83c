// Package httputil provides the HTTP plumbing used to talk to the model
// service.
//
// # Overview
//
//   - [Client]: JSON POST with status classification and retry
//   - [Retry]: Automatic retry with exponential backoff
//
// # Retry
//
// [Retry] re-runs an operation only when it fails with a [RetryableError].
// [Client] wraps transport failures and 5xx responses that way, so a model
// server that is still loading a model gets a second chance, while a 400 or
// 404 fails immediately:
//
//	c := httputil.NewClient(nil)
//	var out generateResponse
//	err := c.PostJSON(ctx, "http://localhost:11434/api/generate", req, &out)
//
// # Configuration
//
// Defaults:
//
//   - Request timeout: 5 minutes
//   - Attempts: 3
//   - Base backoff: 1 second, doubling
package httputil
