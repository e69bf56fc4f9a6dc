// Package api exposes the application data store and card generation over
// JSON HTTP. Handlers resolve the caller's session store, decode and validate
// the body, and map domain, store and generation errors to status codes.
package api
