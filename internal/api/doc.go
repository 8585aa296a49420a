// Package api contains the HTTP handlers for the task intake API,
// along with request/response models and error-to-status mapping.
package api
