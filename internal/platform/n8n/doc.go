// Package n8n provides the dispatch.Dispatcher implementation backed by
// an n8n-compatible workflow automation engine.
package n8n
