// Package http holds the HTTP handlers of the web front end.
//
// FormHandler serves the HTML upload form, renders the result page with a
// five row preview and serves stored CSVs from /download/{id}. APIHandler
// exposes the same pipeline as JSON under /api. Both parse uploads the same
// way and report failures through errors.ErrorHandler, so a form error and
// an API problem response always carry the same status code.
//
// Handlers hold no pipeline logic; they depend on the DonorProcessor and
// DownloadStore interfaces so tests can replace them with mocks.
package http
