// Package domain holds the donor export data model shared by the CLI,
// the upload form and the JSON API.
package domain
