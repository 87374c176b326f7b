// Package api contains the JSON API contract for the monthly donor export.
// Version v1 represents the current stable API version.
package api

// ProcessRequest carries the fields of a multipart process upload. Filename
// is the client-side name of the uploaded export.
type ProcessRequest struct {
	Month    int    `json:"month" form:"month" validate:"required,min=1,max=12"`
	Filename string `json:"filename" form:"file" validate:"required,export_filename"`
}

// DownloadRequest identifies a stored monthly CSV
type DownloadRequest struct {
	ID string `json:"id" validate:"required,uuid4"`
}
