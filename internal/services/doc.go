// Package services implements the donor export pipeline behind both front
// ends.
//
// DonorService runs load, filter and export for one upload or one file and
// returns a Result. Failures are wrapped as "Error processing CSV: <cause>"
// (errors.AppError) so callers can print them as-is or map them to HTTP.
// An empty Result is not an error; callers decide how to present it.
//
// ResultCache holds rendered CSVs for the form's download link. It is the
// only state shared between requests and is bounded by size and TTL.
//
// HealthService reports liveness, readiness and version information.
package services
