// Package validation checks user supplied input before the donor pipeline
// runs: the export file path, the output directory and the month argument.
package validation
