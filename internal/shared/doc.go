// Package shared provides test helpers used across the sustainers packages.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- Donor export fixtures (CSV bytes, files and workbooks)
//	- An in-memory slog handler for asserting log output
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    path := testutil.WriteDonorCSV(t, t.TempDir(), testutil.Donor("1", "5/3/2024"))
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	}
package shared
