// Package testing provides a standardised test suite for payload source
// implementations that satisfy the source.ISource interface.
//
// The suite covers the contract every backend must honor: complete
// listings of regular files, the single-space placeholder for empty
// sources, byte-exact reads including empty and binary files, and the
// NotFound code for missing names.
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func(t *testing.T, files map[string][]byte) source.ISource {
//		return newMySource(files)
//	}
//
//	// Running the standard test suite
//	sourcetesting.RunSourceTests(t, "MySource", factory)
package testing
