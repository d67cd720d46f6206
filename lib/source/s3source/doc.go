// Package s3source implements the source.ISource interface for an S3
// bucket, optionally below a key prefix. It lets the file server expose
// bucket contents through the same wire protocol as a local directory.
//
// The implementation works against AWS as well as S3-compatible stores like
// MinIO (custom endpoint plus path-style addressing). Listing walks the
// bucket with the ListObjectsV2 paginator and strips the configured prefix
// from the reported names, so clients see plain file names.
//
// The source depends on the narrow S3API interface instead of the concrete
// client, which keeps the package testable against a fake without network
// access or credentials.
package s3source
