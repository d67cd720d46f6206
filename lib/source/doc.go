// Package source provides the abstraction the file server reads payloads
// from. It defines the interface every backend implements and the unified
// error reporting the request handler maps to protocol status tokens.
//
// The package focuses on:
//   - A unified interface (ISource) for listing and reading files across
//     different backends
//   - Structured errors with typed return codes
//
// Key Components:
//
//   - ISource Interface: The core abstraction with the two payload-producing
//     operations of the protocol. List yields the listing payload in its
//     final wire form (one name per line); Read yields the complete contents
//     of one file. Both return whole in-memory payloads, matching the
//     protocol's one-piece transfer model.
//
//   - Error System: A structured error reporting mechanism using typed error
//     codes and descriptive messages. The request handler derives the
//     protocol status token from the code (CodeOf) rather than parsing
//     message strings.
//
// Implementations:
//
//	The package includes two implementations of the ISource interface:
//
//	- Directory Source (dirsource): Serves the regular files directly under
//	  a directory of a filesystem. Built on the afero filesystem abstraction
//	  so the same implementation serves the OS filesystem in production and
//	  an in-memory filesystem in tests.
//	  Available in the "github.com/ValentinKolb/fetchd/lib/source/dirsource" package.
//
//	- S3 Source (s3source): Serves the objects of an S3 bucket, optionally
//	  below a key prefix. Works against AWS as well as S3-compatible stores
//	  like MinIO via a custom endpoint.
//	  Available in the "github.com/ValentinKolb/fetchd/lib/source/s3source" package.
package source
