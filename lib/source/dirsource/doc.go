// Package dirsource implements the source.ISource interface for a single
// directory of a filesystem. It is the default backend of the file server.
//
// The implementation is built on the afero filesystem abstraction, so the
// same code serves the OS filesystem in production and an in-memory
// filesystem in tests. Only regular files directly under the root are
// listed and served; directories and special files are skipped on List and
// rejected on Read.
//
// Names passed to Read are joined to the root without sanitization. The
// service is designed for trusted clients on trusted networks.
package dirsource
