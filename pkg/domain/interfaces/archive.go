package interfaces

import "context"

// Archiver produces one password-protected archive from a directory's
// contents. Implementations are all-or-nothing: no partial or resumable
// archives.
type Archiver interface {
	Create(ctx context.Context, sourceDir, archivePath, password string) error
}
