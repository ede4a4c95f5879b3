package archive

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relvault/pkg/domain/interfaces"
)

// defaultBinaries are the 7-Zip binary names probed on PATH, in order
var defaultBinaries = []string{"7z", "7za", "7zr"}

type sevenZip struct {
	binaries []string
}

// Option configures the archiver
type Option func(*sevenZip)

// WithBinaries overrides the binary names probed on PATH
func WithBinaries(binaries ...string) Option {
	return func(s *sevenZip) {
		s.binaries = binaries
	}
}

// NewSevenZip creates an Archiver backed by the 7-Zip command line tool.
// The binary is resolved per invocation so that a missing tool fails one
// target without aborting the whole run.
func NewSevenZip(opts ...Option) interfaces.Archiver {
	s := &sevenZip{
		binaries: defaultBinaries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create archives the contents of sourceDir into archivePath, encrypting
// both content and archive headers with the password and using maximum
// compression. Single all-or-nothing invocation.
func (s *sevenZip) Create(ctx context.Context, sourceDir, archivePath, password string) error {
	binary, err := s.lookup()
	if err != nil {
		return err
	}

	args := []string{
		"a", "-t7z", archivePath,
		sourceDir + string(os.PathSeparator),
		"-p" + password,
		"-mhe=on", // encrypt archive headers including file names
		"-mx=9",
	}

	ctxlog.From(ctx).Debug("Running archiver",
		"binary", binary,
		"source_dir", sourceDir,
		"archive_path", archivePath,
	)

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return goerr.Wrap(err, "archiver exited with failure",
			goerr.V("binary", binary),
			goerr.V("archive_path", archivePath),
			goerr.V("output", output.String()))
	}
	return nil
}

// lookup resolves the first available 7-Zip binary on PATH
func (s *sevenZip) lookup() (string, error) {
	for _, name := range s.binaries {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", goerr.New("7z not found on PATH, install p7zip",
		goerr.V("candidates", s.binaries))
}
