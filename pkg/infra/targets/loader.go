package targets

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relvault/pkg/domain/model"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// tomlDocument is the TOML shape: entries live under [[targets]] because
// TOML has no top-level array.
type tomlDocument struct {
	Targets []map[string]any `toml:"targets"`
}

// Load reads the target list from path. The format follows the file
// extension: .json, .yaml/.yml, or .toml. Entries that do not resolve to a
// valid (owner, repo) pair are logged and skipped; only file-level read or
// parse failures are returned as errors.
func Load(ctx context.Context, path string) ([]model.Target, error) {
	logger := ctxlog.From(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read targets file", goerr.V("path", path))
	}

	entries, err := decode(path, data)
	if err != nil {
		return nil, err
	}

	targets := make([]model.Target, 0, len(entries))
	for i, entry := range entries {
		target, err := model.ParseTarget(entry)
		if err != nil {
			logger.Warn("Skipping invalid target entry",
				"index", i,
				"error", err,
			)
			continue
		}
		targets = append(targets, target)
	}

	return targets, nil
}

func decode(path string, data []byte) ([]map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var entries []map[string]any
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, goerr.Wrap(err, "failed to parse JSON targets file", goerr.V("path", path))
		}
		return entries, nil

	case ".yaml", ".yml":
		var entries []map[string]any
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, goerr.Wrap(err, "failed to parse YAML targets file", goerr.V("path", path))
		}
		return entries, nil

	case ".toml":
		var doc tomlDocument
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, goerr.Wrap(err, "failed to parse TOML targets file", goerr.V("path", path))
		}
		return doc.Targets, nil

	default:
		return nil, goerr.New("unsupported targets file format",
			goerr.V("path", path), goerr.V("ext", filepath.Ext(path)))
	}
}
