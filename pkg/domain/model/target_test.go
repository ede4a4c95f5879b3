package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/relvault/pkg/domain/model"
)

func TestParseTarget_Shapes(t *testing.T) {
	// the same repository denoted in every accepted shape parses identically
	want := model.Target{Owner: "acme", Repo: "tool", AllowPrerelease: true}

	shapes := map[string]map[string]any{
		"combined string": {
			"repo":             "acme/tool",
			"allow_prerelease": true,
		},
		"separate fields": {
			"owner":            "acme",
			"repo":             "tool",
			"allow_prerelease": true,
		},
		"user field": {
			"user":             "acme",
			"repo":             "tool",
			"allow_prerelease": true,
		},
		"whitespace tolerated": {
			"repo":             " acme / tool ",
			"allow_prerelease": true,
		},
	}

	for name, entry := range shapes {
		t.Run(name, func(t *testing.T) {
			target, err := model.ParseTarget(entry)
			gt.NoError(t, err)
			gt.Value(t, target).Equal(want)
		})
	}
}

func TestParseTarget_PrereleaseKeys(t *testing.T) {
	t.Run("defaults to false", func(t *testing.T) {
		target, err := model.ParseTarget(map[string]any{"repo": "acme/tool"})
		gt.NoError(t, err)
		gt.Value(t, target.AllowPrerelease).Equal(false)
	})

	t.Run("accepts alternate key names", func(t *testing.T) {
		for _, key := range []string{"allow_prerelease", "allow_prereleases", "include_prerelease", "include_prereleases", "prerelease"} {
			target, err := model.ParseTarget(map[string]any{"repo": "acme/tool", key: true})
			gt.NoError(t, err)
			gt.Value(t, target.AllowPrerelease).Equal(true)
		}
	})

	t.Run("first matching key wins", func(t *testing.T) {
		target, err := model.ParseTarget(map[string]any{
			"repo":             "acme/tool",
			"allow_prerelease": false,
			"prerelease":       true,
		})
		gt.NoError(t, err)
		gt.Value(t, target.AllowPrerelease).Equal(false)
	})

	t.Run("accepts string values", func(t *testing.T) {
		target, err := model.ParseTarget(map[string]any{"repo": "acme/tool", "prerelease": "true"})
		gt.NoError(t, err)
		gt.Value(t, target.AllowPrerelease).Equal(true)
	})
}

func TestParseTarget_Invalid(t *testing.T) {
	invalid := []map[string]any{
		{},
		{"repo": ""},
		{"repo": "toolonly"},
		{"owner": "acme"},
		{"repo": "/tool"},
		{"repo": "acme/"},
		{"repo": 42},
	}

	for _, entry := range invalid {
		_, err := model.ParseTarget(entry)
		gt.Error(t, err)
	}
}
