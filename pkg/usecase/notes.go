package usecase

import (
	"bytes"
	_ "embed"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relvault/pkg/domain/model"
)

//go:embed templates/release_notes.txt.tmpl
var notesTemplateSrc string

//go:embed templates/release_body.md.tmpl
var bodyTemplateSrc string

// releaseDoc is the rendering context shared by the notes file and the
// backup release body.
type releaseDoc struct {
	Repo        string
	Tag         string
	Name        string
	Author      string
	URL         string
	PublishedAt string
	Prerelease  bool
	Body        string
	AssetCount  int
}

func newReleaseDoc(target model.Target, release *model.Release, assetCount int) releaseDoc {
	publishedAt := ""
	if !release.PublishedAt.IsZero() {
		publishedAt = release.PublishedAt.UTC().Format(time.RFC3339)
	}

	return releaseDoc{
		Repo:        target.Slug(),
		Tag:         release.TagName,
		Name:        release.Name,
		Author:      release.Author,
		URL:         release.HTMLURL,
		PublishedAt: publishedAt,
		Prerelease:  release.Prerelease,
		Body:        release.Body,
		AssetCount:  assetCount,
	}
}

func parseTemplates() (notes, body *template.Template, err error) {
	notes, err = template.New("notes").Parse(notesTemplateSrc)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to parse release notes template")
	}
	body, err = template.New("body").Parse(bodyTemplateSrc)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to parse release body template")
	}
	return notes, body, nil
}

func render(tmpl *template.Template, doc releaseDoc) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return "", goerr.Wrap(err, "failed to render template", goerr.V("template", tmpl.Name()))
	}
	return buf.String(), nil
}
