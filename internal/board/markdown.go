package board

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// descriptionRenderer turns a project description into inline-safe HTML.
// goldmark drops raw HTML, and bluemonday strips whatever the markdown
// itself could smuggle in (javascript: links and the like).
type descriptionRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func newDescriptionRenderer() *descriptionRenderer {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoReferrerOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return &descriptionRenderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify)),
		policy: policy,
	}
}

func (d *descriptionRenderer) Render(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := d.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(d.policy.SanitizeBytes(buf.Bytes()))
}
