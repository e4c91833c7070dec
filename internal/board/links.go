package board

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	signUpBody       = "Project ID: %s\n\n(Do not edit the ID. This issue will be processed automatically.)"
	statusChangeBody = "Project ID: %s\n\nNew Status: \n\nNotes (optional):"
)

// LinkBuilder builds the pre-filled issue links for one repository.
type LinkBuilder struct {
	Host  string
	Owner string
	Repo  string
}

func NewLinkBuilder(cfg Config) LinkBuilder {
	return LinkBuilder{Host: cfg.IssueHost, Owner: cfg.RepoOwner, Repo: cfg.RepoName}
}

func (b LinkBuilder) SignUpURL(p Project) string {
	return b.issueURL(
		"signup.md",
		"Sign Up: "+p.Title,
		"signup",
		fmt.Sprintf(signUpBody, p.ID),
	)
}

func (b LinkBuilder) StatusChangeURL(p Project) string {
	return b.issueURL(
		"status-change.md",
		"Status Change: "+p.Title,
		"status-change",
		fmt.Sprintf(statusChangeBody, p.ID),
	)
}

func (b LinkBuilder) issueURL(template, title, labels, body string) string {
	// Each segment is escaped on its own so a "/" in owner or repo
	// cannot add a path level.
	u := url.URL{
		Scheme:   "https",
		Host:     b.Host,
		Path:     "/" + b.Owner + "/" + b.Repo + "/issues/new",
		RawPath:  "/" + url.PathEscape(b.Owner) + "/" + url.PathEscape(b.Repo) + "/issues/new",
		RawQuery: encodeOrdered("template", template, "title", title, "labels", labels, "body", body),
	}
	return u.String()
}

// encodeOrdered is url.Values.Encode without the key sort.
func encodeOrdered(kv ...string) string {
	var sb strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(kv[i]))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(kv[i+1]))
	}
	return sb.String()
}
