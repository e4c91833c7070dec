package board

import (
	"bytes"
	"encoding/json"
	"strings"
)

// AllStatuses is the filter sentinel meaning "no status restriction".
const AllStatuses = "All"

type Project struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status"`
	Owner       string   `json:"owner,omitempty"`
	Tags        []string `json:"tags"`
	Team        []string `json:"team"`
	Signups     []string `json:"signups"`
}

// UnmarshalJSON keeps the id as text: strings as is, numbers and other
// values as their literal JSON. Missing or null arrays decode as empty.
func (p *Project) UnmarshalJSON(b []byte) error {
	type rawProject struct {
		ID          json.RawMessage `json:"id"`
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Status      string          `json:"status"`
		Owner       string          `json:"owner"`
		Tags        []string        `json:"tags"`
		Team        []string        `json:"team"`
		Signups     []string        `json:"signups"`
	}
	var raw rawProject
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	id, err := literalID(raw.ID)
	if err != nil {
		return err
	}
	*p = Project{
		ID:          id,
		Title:       raw.Title,
		Description: raw.Description,
		Status:      raw.Status,
		Owner:       raw.Owner,
		Tags:        orEmpty(raw.Tags),
		Team:        orEmpty(raw.Team),
		Signups:     orEmpty(raw.Signups),
	}
	return nil
}

// literalID is a string id unquoted, or the compact JSON text of any other
// value, so one odd id does not reject the feed.
func literalID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// StatusKind is the style vocabulary a free-text status maps onto.
type StatusKind int

const (
	StatusKindOther StatusKind = iota
	StatusKindOpen
	StatusKindInProgress
	StatusKindDone
)

func KindOf(status string) StatusKind {
	switch strings.ToLower(status) {
	case "open":
		return StatusKindOpen
	case "in progress":
		return StatusKindInProgress
	case "done":
		return StatusKindDone
	default:
		return StatusKindOther
	}
}

// Class is the badge style class; StatusKindOther has none.
func (k StatusKind) Class() string {
	switch k {
	case StatusKindOpen:
		return "open"
	case StatusKindInProgress:
		return "inprogress"
	case StatusKindDone:
		return "done"
	default:
		return ""
	}
}

func (k StatusKind) String() string {
	if c := k.Class(); c != "" {
		return c
	}
	return "other"
}

func (k StatusKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (p Project) Kind() StatusKind { return KindOf(p.Status) }

func (p Project) CanSignUp() bool { return p.Kind() == StatusKindOpen }

type Config struct {
	Version       int      `yaml:"version"`
	RepoOwner     string   `yaml:"repo_owner"`
	RepoName      string   `yaml:"repo_name"`
	DefaultStatus string   `yaml:"default_status"`
	Feed          string   `yaml:"feed"`
	IssueHost     string   `yaml:"issue_host"`
	Port          int      `yaml:"port"`
	Watch         bool     `yaml:"watch"`
	Statuses      []string `yaml:"statuses"`
}

func defaultConfig() Config {
	return Config{
		Version:       1,
		DefaultStatus: AllStatuses,
		Feed:          DefaultFeed,
		IssueHost:     "github.com",
		Port:          8765,
		Statuses:      []string{AllStatuses, "Open", "In Progress", "Done"},
	}
}

// fillDefaults replaces zero values with defaults, leaving set fields alone.
func (c *Config) fillDefaults() {
	d := defaultConfig()
	if c.Version == 0 {
		c.Version = d.Version
	}
	if strings.TrimSpace(c.DefaultStatus) == "" {
		c.DefaultStatus = d.DefaultStatus
	}
	if strings.TrimSpace(c.Feed) == "" {
		c.Feed = d.Feed
	}
	if strings.TrimSpace(c.IssueHost) == "" {
		c.IssueHost = d.IssueHost
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if len(c.Statuses) == 0 {
		c.Statuses = d.Statuses
	}
}
