package board

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadConfig reads path (or .projectboard/config.yaml under root when path is
// empty), applies PROJECTBOARD_* environment overrides and fills the repo
// slug from the origin remote when the config leaves it unset.
func LoadConfig(root, path string) (Config, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = configPath(root)
	} else {
		path = resolvePath(root, path)
	}

	var cfg Config
	if err := readYAMLFile(path, &cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) || explicit {
			return Config{}, err
		}
		cfg = defaultConfig()
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.fillDefaults()

	if cfg.RepoOwner == "" || cfg.RepoName == "" {
		if owner, name, ok := repoSlugFromGitConfig(root, cfg.IssueHost); ok {
			if cfg.RepoOwner == "" {
				cfg.RepoOwner = owner
			}
			if cfg.RepoName == "" {
				cfg.RepoName = name
			}
		}
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("PROJECTBOARD_REPO_OWNER", &cfg.RepoOwner)
	str("PROJECTBOARD_REPO_NAME", &cfg.RepoName)
	str("PROJECTBOARD_DEFAULT_STATUS", &cfg.DefaultStatus)
	str("PROJECTBOARD_FEED", &cfg.Feed)
	if v, ok := lookup("PROJECTBOARD_PORT"); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || port < 0 || port > 65535 {
			return fmt.Errorf("PROJECTBOARD_PORT: invalid port %q", v)
		}
		cfg.Port = port
	}
	return nil
}

// repoSlugFromGitConfig is best-effort: it reads the origin url from
// .git/config and accepts both https://host/OWNER/REPO and git@host:OWNER/REPO.
func repoSlugFromGitConfig(root, host string) (owner, name string, ok bool) {
	b, err := os.ReadFile(filepath.Join(root, ".git", "config"))
	if err != nil {
		return "", "", false
	}
	inOrigin := false
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") {
			inOrigin = line == `[remote "origin"]`
			continue
		}
		if !inOrigin {
			continue
		}
		key, val, found := strings.Cut(line, "=")
		if !found || strings.TrimSpace(key) != "url" {
			continue
		}
		return splitRepoSlug(strings.TrimSpace(val), host)
	}
	return "", "", false
}

func splitRepoSlug(u, host string) (owner, name string, ok bool) {
	u = strings.TrimSuffix(u, "/")
	u = strings.TrimSuffix(u, ".git")
	for _, marker := range []string{host + "/", host + ":"} {
		i := strings.LastIndex(u, marker)
		if i < 0 {
			continue
		}
		segs := strings.Split(strings.Trim(u[i+len(marker):], "/"), "/")
		if len(segs) >= 2 && segs[0] != "" && segs[1] != "" {
			return segs[0], segs[1], true
		}
	}
	return "", "", false
}
