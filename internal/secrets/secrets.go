// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads download credentials from a directory of plain-text
// files. Each file is named after a host (for example docs.example.com) and
// holds a bearer token sent with requests to that host and its subdomains.
package secrets

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultDir is the credentials directory used by the CLI.
const DefaultDir = ".secrets"

// Tokens maps a lowercase host name to its bearer token.
type Tokens map[string]string

// Load reads all files in dir and returns a map of host to trimmed token.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, log logrus.FieldLogger) (Tokens, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Tokens{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	tokens := make(Tokens)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.WithError(err).WithField("host", name).Warn("could not read credentials file")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			tokens[strings.ToLower(name)] = value
		}
	}

	return tokens, nil
}

// Hosts returns the configured host names in no particular order.
func (t Tokens) Hosts() []string {
	hosts := make([]string, 0, len(t))
	for h := range t {
		hosts = append(hosts, h)
	}
	return hosts
}

// For returns the token for host, falling back to its parent domains.
// A port suffix is ignored. The empty string means no credentials.
func (t Tokens) For(host string) string {
	if len(t) == 0 || host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	for host != "" {
		if tok, ok := t[host]; ok {
			return tok
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			break
		}
		host = host[i+1:]
	}
	return ""
}
