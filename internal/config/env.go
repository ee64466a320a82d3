package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ProjectEnvPath is the per-project env file, relative to the working directory.
const ProjectEnvPath = ".diagroute.env"

// LoadEnvFiles loads env files into the process environment, typically to
// provide API keys for the primary classifier. Later files win over earlier
// ones, and variables already set in the real environment are never
// overwritten. Missing or unreadable files are skipped.
func LoadEnvFiles(paths ...string) {
	merged := make(map[string]string)
	for _, p := range paths {
		mergeEnvFile(merged, p)
	}

	for k, v := range merged {
		if _, set := os.LookupEnv(k); !set {
			_ = os.Setenv(k, v)
		}
	}
}

// DefaultEnvFiles returns the global then the project env file.
func DefaultEnvFiles() []string {
	return []string{GlobalEnvPath(), ProjectEnvPath}
}

func mergeEnvFile(dst map[string]string, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	envs, err := ParseEnvFile(data)
	if err != nil {
		return
	}
	for k, v := range envs {
		dst[k] = v
	}
}

// ParseEnvFile parses KEY=VALUE lines. Blank lines and # comments are
// skipped, an "export " prefix is allowed and quoted values are unquoted.
func ParseEnvFile(data []byte) (map[string]string, error) {
	result := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		k, v, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: missing '=' in %q", lineNum, line)
		}
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, fmt.Errorf("line %d: empty key", lineNum)
		}

		v = strings.TrimSpace(v)
		if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
			if v[0] == '"' {
				if uq, err := strconv.Unquote(v); err == nil {
					v = uq
				}
			} else {
				v = v[1 : len(v)-1]
			}
		}
		result[k] = v
	}
	return result, scanner.Err()
}

// GlobalEnvPath returns the path to the global diagroute env file.
func GlobalEnvPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "diagroute", "env")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "diagroute", "env")
}
