package configparser

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrNoFilePath = errors.New("no file path provided")

// LoadYamlFile reads a YAML file and loads its leaves into the environment.
// Nested keys are joined with "_" and upper-cased: storage.redis.addr -> STORAGE_REDIS_ADDR.
// Variables already present in the environment are never overwritten.
func LoadYamlFile(filepath string) error {
	if filepath == "" {
		return ErrNoFilePath
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("could not open YAML file: %w", err)
	}

	return LoadYaml(data)
}

// LoadYaml is LoadYamlFile for an in-memory document.
func LoadYaml(data []byte) error {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("error reading YAML file: %w", err)
	}

	vars := make(map[string]string)
	flatten(nil, root, vars)

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, vars[key]); err != nil {
			return fmt.Errorf("could not set env var %s: %w", key, err)
		}
	}

	return nil
}

func flatten(prefix []string, node map[string]any, out map[string]string) {
	for k, v := range node {
		path := append(append([]string{}, prefix...), k)

		switch val := v.(type) {
		case map[string]any:
			flatten(path, val, out)
		case nil:
			// "key:" with no value does not describe a variable
		default:
			out[strings.ToUpper(strings.Join(path, "_"))] = substitute(fmt.Sprint(val))
		}
	}
}

var substitution = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// substitute resolves the ${VAR:-default} syntax anywhere inside value.
func substitute(value string) string {
	return substitution.ReplaceAllStringFunc(value, func(m string) string {
		parts := substitution.FindStringSubmatch(m)
		if envValue := os.Getenv(strings.TrimSpace(parts[1])); envValue != "" {
			return envValue
		}
		return strings.TrimSpace(parts[2])
	})
}
