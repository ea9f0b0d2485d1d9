package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type envKind int

const (
	envString envKind = iota
	envBool
	envInt
)

type envKey struct {
	section string
	field   string
	kind    envKind
}

func (k envKey) String() string {
	return k.section + "." + k.field
}

// envKeys are the only config values that may reference $VAR or ${VAR}.
var envKeys = []envKey{
	{section: "store", field: "backend", kind: envString},
	{section: "store", field: "path", kind: envString},
	{section: "store", field: "lockPath", kind: envString},
	{section: "store", field: "lockRetryMillis", kind: envInt},
	{section: "http", field: "listenAddress", kind: envString},
	{section: "http", field: "staticDir", kind: envString},
	{section: "http", field: "adminEnabled", kind: envBool},
	{section: "observability", field: "listenAddress", kind: envString},
	{section: "observability", field: "metricsEnabled", kind: envBool},
	{section: "observability", field: "healthzEnabled", kind: envBool},
	{section: "log", field: "level", kind: envString},
}

// MissingEnv is an unset variable referenced by a config key.
type MissingEnv struct {
	Key string
	Var string
}

// expandEnv decodes a YAML document and substitutes environment variables in
// the values of envKeys, converting them to the key's type. A value that
// expands to blank is dropped so the default applies.
func expandEnv(data []byte) (map[string]any, []MissingEnv, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse config: %w", err)
	}

	var missing []MissingEnv
	for _, key := range envKeys {
		section, ok := lookupFold(doc, key.section).(map[string]any)
		if !ok {
			continue
		}
		field, ok := fieldFold(section, key.field)
		if !ok {
			continue
		}
		raw, ok := section[field].(string)
		if !ok || !strings.Contains(raw, "$") {
			continue
		}

		expanded := os.Expand(raw, func(name string) string {
			value, found := os.LookupEnv(name)
			if !found {
				missing = append(missing, MissingEnv{Key: key.String(), Var: name})
			}
			return value
		})
		if strings.TrimSpace(expanded) == "" {
			delete(section, field)
			continue
		}

		value, err := convertEnvValue(key.kind, expanded)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %q: %w", key, expanded, err)
		}
		section[field] = value
	}
	return doc, missing, nil
}

func convertEnvValue(kind envKind, value string) (any, error) {
	switch kind {
	case envBool:
		return cast.ToBoolE(strings.TrimSpace(value))
	case envInt:
		return cast.ToIntE(strings.TrimSpace(value))
	default:
		return value, nil
	}
}

func lookupFold(values map[string]any, name string) any {
	key, ok := fieldFold(values, name)
	if !ok {
		return nil
	}
	return values[key]
}

// fieldFold finds name in values ignoring case, as viper does.
func fieldFold(values map[string]any, name string) (string, bool) {
	if _, ok := values[name]; ok {
		return name, true
	}
	for key := range values {
		if strings.EqualFold(key, name) {
			return key, true
		}
	}
	return "", false
}
