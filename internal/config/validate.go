package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
)

// Valid enum values for configuration fields.
var (
	ValidForgeTypes      = []string{"github", "gitlab"}
	ValidMergeStrategies = []string{"squash", "rebase", "merge"}
	ValidBaseRefs        = []string{"local", "remote"}
)

// validateEnum checks that value (if non-empty) is one of allowed.
func validateEnum(value, field string, allowed []string) error {
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
}

func validatePreservePatterns(patterns []string, contextInfo string) error {
	for i, pat := range patterns {
		if _, err := filepath.Match(pat, ""); err != nil {
			if contextInfo != "" {
				return fmt.Errorf("invalid preserve.patterns[%d] %q in %s: %w", i, pat, contextInfo, err)
			}
			return fmt.Errorf("invalid preserve.patterns[%d] %q: %w", i, pat, err)
		}
	}
	return nil
}

func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}

// Validate checks enum and pattern fields of a fully loaded Config.
func Validate(cfg Config) error {
	if err := validateEnum(cfg.Forge.Default, "forge.default", ValidForgeTypes); err != nil {
		return err
	}
	for i, rule := range cfg.Forge.Rules {
		if err := validateEnum(rule.Type, fmt.Sprintf("forge.rules[%d].type", i), ValidForgeTypes); err != nil {
			return err
		}
	}
	for host, forgeType := range cfg.Hosts {
		if err := validateEnum(forgeType, fmt.Sprintf("hosts[%q]", host), ValidForgeTypes); err != nil {
			return err
		}
	}
	if err := validateEnum(cfg.Merge.Strategy, "merge.strategy", ValidMergeStrategies); err != nil {
		return err
	}
	if err := validateEnum(cfg.Switch.BaseRef, "switch.base_ref", ValidBaseRefs); err != nil {
		return err
	}
	return validatePreservePatterns(cfg.Preserve.Patterns, "")
}

// schemaKeyHints is built once from a JSON-schema reflection of Config, and
// maps a lowercased leaf property name to the dotted path it lives under —
// e.g. "strategy" -> "merge.strategy". `wt config show` uses this to turn an
// unknown top-level key into a "did you mean merge.strategy?" hint instead
// of a bare "unknown key" warning.
var schemaKeyHints = buildSchemaKeyHints()

func buildSchemaKeyHints() map[string]string {
	hints := map[string]string{}
	reflector := &jsonschema.Reflector{FieldNameTag: "toml"}
	schema := reflector.Reflect(&Config{})
	if schema.Definitions == nil {
		return hints
	}
	for defName, def := range schema.Definitions {
		section := strings.ToLower(strings.TrimSuffix(defName, "Config"))
		if def.Properties == nil {
			continue
		}
		for pair := def.Properties.Oldest(); pair != nil; pair = pair.Next() {
			leaf := pair.Key
			if section != "" && section != "config" {
				hints[leaf] = section + "." + leaf
			}
		}
	}
	return hints
}

// SchemaKeyHint returns the dotted path a bare key likely belongs under, or
// "" if the key isn't a recognized leaf of any known section.
func SchemaKeyHint(key string) string {
	return schemaKeyHints[strings.ToLower(key)]
}
