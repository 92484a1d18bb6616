// Package policy gates a diff: license allow/deny rules and fail-on
// conditions decide the process exit code.
package policy

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/rezmoss/sbomdiff/internal/diff"
	"github.com/rezmoss/sbomdiff/internal/sbom"
)

// Condition is a --fail-on condition.
type Condition string

const (
	FailOnAddedComponents Condition = "added-components"
	FailOnMissingHashes   Condition = "missing-hashes"
	FailOnDeps            Condition = "deps"
)

// ParseCondition validates a user-supplied fail-on condition.
func ParseCondition(s string) (Condition, error) {
	switch Condition(s) {
	case FailOnAddedComponents, FailOnMissingHashes, FailOnDeps:
		return Condition(s), nil
	}
	return "", fmt.Errorf("unknown fail-on condition %q (supported: added-components, missing-hashes, deps)", s)
}

// Config holds the policy rules. All fields are optional; an empty
// config always evaluates to Ok.
type Config struct {
	DenyLicenses  []string    `mapstructure:"deny_licenses"`
	AllowLicenses []string    `mapstructure:"allow_licenses"`
	FailOn        []Condition `mapstructure:"fail_on"`
}

// LoadFile reads a policy config from a JSON or YAML file.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading policy file: %w", err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing policy file: %w", err)
	}
	for _, c := range cfg.FailOn {
		if _, err := ParseCondition(string(c)); err != nil {
			return Config{}, fmt.Errorf("policy file: %w", err)
		}
	}
	return cfg, nil
}

// Merge returns a copy of cfg with other's rules appended.
func (c Config) Merge(other Config) Config {
	c.DenyLicenses = append(c.DenyLicenses, other.DenyLicenses...)
	c.AllowLicenses = append(c.AllowLicenses, other.AllowLicenses...)
	c.FailOn = append(c.FailOn, other.FailOn...)
	return c
}

// Violation classifies an outcome.
type Violation string

const (
	ViolationNone    Violation = ""
	ViolationLicense Violation = "license"
	ViolationFailOn  Violation = "fail-on"
)

// Outcome is the result of evaluating a policy. Details carry one
// diagnostic line per offending component or edge.
type Outcome struct {
	Violation Violation
	Condition Condition // set when Violation is ViolationFailOn
	Details   []string
}

// OK reports whether no rule was violated.
func (o Outcome) OK() bool { return o.Violation == ViolationNone }

// ExitCode maps the outcome to the process exit code: 0 for Ok, 2 for a
// license violation, 3 for a fail-on condition.
func (o Outcome) ExitCode() int {
	switch o.Violation {
	case ViolationLicense:
		return 2
	case ViolationFailOn:
		return 3
	}
	return 0
}

// Evaluate checks the diff and the new SBOM against the config. License
// rules are matched case-insensitively against the expanded license
// tokens of every component in next. License violations take precedence
// over fail-on conditions.
func Evaluate(cfg Config, d *diff.Diff, next *sbom.Sbom) Outcome {
	if details := checkLicenses(cfg, next); len(details) > 0 {
		return Outcome{Violation: ViolationLicense, Details: details}
	}

	for _, cond := range []Condition{FailOnAddedComponents, FailOnMissingHashes, FailOnDeps} {
		if !hasCondition(cfg.FailOn, cond) {
			continue
		}
		if details := checkCondition(cond, d, next); len(details) > 0 {
			return Outcome{Violation: ViolationFailOn, Condition: cond, Details: details}
		}
	}

	return Outcome{}
}

func checkLicenses(cfg Config, next *sbom.Sbom) []string {
	if len(cfg.DenyLicenses) == 0 && len(cfg.AllowLicenses) == 0 {
		return nil
	}

	deny := lowerSet(cfg.DenyLicenses)
	allow := lowerSet(cfg.AllowLicenses)

	var details []string
	for _, id := range next.IDs() {
		for _, lic := range next.Components[id].Licenses {
			token := strings.ToLower(lic)
			if deny[token] {
				details = append(details, fmt.Sprintf("license %s is denied (component %s)", lic, id))
			}
			if len(allow) > 0 && !allow[token] {
				details = append(details, fmt.Sprintf("license %s is not allowed (component %s)", lic, id))
			}
		}
	}
	return details
}

func checkCondition(cond Condition, d *diff.Diff, next *sbom.Sbom) []string {
	var details []string
	switch cond {
	case FailOnAddedComponents:
		for _, c := range d.Added {
			details = append(details, fmt.Sprintf("added component %s (--fail-on added-components)", c.ID))
		}
	case FailOnMissingHashes:
		for _, id := range next.MissingHashes() {
			details = append(details, fmt.Sprintf("component %s has no hashes (--fail-on missing-hashes)", id))
		}
	case FailOnDeps:
		for _, e := range d.EdgeChanges.Added {
			details = append(details, fmt.Sprintf("added dependency edge %s -> %s (--fail-on deps)", e.Parent, e.Child))
		}
		for _, e := range d.EdgeChanges.Removed {
			details = append(details, fmt.Sprintf("removed dependency edge %s -> %s (--fail-on deps)", e.Parent, e.Child))
		}
	}
	return details
}

func hasCondition(conds []Condition, c Condition) bool {
	for _, v := range conds {
		if v == c {
			return true
		}
	}
	return false
}

func lowerSet(in []string) map[string]bool {
	set := make(map[string]bool, len(in))
	for _, v := range in {
		set[strings.ToLower(v)] = true
	}
	return set
}
