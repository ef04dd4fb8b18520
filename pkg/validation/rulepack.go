package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dalildz/dalil/pkg/logger"
)

// Rulepack is a set of pattern rules for one semantic type, usually loaded
// from a YAML file so editors can tighten validation without a release.
type Rulepack struct {
	Type   SemanticType
	Rules  []Rule
	Source string
}

type rawRulepack struct {
	Type  string    `yaml:"type"`
	Rules []rawRule `yaml:"rules"`
}

type rawRule struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern"`
	Match    string `yaml:"match"`
	Message  string `yaml:"message"`
	Critical bool   `yaml:"critical"`
}

const (
	matchReject  = "reject"
	matchRequire = "require"
)

// ParseRulepack compiles a YAML rulepack document.
//
//	type: text
//	rules:
//	  - name: no_tatweel_flood
//	    pattern: "ـ{5,}"
//	    match: reject   # reject (default) fails on match, require fails on no match
//	    message: Excessive tatweel
//	    critical: false
func ParseRulepack(data []byte) (Rulepack, error) {
	var raw rawRulepack
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Rulepack{}, errors.Join(ErrInvalidRulepack, err)
	}

	t := Custom(raw.Type)
	if t == "" {
		return Rulepack{}, fmt.Errorf("%w: type is required", ErrInvalidRulepack)
	}

	pack := Rulepack{Type: t, Rules: make([]Rule, 0, len(raw.Rules))}
	for i, rr := range raw.Rules {
		rule, err := compileRule(rr)
		if err != nil {
			return Rulepack{}, fmt.Errorf("%w: rule %d: %w", ErrInvalidRulepack, i, err)
		}
		pack.Rules = append(pack.Rules, rule)
	}
	return pack, nil
}

func compileRule(rr rawRule) (Rule, error) {
	if rr.Name == "" || rr.Pattern == "" || rr.Message == "" {
		return Rule{}, errors.New("name, pattern and message are required")
	}

	re, err := regexp.Compile(rr.Pattern)
	if err != nil {
		return Rule{}, err
	}

	var test Predicate
	switch strings.ToLower(strings.TrimSpace(rr.Match)) {
	case "", matchReject:
		test = StringPredicate(func(s string) bool { return !re.MatchString(s) })
	case matchRequire:
		test = StringPredicate(re.MatchString)
	default:
		return Rule{}, fmt.Errorf("unknown match mode %q", rr.Match)
	}

	return Rule{
		Name:     rr.Name,
		Test:     test,
		Message:  rr.Message,
		Critical: rr.Critical,
	}, nil
}

// LoadRulepacks reads every *.yml and *.yaml file of dir in lexical order.
// Files that fail to read or compile are skipped with a warning.
func LoadRulepacks(dir string, log *slog.Logger) ([]Rulepack, error) {
	if log == nil {
		log = logger.Nop()
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.Join(ErrRulepackDirNotFound, err)
	}

	var paths []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)

	packs := make([]Rulepack, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("rulepack read failed", logger.Component("validation"), slog.String("path", path), logger.Error(err))
			continue
		}

		pack, err := ParseRulepack(data)
		if err != nil {
			log.Warn("rulepack compile failed", logger.Component("validation"), slog.String("path", path), logger.Error(err))
			continue
		}
		pack.Source = path
		packs = append(packs, pack)
	}
	return packs, nil
}

// AddRulepack appends every rule of p to its type.
func (r *Registry) AddRulepack(p Rulepack) {
	for _, rule := range p.Rules {
		r.AddRule(p.Type, rule)
	}
}
