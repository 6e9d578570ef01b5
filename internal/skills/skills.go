// Package skills lints skill-bundle directories: SKILL.md frontmatter,
// size budget, code-block hygiene and the marketplace manifest.
package skills

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/geoforge/internal/logger"
)

var log = logger.ForComponent("skills")

// ErrNoSkills indicates no skill directories under the root.
var ErrNoSkills = errors.New("skills: no skill directories found")

const (
	minLines = 150
	maxLines = 500
	minTags  = 7
)

// requiredFields must be present in every SKILL.md frontmatter.
var requiredFields = []string{
	"name", "description", "version", "author", "license", "tags", "dependencies",
}

// skipDirs are never treated as skill bundles.
var skipDirs = map[string]bool{
	".claude-plugin": true, ".git": true, ".github": true,
	"docs": true, "scripts": true, "node_modules": true, "__pycache__": true,
}

// Level grades one finding.
type Level string

const (
	Error Level = "ERROR"
	Warn  Level = "WARN"
)

// Issue is one lint finding.
type Issue struct {
	Level   Level
	Message string
}

// SkillResult is the lint outcome for one bundle.
type SkillResult struct {
	Name   string
	Issues []Issue
}

// Status is PASS, WARN or FAIL.
func (r *SkillResult) Status() string {
	status := "PASS"
	for _, i := range r.Issues {
		if i.Level == Error {
			return "FAIL"
		}
		status = "WARN"
	}
	return status
}

// Frontmatter is the parsed YAML block of a SKILL.md.
type Frontmatter map[string]any

// ParseFrontmatter extracts the leading "---" delimited YAML block.
// A missing block returns nil with no error.
func ParseFrontmatter(text string) (Frontmatter, error) {
	if !strings.HasPrefix(text, "---") {
		return nil, nil
	}
	rest := text[3:]
	end := strings.Index(rest, "---")
	if end < 0 {
		return nil, nil
	}
	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return fm, nil
}

var fenceRe = regexp.MustCompile("(?m)^```(\\w*)$")

// LintText checks one SKILL.md body.
func LintText(text string) []Issue {
	var issues []Issue

	fm, err := ParseFrontmatter(text)
	if err != nil {
		return []Issue{{Error, err.Error()}}
	}
	if fm == nil {
		return []Issue{{Error, "missing YAML frontmatter"}}
	}
	for _, field := range requiredFields {
		if _, ok := fm[field]; !ok {
			issues = append(issues, Issue{Error, "missing frontmatter field: " + field})
		}
	}
	if tags, ok := fm["tags"].([]any); ok && len(tags) < minTags {
		issues = append(issues, Issue{Warn,
			fmt.Sprintf("only %d tags (recommend %d+)", len(tags), minTags)})
	}

	lineCount := len(strings.Split(text, "\n"))
	if strings.HasSuffix(text, "\n") {
		lineCount--
	}
	if lineCount < minLines {
		issues = append(issues, Issue{Warn,
			fmt.Sprintf("only %d lines (minimum %d)", lineCount, minLines)})
	} else if lineCount > maxLines {
		issues = append(issues, Issue{Error,
			fmt.Sprintf("%d lines exceeds maximum %d", lineCount, maxLines)})
	}

	// Opening and closing fences alternate; only the opening ones can
	// carry a language.
	open := true
	for _, m := range fenceRe.FindAllStringSubmatchIndex(text, -1) {
		if open && m[2] == m[3] {
			line := strings.Count(text[:m[0]], "\n") + 1
			issues = append(issues, Issue{Warn,
				fmt.Sprintf("code block without language tag at line %d", line)})
		}
		open = !open
	}

	if !strings.Contains(strings.ToLower(text), "when to use") {
		issues = append(issues, Issue{Warn, "missing 'When to use vs alternatives' section"})
	}
	return issues
}

// FindSkillDirs lists directories under root containing a SKILL.md.
func FindSkillDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || skipDirs[e.Name()] || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), "SKILL.md")); err == nil {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// marketplace mirrors .claude-plugin/marketplace.json.
type marketplace struct {
	Plugins []struct {
		Name string `json:"name"`
	} `json:"plugins"`
}

// LintMarketplace cross-checks the manifest against the skill names.
func LintMarketplace(root string, skillNames []string) []Issue {
	path := filepath.Join(root, ".claude-plugin", "marketplace.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return []Issue{{Error, "missing .claude-plugin/marketplace.json"}}
	}
	var mp marketplace
	if err := json.Unmarshal(data, &mp); err != nil {
		return []Issue{{Error, fmt.Sprintf("invalid JSON: %v", err)}}
	}

	plugins := map[string]bool{}
	for _, p := range mp.Plugins {
		plugins[p.Name] = true
	}
	skills := map[string]bool{}
	var issues []Issue
	for _, s := range skillNames {
		skills[s] = true
		if !plugins[s] {
			issues = append(issues, Issue{Error,
				fmt.Sprintf("skill %q not in marketplace.json plugins", s)})
		}
	}
	var names []string
	for p := range plugins {
		names = append(names, p)
	}
	sort.Strings(names)
	for _, p := range names {
		if !skills[p] {
			issues = append(issues, Issue{Warn,
				fmt.Sprintf("plugin %q in marketplace.json but no skill directory found", p)})
		}
	}
	return issues
}

// Report is the full lint run.
type Report struct {
	Skills      []SkillResult
	Marketplace []Issue
}

// Errors counts ERROR findings across skills and the marketplace.
func (r *Report) Errors() int {
	n := 0
	for _, s := range r.Skills {
		for _, i := range s.Issues {
			if i.Level == Error {
				n++
			}
		}
	}
	for _, i := range r.Marketplace {
		if i.Level == Error {
			n++
		}
	}
	return n
}

// Warnings counts WARN findings.
func (r *Report) Warnings() int {
	n := 0
	for _, s := range r.Skills {
		for _, i := range s.Issues {
			if i.Level == Warn {
				n++
			}
		}
	}
	for _, i := range r.Marketplace {
		if i.Level == Warn {
			n++
		}
	}
	return n
}

// Lint runs the full check over a bundle root.
func Lint(root string) (*Report, error) {
	dirs, err := FindSkillDirs(root)
	if err != nil {
		return nil, err
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoSkills, root)
	}
	log.Info("linting skills", "root", root, "skills", len(dirs))

	rep := &Report{}
	for _, d := range dirs {
		text, err := os.ReadFile(filepath.Join(root, d, "SKILL.md"))
		if err != nil {
			return nil, err
		}
		rep.Skills = append(rep.Skills, SkillResult{Name: d, Issues: LintText(string(text))})
	}
	rep.Marketplace = LintMarketplace(root, dirs)
	return rep, nil
}

// WriteReport prints the per-skill and marketplace findings.
func (r *Report) WriteReport(w io.Writer) {
	fmt.Fprintf(w, "Found %d skills\n\n", len(r.Skills))
	for _, s := range r.Skills {
		fmt.Fprintf(w, "  %-4s  %s\n", s.Status(), s.Name)
		for _, i := range s.Issues {
			fmt.Fprintf(w, "        %s: %s\n", i.Level, i.Message)
		}
	}
	fmt.Fprintf(w, "\nMarketplace:\n")
	if len(r.Marketplace) == 0 {
		fmt.Fprintln(w, "  PASS")
	} else {
		for _, i := range r.Marketplace {
			fmt.Fprintf(w, "  %s: %s\n", i.Level, i.Message)
		}
	}
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 50))
	fmt.Fprintf(w, "Skills: %d  Errors: %d  Warnings: %d\n", len(r.Skills), r.Errors(), r.Warnings())
	if r.Errors() > 0 {
		fmt.Fprintln(w, "FAILED")
	} else {
		fmt.Fprintln(w, "PASSED")
	}
}
