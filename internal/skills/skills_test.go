package skills

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const goodFrontmatter = `---
name: seismic-qc
description: QC workflow for seismic sections
version: 1.0.0
author: geoforge
license: MIT
tags: [seismic, qc, segy, amplitude, spectrum, noise, workflow]
dependencies: []
---
`

func goodSkill() string {
	var b strings.Builder
	b.WriteString(goodFrontmatter)
	b.WriteString("# Seismic QC\n\n## When to use vs alternatives\n\n")
	b.WriteString("```bash\ngeoforge segy inspect line.sgy\n```\n")
	for i := 0; i < 150; i++ {
		b.WriteString("Detail on the workflow step.\n")
	}
	return b.String()
}

func TestLintTextClean(t *testing.T) {
	if issues := LintText(goodSkill()); len(issues) != 0 {
		t.Errorf("issues = %v", issues)
	}
}

func TestLintTextFindings(t *testing.T) {
	text := `---
name: broken
tags: [a, b]
---
# Broken

` + "```\nuntagged\n```\n"

	issues := LintText(text)
	var msgs []string
	for _, i := range issues {
		msgs = append(msgs, string(i.Level)+" "+i.Message)
	}
	joined := strings.Join(msgs, "\n")
	for _, want := range []string{
		"ERROR missing frontmatter field: description",
		"ERROR missing frontmatter field: dependencies",
		"WARN only 2 tags",
		"WARN only 9 lines",
		"WARN code block without language tag at line 7",
		"WARN missing 'When to use",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in:\n%s", want, joined)
		}
	}
}

func TestLintTextNoFrontmatter(t *testing.T) {
	issues := LintText("# No frontmatter\n")
	if len(issues) != 1 || issues[0].Level != Error {
		t.Fatalf("issues = %v", issues)
	}
	if !strings.Contains(issues[0].Message, "frontmatter") {
		t.Errorf("message = %q", issues[0].Message)
	}

	bad := "---\nname: [unclosed\n---\nbody\n"
	issues = LintText(bad)
	if len(issues) != 1 || !strings.Contains(issues[0].Message, "invalid YAML") {
		t.Errorf("issues = %v", issues)
	}
}

func TestLintTextOversize(t *testing.T) {
	text := goodSkill() + strings.Repeat("padding\n", 400)
	issues := LintText(text)
	found := false
	for _, i := range issues {
		if i.Level == Error && strings.Contains(i.Message, "exceeds maximum 500") {
			found = true
		}
	}
	if !found {
		t.Errorf("issues = %v", issues)
	}
}

func TestClosingFenceNotFlagged(t *testing.T) {
	text := goodFrontmatter + "## When to use\n```go\ncode\n```\n" +
		strings.Repeat("x\n", 150)
	for _, i := range LintText(text) {
		if strings.Contains(i.Message, "language tag") {
			t.Errorf("closing fence flagged: %v", i)
		}
	}
}

func bundleRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("seismic-qc/SKILL.md", goodSkill())
	write("well-logs/SKILL.md", "# no frontmatter\n")
	write("docs/SKILL.md", goodSkill())     // skip dir
	write(".hidden/SKILL.md", goodSkill())  // hidden
	write("empty-dir/README.md", "not a skill\n")
	write(".claude-plugin/marketplace.json", `{"plugins": [
  {"name": "seismic-qc"}, {"name": "ghost-skill"}]}`)
	return root
}

func TestFindSkillDirs(t *testing.T) {
	root := bundleRoot(t)
	dirs, err := FindSkillDirs(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) != 2 || dirs[0] != "seismic-qc" || dirs[1] != "well-logs" {
		t.Errorf("dirs = %v", dirs)
	}
}

func TestLintBundle(t *testing.T) {
	root := bundleRoot(t)
	rep, err := Lint(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Skills) != 2 {
		t.Fatalf("skills = %v", rep.Skills)
	}
	if rep.Skills[0].Status() != "PASS" || rep.Skills[1].Status() != "FAIL" {
		t.Errorf("statuses = %s, %s", rep.Skills[0].Status(), rep.Skills[1].Status())
	}

	var b strings.Builder
	rep.WriteReport(&b)
	out := b.String()
	for _, want := range []string{"Found 2 skills", "PASS  seismic-qc", "FAIL  well-logs",
		`skill "well-logs" not in marketplace.json plugins`,
		`plugin "ghost-skill" in marketplace.json but no skill directory found`,
		"FAILED"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if rep.Errors() < 2 {
		t.Errorf("errors = %d", rep.Errors())
	}
}

func TestLintMissingMarketplace(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "only"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "only", "SKILL.md"), []byte(goodSkill()), 0o644); err != nil {
		t.Fatal(err)
	}
	rep, err := Lint(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Marketplace) != 1 || rep.Marketplace[0].Level != Error {
		t.Errorf("marketplace = %v", rep.Marketplace)
	}
}

func TestLintEmptyRoot(t *testing.T) {
	if _, err := Lint(t.TempDir()); !errors.Is(err, ErrNoSkills) {
		t.Errorf("err = %v, want ErrNoSkills", err)
	}
}
