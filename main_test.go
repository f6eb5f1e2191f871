package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

var storeFiles = map[string]string{
	"data-schemas/education.yaml": `schema-name: Education
header-schema:
  - name: Title
    type: String
item-schema:
  - name: School
    type: String
  - name: Date
    type: String
`,
	"layout-schemas/education.json": `{
  "schema-name": "Education",
  "header-layout-schema": {"Ref": {"item": "Title", "font": {"weight": "Bold", "size": 14}}},
  "item-layout-schema": "{School}\t{Date}"
}`,
	"resume-layouts/a4.toml": `width = 210.0
height = 297.0

[margin]
top = 10.0
bottom = 10.0
left = 10.0
right = 10.0
`,
	"resumes/alice.json": `{
  "layout": "a4",
  "sections": [
    {
      "section-name": "Education",
      "data-schema": "Education",
      "layout-schema": "Education",
      "data": {"Title": "Education"},
      "items": [{"School": "MIT", "Date": "2020"}]
    }
  ]
}`,
}

func writeStore(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range storeFiles {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRenderText(t *testing.T) {
	root := writeStore(t)
	out, logs, err := execute(t, "render", "alice", "--store", root, "--format", "txt")
	if err != nil {
		t.Fatalf("render txt: %v\n%s", err, logs)
	}
	lines := strings.Split(out, "\n")
	var school string
	for _, l := range lines {
		if strings.Contains(l, "MIT") {
			school = l
		}
	}
	if !strings.Contains(out, "Education") || school == "" {
		t.Fatalf("text output missing content:\n%s", out)
	}
	if !strings.HasSuffix(school, "2020") {
		t.Fatalf("date should be pushed to the right edge: %q", school)
	}
}

func TestRenderJSON(t *testing.T) {
	root := writeStore(t)
	path := filepath.Join(t.TempDir(), "alice.json")
	if _, logs, err := execute(t, "render", "alice", "--store", root, "-f", "json", "-o", path); err != nil {
		t.Fatalf("render json: %v\n%s", err, logs)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc struct {
		Pages []struct {
			Groups []struct {
				Tree json.RawMessage `json:"tree"`
			} `json:"groups"`
		} `json:"pages"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(doc.Pages) != 1 || len(doc.Pages[0].Groups) != 2 {
		t.Fatalf("expected one page with header and item groups, got %s", data)
	}
	if len(doc.Pages[0].Groups[0].Tree) == 0 {
		t.Fatalf("json output should keep the normalized trees")
	}
}

func TestRenderPDFFromFiles(t *testing.T) {
	root := writeStore(t)
	path := filepath.Join(t.TempDir(), "out", "alice.pdf")
	_, logs, err := execute(t, "render",
		"--resume", filepath.Join(root, "resumes", "alice.json"),
		"--page", filepath.Join(root, "resume-layouts", "a4.toml"),
		"--layout-schemas", filepath.Join(root, "layout-schemas", "education.json"),
		"--data-schemas", filepath.Join(root, "data-schemas", "education.yaml"),
		"--out", path)
	if err != nil {
		t.Fatalf("render pdf: %v\n%s", err, logs)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestRenderUsesConfig(t *testing.T) {
	root := writeStore(t)
	cfg := filepath.Join(t.TempDir(), "folio.toml")
	content := "store = " + strconv.Quote(root) + "\nformat = \"txt\"\ncell = 5.0\n"
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, logs, err := execute(t, "render", "alice", "--config", cfg)
	if err != nil {
		t.Fatalf("render with config: %v\n%s", err, logs)
	}
	if !strings.Contains(out, "MIT") {
		t.Fatalf("config should select txt output:\n%s", out)
	}

	// 命令行参数优先于配置文件。
	if _, _, err := execute(t, "render", "alice", "--config", cfg, "--format", "svg"); err == nil {
		t.Fatalf("explicit --format should override the config")
	}
}

func TestRenderErrors(t *testing.T) {
	root := writeStore(t)
	cases := [][]string{
		{"render"},
		{"render", "bob", "--store", root},
		{"render", "alice", "--store", root, "--format", "svg"},
		{"render", "alice", "--store", root, "--config", filepath.Join(root, "missing.toml")},
	}
	for _, args := range cases {
		if _, _, err := execute(t, args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestListAndInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	if _, _, err := execute(t, "init", dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	out, _, err := execute(t, "list", "--store", dir)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if !strings.Contains(out, "resume-layouts:") {
		t.Fatalf("unexpected list output:\n%s", out)
	}

	out, _, err = execute(t, "list", "--store", writeStore(t))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "resumes:\n  alice\n") {
		t.Fatalf("unexpected list output:\n%s", out)
	}
}

func TestFontsReport(t *testing.T) {
	out, logs, err := execute(t, "fonts", "--store", writeStore(t))
	if err != nil {
		t.Fatalf("fonts: %v\n%s", err, logs)
	}
	if !strings.Contains(out, "Go-Medium") || !strings.Contains(out, "Go-Bold") {
		t.Fatalf("fonts report should list the default and bold faces:\n%s", out)
	}
}

func TestPagePath(t *testing.T) {
	if got := pagePath("out/cv.png", 0, 1); got != "out/cv.png" {
		t.Fatalf("single page: %s", got)
	}
	if got := pagePath("out/cv.png", 1, 3); got != "out/cv-2.png" {
		t.Fatalf("multi page: %s", got)
	}
}
