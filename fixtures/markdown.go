package fixtures

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// ParseMarkdownManifest loads fixtures declared in a fixtures.md file.
// Fixtures are rows in markdown tables, file-level defaults come from YAML
// front-matter:
//
//	---
//	toolchain: rust
//	timeout: 90s
//	---
//
//	| Fixture    | Path        | Expect      | Rules                   |
//	|------------|-------------|-------------|-------------------------|
//	| clean      | clean/      | clean       |                         |
//	| bad-lint   | bad lint/   | lint-issues | clippy::needless_return |
func ParseMarkdownManifest(path string) ([]Fixture, []LoadError) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []LoadError{{Manifest: path, Err: err}}
	}

	defaults, content, err := parseFrontMatter(string(data))
	if err != nil {
		return nil, []LoadError{{Manifest: path, Err: fmt.Errorf("invalid front-matter: %w", err)}}
	}

	entries, failures := parseTables(path, content)
	if len(entries) == 0 && len(failures) == 0 {
		return nil, []LoadError{{Manifest: path, Err: fmt.Errorf("manifest declares no fixtures")}}
	}

	var fixtures []Fixture
	for _, entry := range entries {
		fixture, loadErr := resolveEntry(path, defaults, entry)
		if loadErr != nil {
			failures = append(failures, *loadErr)
			continue
		}
		fixtures = append(fixtures, fixture)
	}

	return fixtures, failures
}

// parseFrontMatter splits optional YAML front-matter delimited by "---" lines
// from the markdown body.
func parseFrontMatter(content string) (manifestDefaults, string, error) {
	var defaults manifestDefaults

	scanner := bufio.NewScanner(strings.NewReader(content))
	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "---" {
		return defaults, content, nil
	}

	var frontMatter strings.Builder
	var body strings.Builder
	closed := false
	for scanner.Scan() {
		line := scanner.Text()
		if !closed && strings.TrimSpace(line) == "---" {
			closed = true
			continue
		}
		if closed {
			body.WriteString(line)
			body.WriteString("\n")
		} else {
			frontMatter.WriteString(line)
			frontMatter.WriteString("\n")
		}
	}

	if !closed {
		return defaults, content, fmt.Errorf("front-matter never closed")
	}
	if err := yaml.Unmarshal([]byte(frontMatter.String()), &defaults); err != nil {
		return defaults, content, err
	}

	return defaults, body.String(), nil
}

// parseTables walks the markdown AST collecting fixture rows from every table.
func parseTables(manifestPath, content string) ([]manifestEntry, []LoadError) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	source := []byte(content)
	doc := md.Parser().Parse(text.NewReader(source))

	var entries []manifestEntry
	var failures []LoadError

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		table, ok := n.(*extast.Table)
		if !ok {
			return ast.WalkContinue, nil
		}

		var headers []string
		for child := table.FirstChild(); child != nil; child = child.NextSibling() {
			switch row := child.(type) {
			case *extast.TableHeader:
				for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
					headers = append(headers, strings.TrimSpace(extractNodeText(cell, source)))
				}
			case *extast.TableRow:
				var values []string
				for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
					values = append(values, strings.TrimSpace(extractNodeText(cell, source)))
				}
				if len(headers) == 0 || len(values) != len(headers) {
					continue
				}
				entry, err := parseTableRow(headers, values)
				if err != nil {
					failures = append(failures, LoadError{Manifest: manifestPath, Fixture: entry.Name, Err: err})
					continue
				}
				if entry.Name == "" && entry.Path == "" {
					continue
				}
				entries = append(entries, entry)
			}
		}
		return ast.WalkSkipChildren, nil
	})

	return entries, failures
}

// parseTableRow maps one table row onto a manifest entry using the header
// names, unknown columns are ignored.
func parseTableRow(headers, values []string) (manifestEntry, error) {
	var entry manifestEntry
	for i, header := range headers {
		value := values[i]
		if value == "" {
			continue
		}
		switch strings.ToLower(header) {
		case "fixture", "name", "test", "test name":
			entry.Name = value
		case "path", "file", "dir":
			entry.Path = value
		case "expect", "expected", "outcome":
			entry.Expect = value
		case "toolchain", "language", "lang":
			entry.Toolchain = value
		case "rules", "rule":
			for _, rule := range strings.Split(value, ",") {
				if rule = strings.TrimSpace(rule); rule != "" {
					entry.Rules = append(entry.Rules, rule)
				}
			}
		case "expr", "cel", "expression":
			entry.Expr = value
		case "timeout":
			d, err := time.ParseDuration(value)
			if err != nil {
				return entry, fmt.Errorf("invalid timeout %q: %w", value, err)
			}
			entry.Timeout = &d
		}
	}
	return entry, nil
}

// extractNodeText extracts plain text content from an AST node
func extractNodeText(node ast.Node, source []byte) string {
	var buf strings.Builder

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if text, ok := n.(*ast.Text); ok {
				buf.Write(text.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})

	return buf.String()
}
