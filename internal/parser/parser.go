// Package parser extracts frontmatter and body from Markdown/MDX documents.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/starford/worklog/internal/models"
)

// yamlFormat recognises a leading "---" block decoded with yaml.v3, which
// keeps unquoted dates such as 2024-01-01 as their literal text.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Result holds the output of parsing a content document.
type Result struct {
	Meta models.Frontmatter
	Body string
}

// utf8BOM is dropped from the start of a document before parsing.
var utf8BOM = []byte("\ufeff")

// Parse splits the metadata header from the document body. A document
// without a header yields empty metadata and the whole input as body.
func Parse(data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	var env envelope
	body, err := frontmatter.Parse(bytes.NewReader(data), &env, yamlFormat)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return &Result{
		Meta: models.Frontmatter{
			Title:   env.Title,
			Date:    env.Date,
			Summary: env.Summary,
			Tags:    []string(env.Tags),
		},
		Body: string(body),
	}, nil
}

// NormalizeTag trims and lowercases a tag for aggregation and lookup.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// HasTag reports whether any of tags matches the already-normalized target.
func HasTag(tags []string, target string) bool {
	for _, t := range tags {
		if NormalizeTag(t) == target {
			return true
		}
	}
	return false
}

type envelope struct {
	Title   string  `yaml:"title"`
	Date    string  `yaml:"date"`
	Summary string  `yaml:"summary"`
	Tags    tagList `yaml:"tags"`
}

// tagList accepts either a YAML sequence or a single scalar.
type tagList []string

func (t *tagList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*t = nil
			return nil
		}
		*t = tagList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		*t = items
		return nil
	default:
		return fmt.Errorf("tags: expected a string or a list at line %d", value.Line)
	}
}
