package mcpserver

// FrontmatterFormat describes the layout of a content document.
const FrontmatterFormat = `# Worklog Document Format

Documents live under ` + "`" + `<content root>/<section>/` + "`" + ` where section is one of
` + "`" + `til` + "`" + `, ` + "`" + `notes` + "`" + `, ` + "`" + `recipes` + "`" + `, ` + "`" + `workouts` + "`" + `. Subdirectories are allowed and
become part of the slug: ` + "`" + `til/go/slices.md` + "`" + ` is served at ` + "`" + `/til/go/slices` + "`" + `.

## Structure

` + "```" + `markdown
---
title: Human-readable title   # REQUIRED
date: 2025-01-15              # OPTIONAL; ISO-8601, compared as text
summary: One line teaser      # OPTIONAL; shown in listings
tags:                         # OPTIONAL; YAML list or a single string
  - go
  - tooling
---

Body text in GitHub-flavoured Markdown.
` + "```" + `

## Rules

1. Files end with ` + "`" + `.md` + "`" + ` or ` + "`" + `.mdx` + "`" + `. When both exist for one slug the ` + "`" + `.mdx` + "`" + `
   file wins.
2. A document without a ` + "`" + `title` + "`" + ` fails the whole section listing.
3. Tags are matched case-insensitively with surrounding spaces trimmed.
4. Listings show dated posts newest first, then undated posts by title.
`
