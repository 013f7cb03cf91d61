package database

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed schemas/*.sql
var schemaFS embed.FS

const tablePlaceholder = "{{table}}"

// Schema files
const (
	TablesSchema  = "schemas/raw_transactions.sql"
	IndexesSchema = "schemas/raw_transactions_indexes.sql"
)

// TableName returns the landing table for a day, e.g. raw_transactions_day2
func TableName(prefix string, day int) string {
	return fmt.Sprintf("%s%d", prefix, day)
}

// RenderSchema expands one schema file for every table
func RenderSchema(file string, tables []string) (string, error) {
	content, err := schemaFS.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read schema: %w", err)
	}

	var sb strings.Builder
	for i, table := range tables {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.ReplaceAll(string(content), tablePlaceholder, table))
	}
	return sb.String(), nil
}

// SplitStatements splits SQL text on ";" line endings, dropping comment
// lines and blank statements.
func SplitStatements(sqlText string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(sqlText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSpace(current.String())
			statements = append(statements, strings.TrimSuffix(stmt, ";"))
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		statements = append(statements, rest)
	}
	return statements
}
