package registry

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// CamelName converts a snake_case DSL name to the CamelCase Go method name
// it resolves to: create_task becomes CreateTask. The id segment maps to
// ID, following Go initialism convention, so task_id finds TaskID.
func CamelName(name string) string {
	parts := strings.Split(name, "_")
	for i, part := range parts {
		if part == "id" {
			parts[i] = "ID"
			continue
		}
		parts[i] = titleCaser.String(part)
	}
	return strings.Join(parts, "")
}
