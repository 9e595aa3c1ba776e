package repository

import (
	"strings"

	"github.com/straye-as/attendance-api/internal/domain"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching the folded form of s anywhere.
// Match it against a column holding domain.FoldKey output, with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(domain.FoldKey(s)) + "%"
}
