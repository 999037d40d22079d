package repository

import "strings"

// likeEscaper escapes LIKE wildcards with '!', which needs no quoting in any
// of the supported dialects. Pair it with the ESCAPE clause in likeOp.
var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

const likeOp = " LIKE ? ESCAPE '!'"

// containsPattern matches s anywhere in a column.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
