package repository

import "strings"

func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// prefixPattern builds a case-insensitive LIKE prefix pattern.
func prefixPattern(s string) string {
	return likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// containsPattern builds a case-insensitive LIKE substring pattern.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
