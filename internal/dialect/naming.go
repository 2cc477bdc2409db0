package dialect

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
)

// reservedWords need quoting in every supported dialect.
var reservedWords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`
		ADD ALL ALTER AND ANY AS ASC BETWEEN BY CASE CHECK COLUMN CONSTRAINT
		CREATE CROSS CURRENT_DATE CURRENT_TIME CURRENT_TIMESTAMP CURRENT_USER
		DEFAULT DELETE DESC DISTINCT DROP ELSE END EXISTS FALSE FOREIGN FROM
		FULL GRANT GROUP GROUPS HAVING IN INDEX INNER INSERT INTERVAL INTO IS
		JOIN KEY LEFT LIKE LIMIT NATURAL NOT NULL OFFSET ON OR ORDER OUTER
		OVER PARTITION PRIMARY RANGE RANK READ REFERENCES RIGHT ROWS SELECT
		SET TABLE THEN TO TRIGGER TRUE UNION UNIQUE UPDATE USER USING VALUES
		WHEN WHERE WINDOW WITH WRITE`) {
		reservedWords[w] = true
	}
}

// IsReserved reports whether name is a keyword that must be quoted.
func IsReserved(name string) bool {
	return reservedWords[strings.ToUpper(name)]
}

// NeedsQuoting reports whether name fails the bare-identifier pattern or is
// reserved.
func NeedsQuoting(name string, bare *regexp.Regexp) bool {
	return !bare.MatchString(name) || IsReserved(name)
}

// ConstraintName derives the foreign-key name fk_<table>_<column>. Names
// longer than limit are cut and suffixed with an FNV-1a hash of the full
// name so they stay unique and deterministic.
func ConstraintName(table, column string, limit int) string {
	name := "fk_" + table + "_" + column
	if limit <= 0 || len(name) <= limit {
		return name
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	suffix := fmt.Sprintf("_%08x", h.Sum32())
	return strings.ToValidUTF8(name[:max(limit-len(suffix), 0)], "") + suffix
}
