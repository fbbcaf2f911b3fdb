package analysis

import "github.com/neo4j-field/cypher-guard/grammar"

// IsWrite reports whether the query contains any updating clause: CREATE,
// MERGE, SET, DELETE, or REMOVE.
func IsWrite(q *grammar.Query) bool {
	for _, c := range q.Clauses {
		if c.Create != nil || c.Merge != nil || c.Set != nil || c.Delete != nil || c.Remove != nil {
			return true
		}
	}
	return false
}

// IsRead reports whether the query only reads. Every parse-successful query
// is exactly one of read or write.
func IsRead(q *grammar.Query) bool {
	return !IsWrite(q)
}
