package qacache

// MatchThreshold is the largest distance (exclusive) at which a stored
// question counts as a near-duplicate of the incoming one.
const MatchThreshold = 0.1

// Record is a stored question/answer pair. Records are never mutated; the ID
// is the record count at insertion time.
type Record struct {
	ID        string
	Question  string
	Answer    string
	Embedding []float32
}

// Match is the nearest stored record and its distance to the query.
type Match struct {
	Record   Record
	Distance float64
}

// Pair is a question/answer row fed to Rebuild.
type Pair struct {
	Question string
	Answer   string
}

// Entry is the exact-text payload kept in the answer store.
type Entry struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
