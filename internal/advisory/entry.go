package advisory

import (
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Entry is the advisory for a single country.
type Entry struct {
	DisplayName string    `json:"display_name"`
	Directory   string    `json:"directory"`
	IsoCode     string    `json:"iso_code"`
	Level       Level     `json:"level"`
	LastUpdated time.Time `json:"last_updated"`
}

// ResultSet collects entries keyed by ISO code. Iteration is always in
// ascending code order. It is safe for concurrent use.
type ResultSet struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewResultSet creates an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{
		entries: make(map[string]Entry),
	}
}

// Put stores e under its ISO code, replacing any existing entry. The replaced
// entry is returned with ok set when there was one.
func (rs *ResultSet) Put(e Entry) (previous Entry, ok bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	previous, ok = rs.entries[e.IsoCode]
	rs.entries[e.IsoCode] = e
	return previous, ok
}

// Get returns the entry stored for code.
func (rs *ResultSet) Get(code string) (Entry, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	e, ok := rs.entries[code]
	return e, ok
}

// Len returns the number of entries.
func (rs *ResultSet) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.entries)
}

// Codes returns the stored ISO codes in ascending order.
func (rs *ResultSet) Codes() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	codes := make([]string, 0, len(rs.entries))
	for code := range rs.entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Entries returns the stored entries in ascending code order.
func (rs *ResultSet) Entries() []Entry {
	codes := rs.Codes()

	rs.mu.Lock()
	defer rs.mu.Unlock()

	entries := make([]Entry, 0, len(codes))
	for _, code := range codes {
		entries = append(entries, rs.entries[code])
	}
	return entries
}

// MarshalJSON encodes the set as an object keyed by ISO code.
func (rs *ResultSet) MarshalJSON() ([]byte, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return json.Marshal(rs.entries)
}

// UnmarshalJSON replaces the contents of the set with the decoded object.
func (rs *ResultSet) UnmarshalJSON(data []byte) error {
	entries := make(map[string]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.entries = entries
	return nil
}
