package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Event is one entry in the hash-chained audit trail.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	Actor     string         `json:"actor"`
	ProjectID string         `json:"project_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	PrevHash  string         `json:"prev_hash,omitempty"`
	Hash      string         `json:"hash,omitempty"`
}

// CalculateHash returns the SHA256 of the event chained to PrevHash.
func (e *Event) CalculateHash() string {
	h := sha256.New()
	h.Write([]byte(e.PrevHash))
	h.Write([]byte(e.ID))
	h.Write([]byte(e.Timestamp.UTC().Format(time.RFC3339Nano)))
	h.Write([]byte(e.Action))
	h.Write([]byte(e.Actor))
	h.Write([]byte(e.ProjectID))
	h.Write([]byte(canonicalJSON(e.Metadata)))
	return hex.EncodeToString(h.Sum(nil))
}

// Seal links the event to prev and sets its hash.
func (e *Event) Seal(prevHash string) {
	e.PrevHash = prevHash
	e.Hash = e.CalculateHash()
}

// canonicalJSON renders metadata with sorted keys so the hash is stable.
func canonicalJSON(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]byte, 0, 256)
	out = append(out, '{')
	for i, k := range keys {
		if i > 0 {
			out = append(out, ',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(m[k])
		out = append(out, keyJSON...)
		out = append(out, ':')
		out = append(out, valJSON...)
	}
	return string(append(out, '}'))
}

// ChainViolation describes one broken link in the audit trail.
type ChainViolation struct {
	Index   int    `json:"index"`
	EventID string `json:"event_id"`
	Reason  string `json:"reason"`
}

func (v ChainViolation) String() string {
	return fmt.Sprintf("event %d (%s): %s", v.Index, v.EventID, v.Reason)
}

// VerifyChain checks every link and content hash in order.
func VerifyChain(events []Event) []ChainViolation {
	var violations []ChainViolation
	lastHash := ""
	for i := range events {
		e := &events[i]
		if e.PrevHash != lastHash {
			violations = append(violations, ChainViolation{Index: i, EventID: e.ID, Reason: "previous hash mismatch"})
		}
		if e.Hash != e.CalculateHash() {
			violations = append(violations, ChainViolation{Index: i, EventID: e.ID, Reason: "content hash mismatch"})
		}
		lastHash = e.Hash
	}
	return violations
}
