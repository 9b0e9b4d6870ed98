package convo

import "encoding/json"

// EmptyHistory is the persisted form of a history with no entries.
const EmptyHistory = "[]"

// EncodeHistory serializes the full ordered history to its blob form.
func EncodeHistory(entries []Entry) (string, error) {
	if len(entries) == 0 {
		return EmptyHistory, nil
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeHistory parses a stored history blob. An empty blob is a fresh
// session. The caller decides how to handle a decode error; the session
// store treats it as a fresh session rather than surfacing it.
func DecodeHistory(blob string) ([]Entry, error) {
	if blob == "" || blob == EmptyHistory {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(blob), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
