package booking

import "encoding/json"

// DateSlot is the canonical comparison shape for a booking preference.
type DateSlot struct {
	Date string `json:"date"`
	Slot string `json:"slot"`
}

// NormalizeSlots flattens the historical preferred-date/timeslot payload
// shapes into a list of (date, slot) pairs. Three shapes are in the wild:
//
//	date "2026-09-01", slot "morning"
//	date ["2026-09-01","2026-09-02"], slot "morning"
//	date ["2026-09-01","2026-09-02"], slot {"2026-09-01":"morning","2026-09-02":"evening"}
//
// The per-date map is canonical going forward; when dates are omitted the map
// keys alone drive the result. Unknown shapes normalize to nil.
func NormalizeSlots(rawDate, rawSlot json.RawMessage) []DateSlot {
	dates := parseDates(rawDate)
	single, slotMap := parseSlots(rawSlot)

	if len(dates) == 0 && len(slotMap) > 0 {
		for d := range slotMap {
			dates = append(dates, d)
		}
	}

	var out []DateSlot
	for _, d := range dates {
		slot := single
		if slotMap != nil {
			slot = slotMap[d]
		}
		if d == "" || slot == "" {
			continue
		}
		out = append(out, DateSlot{Date: d, Slot: slot})
	}
	return out
}

// HasOverlap reports whether any (date, slot) pair appears in both lists.
func HasOverlap(a, b []DateSlot) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	seen := make(map[DateSlot]struct{}, len(a))
	for _, ds := range a {
		seen[ds] = struct{}{}
	}
	for _, ds := range b {
		if _, ok := seen[ds]; ok {
			return true
		}
	}
	return false
}

func parseDates(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		if one == "" {
			return nil
		}
		return []string{one}
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}

func parseSlots(raw json.RawMessage) (string, map[string]string) {
	if len(raw) == 0 {
		return "", nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return one, nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err == nil {
		return "", m
	}
	return "", nil
}
