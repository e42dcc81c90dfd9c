package booking

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlots_SingleStringShape(t *testing.T) {
	got := NormalizeSlots(json.RawMessage(`"2026-09-01"`), json.RawMessage(`"morning"`))
	assert.Equal(t, []DateSlot{{Date: "2026-09-01", Slot: "morning"}}, got)
}

func TestNormalizeSlots_DateArrayShape(t *testing.T) {
	got := NormalizeSlots(
		json.RawMessage(`["2026-09-01","2026-09-02"]`),
		json.RawMessage(`"evening"`),
	)
	assert.Equal(t, []DateSlot{
		{Date: "2026-09-01", Slot: "evening"},
		{Date: "2026-09-02", Slot: "evening"},
	}, got)
}

func TestNormalizeSlots_PerDateMapShape(t *testing.T) {
	got := NormalizeSlots(
		json.RawMessage(`["2026-09-01","2026-09-02"]`),
		json.RawMessage(`{"2026-09-01":"morning","2026-09-02":"evening"}`),
	)
	assert.Equal(t, []DateSlot{
		{Date: "2026-09-01", Slot: "morning"},
		{Date: "2026-09-02", Slot: "evening"},
	}, got)
}

func TestNormalizeSlots_MapWithoutDates(t *testing.T) {
	got := NormalizeSlots(nil, json.RawMessage(`{"2026-09-01":"morning"}`))
	assert.Equal(t, []DateSlot{{Date: "2026-09-01", Slot: "morning"}}, got)
}

func TestNormalizeSlots_Malformed(t *testing.T) {
	assert.Nil(t, NormalizeSlots(json.RawMessage(`42`), json.RawMessage(`"morning"`)))
	assert.Nil(t, NormalizeSlots(json.RawMessage(`"2026-09-01"`), nil))
	assert.Nil(t, NormalizeSlots(nil, nil))
}

func TestHasOverlap(t *testing.T) {
	a := []DateSlot{{Date: "2026-09-01", Slot: "morning"}}

	// Same pair in a different historical shape still collides.
	b := NormalizeSlots(json.RawMessage(`["2026-09-01"]`), json.RawMessage(`{"2026-09-01":"morning"}`))
	assert.True(t, HasOverlap(a, b))

	assert.False(t, HasOverlap(a, []DateSlot{{Date: "2026-09-01", Slot: "evening"}}))
	assert.False(t, HasOverlap(a, nil))
}
