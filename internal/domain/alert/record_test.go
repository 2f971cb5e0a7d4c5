package alert

import (
	"testing"

	"planetary_hour_notifier/internal/domain/planetary"

	"github.com/stretchr/testify/assert"
)

func TestNewPayload(t *testing.T) {
	slot := planetary.HourSlot{Date: "2026-10-18", Bucket: 10}

	p := NewPayload(planetary.Moon, slot, "/static/images/favicon.ico", true, false)
	assert.Equal(t, "Planetary Hour: Moon", p.Title)
	assert.Equal(t, "It's the hour of Moon", p.Body)
	assert.Equal(t, "planet-hour-Moon", p.Tag)
	assert.True(t, p.Renotify)
	assert.Equal(t, "Planetary Hour: Moon\nIt's the hour of Moon", p.Text())

	p = NewPayload(planetary.Moon, slot, "", false, true)
	assert.Equal(t, "planet-hour-Moon-2026-10-18-10", p.Tag)
}

func TestTag_PerSlotNeedsSlot(t *testing.T) {
	assert.Equal(t, "planet-hour-Sun", Tag(planetary.Sun, planetary.HourSlot{}, true))
}
