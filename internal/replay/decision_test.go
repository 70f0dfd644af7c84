package replay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plateful/tax-reporter/internal/domain"
	"github.com/plateful/tax-reporter/internal/replay"
)

const failureCode = "TAX_REPORT_FAILED"

type streamEvent struct {
	event     string
	errorCode string
	brand     string
}

func failure() streamEvent { return streamEvent{errorCode: failureCode} }

func scanStream(events ...streamEvent) replay.EventScan {
	scan := replay.NewEventScan()
	for i, e := range events {
		scan.Observe(i, e.event, e.errorCode, e.brand, failureCode)
	}
	return scan
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		events []streamEvent
		want   domain.DecisionOutcome
	}{
		{
			name:   "no events",
			events: nil,
			want:   domain.DecisionIgnore,
		},
		{
			name: "no failure in stream",
			events: []streamEvent{
				{event: "PLACE_ORDER"},
				{event: "COMPLETE"},
			},
			want: domain.DecisionIgnore,
		},
		{
			name: "failure after place order",
			events: []streamEvent{
				{event: "PLACE_ORDER"},
				failure(),
			},
			want: domain.DecisionReplay,
		},
		{
			name: "failure superseded by later event",
			events: []streamEvent{
				failure(),
				{event: "PLACE_ORDER"},
			},
			want: domain.DecisionIgnore,
		},
		{
			name: "failure superseded by promotion",
			events: []streamEvent{
				{event: "PLACE_ORDER"},
				failure(),
				{event: "ADD_PROMOTION"},
			},
			want: domain.DecisionIgnore,
		},
		{
			name: "headquarters failure without completion",
			events: []streamEvent{
				{event: "PLACE_ORDER", brand: "HDR"},
				failure(),
			},
			want: domain.DecisionReplay,
		},
		{
			name: "headquarters failure before completion",
			events: []streamEvent{
				{event: "PLACE_ORDER", brand: "HDR"},
				failure(),
				{event: "COMPLETE"},
			},
			want: domain.DecisionIgnore,
		},
		{
			name: "headquarters failure after completion",
			events: []streamEvent{
				{event: "PLACE_ORDER", brand: "HDR"},
				{event: "COMPLETE"},
				failure(),
			},
			want: domain.DecisionReplay,
		},
		{
			name: "completion supersedes failure for non-headquarters too",
			events: []streamEvent{
				{event: "PLACE_ORDER"},
				failure(),
				{event: "COMPLETE"},
			},
			want: domain.DecisionIgnore,
		},
		{
			name: "cancellation supersedes failure",
			events: []streamEvent{
				{event: "PLACE_ORDER", brand: "HDR"},
				{event: "COMPLETE"},
				failure(),
				{event: "CANCELED"},
			},
			want: domain.DecisionIgnore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, replay.Decide(scanStream(tt.events...)))
		})
	}
}

func TestEventScanBrandDetection(t *testing.T) {
	scan := scanStream(
		streamEvent{event: "PLACE_ORDER", brand: "MEAL_KIT"},
		streamEvent{event: "PLACE_ORDER", brand: "MRC"},
	)
	assert.True(t, scan.IsHQ, "MRC is a headquarters brand")

	scan = scanStream(streamEvent{event: "PLACE_ORDER", brand: "MEAL_KIT"})
	assert.False(t, scan.IsHQ)
}
