package normalize

import (
	"time"

	"go.uber.org/zap"
)

// DefaultAnchorPriceDate is the reference date of the anchor price scheme.
const DefaultAnchorPriceDate = "2025-05-02"

// Sink receives pipeline outcome counts.
type Sink interface {
	RecordParsed(chain string)
	RecordSkipped(chain, reason string)
	GroupSkipped(chain, reason string)
	StoreDropped(chain string)
}

// NopSink discards every observation.
type NopSink struct{}

func (NopSink) RecordParsed(string)         {}
func (NopSink) RecordSkipped(string, string) {}
func (NopSink) GroupSkipped(string, string)  {}
func (NopSink) StoreDropped(string)          {}

// RunContext carries everything one crawl of one chain for one date needs.
// Runs for different dates or chains never share a RunContext.
type RunContext struct {
	Chain           string
	Date            time.Time
	Log             *zap.Logger
	Metrics         Sink
	AnchorPriceDate string
}

// NewRunContext builds a RunContext with a logger scoped to chain and date.
// A nil logger or sink falls back to a no-op.
func NewRunContext(chain string, date time.Time, log *zap.Logger, sink Sink, anchorDate string) *RunContext {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = NopSink{}
	}
	if anchorDate == "" {
		anchorDate = DefaultAnchorPriceDate
	}
	return &RunContext{
		Chain:           chain,
		Date:            date,
		Log:             log.With(zap.String("chain", chain), zap.String("date", date.Format(time.DateOnly))),
		Metrics:         sink,
		AnchorPriceDate: anchorDate,
	}
}
