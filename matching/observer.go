package matching

import (
	"github.com/apex/log"

	"pricematch/models"
)

// EventType classifies the structured events the engine emits while
// matching. Events replace inline tracing: the engine never logs, the
// observer decides what to do with what happened.
type EventType string

const (
	// EventMatch: a comparison record was matched; Tier is set.
	EventMatch EventType = "match"
	// EventSkippedNoKey: the record produced an empty model key and
	// was excluded before any tier ran.
	EventSkippedNoKey EventType = "skipped_no_key"
	// EventNoMatch: all three tiers came up empty.
	EventNoMatch EventType = "no_match"
	// EventSignificanceVeto: a model-inclusion candidate was rejected
	// because the token difference was identity-changing.
	EventSignificanceVeto EventType = "significance_veto"
	// EventColorFilterEmptied: the color filter removed every model
	// token and the pre-filter model was used instead.
	EventColorFilterEmptied EventType = "color_filter_emptied"
)

// Event is a single structured observation from a matching run.
type Event struct {
	Type   EventType
	Record models.ProductRecord
	Key    models.NormalizedKey
	Tier   models.MatchTier
	// Tokens carries the vetoing token difference for
	// EventSignificanceVeto.
	Tokens []string
}

// Observer receives engine events. Implementations must be safe for
// concurrent use: queries run on a worker pool.
type Observer interface {
	Observe(Event)
}

// NopObserver discards every event. It is the engine default.
type NopObserver struct{}

func (NopObserver) Observe(Event) {}

// LogObserver writes events as structured log lines.
type LogObserver struct {
	Logger log.Interface
}

// NewLogObserver builds a LogObserver on the package-level apex logger.
func NewLogObserver() *LogObserver {
	return &LogObserver{Logger: log.Log}
}

func (o *LogObserver) Observe(e Event) {
	entry := o.Logger.WithFields(log.Fields{
		"event":  string(e.Type),
		"name":   e.Record.Name,
		"source": e.Record.SourceURL,
	})

	switch e.Type {
	case EventMatch:
		entry.WithField("tier", string(e.Tier)).Debug("matched")
	case EventSignificanceVeto:
		entry.WithField("tokens", e.Tokens).Debug("candidate vetoed")
	case EventSkippedNoKey:
		entry.Debug("skipped: no usable key")
	case EventColorFilterEmptied:
		entry.Debug("color filter emptied model, kept pre-filter form")
	default:
		entry.Debug("no match")
	}
}
