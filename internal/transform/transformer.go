package transform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventetl/internal/engine"
	"eventetl/internal/geo"
	"eventetl/internal/useragent"
	"eventetl/pkg/contracts/domain"
)

// Stage names, used for spans and the stage metric label
const (
	StageName         = "etl.transform"
	stageDerive       = "etl.transform.derive"
	stageIdentify     = "etl.transform.identify"
	stageGeo          = "etl.transform.geo"
	stagePlaces       = "etl.transform.places"
	stageJoin         = "etl.transform.join"
	stageSort         = "etl.transform.sort"
	stageCompleteness = "etl.transform.filter"
)

// Metric labels for row-level degradations and drops
const (
	FieldTimestamp    = "timestamp"
	FieldGeography    = "geography"
	FieldClient       = "client"
	ReasonNullCountry = "null_country"
)

// Options configures a Transformer. Nil collaborators fall back to
// useragent.Classify and a Locator that resolves nothing.
type Options struct {
	Classifier useragent.Classifier
	Locator    geo.Locator
	Logger     *slog.Logger
}

// Transformer enriches raw events
type Transformer struct {
	classify useragent.Classifier
	locator  geo.Locator
	logger   *slog.Logger
}

// New creates a Transformer
func New(opts Options) *Transformer {
	if opts.Classifier == nil {
		opts.Classifier = useragent.Classify
	}
	if opts.Locator == nil {
		opts.Locator = geo.LocatorFunc(func(string) string { return geo.Sentinel })
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Transformer{
		classify: opts.Classifier,
		locator:  opts.Locator,
		logger:   opts.Logger.With(slog.String("component", "transform")),
	}
}

// staged is a raw event after timestamp fusion, client classification and
// address splitting
type staged struct {
	Timestamp *time.Time
	UserID    string
	URL       string
	OS        *string
	Browser   *string
	IP1       *string
	IP2       *string
}

// identified is a staged row carrying its event id and geography label
type identified struct {
	staged
	EventID int64
	Geo     string
}

// placed is one row of the geography side table
type placed struct {
	ID      int64
	Country *string
	City    *string
}

// derive is the pure per-row step ahead of identity assignment
func (t *Transformer) derive(raw domain.RawEvent, loc *time.Location) staged {
	client := t.classify(raw.UserAgent)
	os, browser := SplitInto(&client, useragent.Separator)
	ip1, ip2 := SplitInto(nullable(raw.IP), ",")

	return staged{
		Timestamp: FuseTimestamp(raw.Date, raw.Time, loc),
		UserID:    raw.UserID,
		URL:       raw.URL,
		OS:        os,
		Browser:   browser,
		IP1:       ip1,
		IP2:       ip2,
	}
}

// place splits a geography label. Sentinel leaves country and city nil.
func place(id int64, label string) placed {
	if label == geo.Sentinel {
		return placed{ID: id}
	}
	country, city := SplitInto(&label, geo.Separator)
	return placed{ID: id, Country: country, City: city}
}

// Transform runs the enrichment pipeline:
//
//  1. fuse date and time, classify the client, split the address pair
//  2. assign each row a monotonic event id and resolve ip1 to a geography label
//  3. derive the {id, country, city} side table and inner-join it on eventID == id
//  4. sort ascending by event id and drop rows without a country
//
// The output is sorted by EventID, ids are unique, and every row has a country.
func (t *Transformer) Transform(ctx context.Context, sess *engine.Session, raw *engine.Table[domain.RawEvent]) (*engine.Table[domain.EnrichedEvent], error) {
	ctx, end := sess.StartStage(ctx, StageName)

	out, err := t.run(ctx, sess, raw)
	if err != nil {
		end(0, err)
		return nil, fmt.Errorf("transform: %w", err)
	}

	end(out.Len(), nil)
	return out, nil
}

func (t *Transformer) run(ctx context.Context, sess *engine.Session, raw *engine.Table[domain.RawEvent]) (*engine.Table[domain.EnrichedEvent], error) {
	loc := sess.Location()
	metrics := sess.Metrics()

	stepCtx, end := sess.StartStage(ctx, stageDerive)
	derived, err := engine.Map(stepCtx, sess, raw, func(r domain.RawEvent) staged {
		return t.derive(r, loc)
	})
	if err != nil {
		end(0, err)
		return nil, err
	}
	end(derived.Len(), nil)

	stepCtx, end = sess.StartStage(ctx, stageIdentify)
	events, err := engine.WithMonotonicID(stepCtx, sess, derived, func(id int64, s staged) identified {
		return identified{staged: s, EventID: id}
	})
	if err != nil {
		end(0, err)
		return nil, err
	}
	end(events.Len(), nil)

	stepCtx, end = sess.StartStage(ctx, stageGeo)
	located, err := engine.Map(stepCtx, sess, events, func(e identified) identified {
		e.Geo = geo.Sentinel
		if e.IP1 != nil {
			e.Geo = t.locator.Lookup(*e.IP1)
		}
		return e
	})
	if err != nil {
		end(0, err)
		return nil, err
	}
	end(located.Len(), nil)

	// the side table takes its own ids over the same partitioning, so they
	// line up with the event ids row for row
	stepCtx, end = sess.StartStage(ctx, stagePlaces)
	places, err := engine.WithMonotonicID(stepCtx, sess, located, func(id int64, e identified) placed {
		return place(id, e.Geo)
	})
	if err != nil {
		end(0, err)
		return nil, err
	}
	end(places.Len(), nil)

	stepCtx, end = sess.StartStage(ctx, stageJoin)
	joined, err := engine.Join(stepCtx, sess, located, places,
		func(e identified) int64 { return e.EventID },
		func(p placed) int64 { return p.ID },
		enrich,
	)
	if err != nil {
		end(0, err)
		return nil, err
	}
	end(joined.Len(), nil)

	stepCtx, end = sess.StartStage(ctx, stageSort)
	sorted, err := engine.SortByKey(stepCtx, sess, joined, func(e domain.EnrichedEvent) int64 { return e.EventID })
	if err != nil {
		end(0, err)
		return nil, err
	}
	end(sorted.Len(), nil)

	stepCtx, end = sess.StartStage(ctx, stageCompleteness)
	complete, err := engine.Filter(stepCtx, sess, sorted, func(e domain.EnrichedEvent) bool {
		return e.Country != nil
	})
	if err != nil {
		end(0, err)
		return nil, err
	}
	end(complete.Len(), nil)

	stats, err := t.degradations(ctx, sess, derived, places)
	if err != nil {
		return nil, err
	}
	stats.Dropped = sorted.Len() - complete.Len()

	metrics.RecordDegradation(ctx, FieldTimestamp, stats.NullTimestamps)
	metrics.RecordDegradation(ctx, FieldClient, stats.UnknownClients)
	metrics.RecordDegradation(ctx, FieldGeography, stats.Unlocated)
	metrics.RecordDropped(ctx, ReasonNullCountry, stats.Dropped)

	t.logger.InfoContext(ctx, "Events transformed",
		slog.Int("input_rows", raw.Len()),
		slog.Int("output_rows", complete.Len()),
		slog.Int("null_timestamps", stats.NullTimestamps),
		slog.Int("unknown_clients", stats.UnknownClients),
		slog.Int("unlocated", stats.Unlocated),
		slog.Int("dropped", stats.Dropped))

	return complete, nil
}

// enrich projects a joined pair onto the output columns
func enrich(e identified, p placed) domain.EnrichedEvent {
	return domain.EnrichedEvent{
		EventID:   e.EventID,
		Timestamp: e.Timestamp,
		UserID:    e.UserID,
		URL:       e.URL,
		OS:        deref(e.OS),
		Browser:   deref(e.Browser),
		Country:   p.Country,
		City:      p.City,
	}
}

// runStats counts rows that degraded during a transform
type runStats struct {
	NullTimestamps int
	UnknownClients int
	Unlocated      int
	Dropped        int
}

// degradations counts degraded rows from stage outputs
func (t *Transformer) degradations(ctx context.Context, sess *engine.Session, derived *engine.Table[staged], places *engine.Table[placed]) (runStats, error) {
	var stats runStats

	nullTimestamps, err := engine.CountBy(ctx, sess, derived, func(s staged) bool { return s.Timestamp == nil })
	if err != nil {
		return stats, err
	}
	unknownClients, err := engine.CountBy(ctx, sess, derived, func(s staged) bool {
		return deref(s.OS) == useragent.UnknownOS && deref(s.Browser) == useragent.UnknownBrowser
	})
	if err != nil {
		return stats, err
	}
	unlocated, err := engine.CountBy(ctx, sess, places, func(p placed) bool { return p.Country == nil })
	if err != nil {
		return stats, err
	}

	stats.NullTimestamps = int(nullTimestamps[true])
	stats.UnknownClients = int(unknownClients[true])
	stats.Unlocated = int(unlocated[true])
	return stats, nil
}
