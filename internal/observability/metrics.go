package observability

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/catalog"
	"github.com/cory-johannsen/arena/internal/game/draft"
)

// Metric names.
const (
	MetricDraftsTotal     = "arena_upgrade_drafts_total"
	MetricCardsTotal      = "arena_upgrade_cards_total"
	MetricPicksTotal      = "arena_upgrade_picks_total"
	MetricRerollsTotal    = "arena_upgrade_rerolls_total"
	MetricSkipsTotal      = "arena_upgrade_skips_total"
	MetricRejectionsTotal = "arena_upgrade_rejections_total"
)

// Metrics counts upgrade menu activity. It satisfies upgrade.Recorder.
type Metrics struct {
	drafts     prometheus.Counter
	cards      *prometheus.CounterVec
	picks      *prometheus.CounterVec
	rerolls    prometheus.Counter
	skips      prometheus.Counter
	rejections *prometheus.CounterVec
}

// NewMetrics registers the upgrade counters on reg.
//
// Precondition: reg is non-nil and has no upgrade counters registered yet.
// Postcondition: Returns Metrics whose counters are all registered on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		drafts: f.NewCounter(prometheus.CounterOpts{
			Name: MetricDraftsTotal,
			Help: "Number of card drafts shown, including rerolls.",
		}),
		cards: f.NewCounterVec(prometheus.CounterOpts{
			Name: MetricCardsTotal,
			Help: "Number of cards drafted by rarity.",
		}, []string{"rarity"}),
		picks: f.NewCounterVec(prometheus.CounterOpts{
			Name: MetricPicksTotal,
			Help: "Number of cards picked by item kind.",
		}, []string{"kind"}),
		rerolls: f.NewCounter(prometheus.CounterOpts{
			Name: MetricRerollsTotal,
			Help: "Number of successful rerolls.",
		}),
		skips: f.NewCounter(prometheus.CounterOpts{
			Name: MetricSkipsTotal,
			Help: "Number of skipped level-ups.",
		}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRejectionsTotal,
			Help: "Number of rejected menu actions by reason.",
		}, []string{"reason"}),
	}
}

// Drafted counts one draft and its cards.
func (m *Metrics) Drafted(cards []draft.Card) {
	m.drafts.Inc()
	for _, c := range cards {
		m.cards.WithLabelValues(string(c.Rarity)).Inc()
	}
}

// Picked counts one pick.
func (m *Metrics) Picked(kind catalog.Kind) { m.picks.WithLabelValues(string(kind)).Inc() }

// Rerolled counts one reroll.
func (m *Metrics) Rerolled() { m.rerolls.Inc() }

// Skipped counts one skip.
func (m *Metrics) Skipped() { m.skips.Inc() }

// Rejected counts one rejected action.
func (m *Metrics) Rejected(reason string) { m.rejections.WithLabelValues(reason).Inc() }

// LogSnapshot gathers g and logs every counter sample at info level, one line
// per metric family.
func LogSnapshot(logger *zap.Logger, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	for _, mf := range families {
		fields := make([]zap.Field, 0, len(mf.GetMetric()))
		for _, m := range mf.GetMetric() {
			key := "total"
			for _, lp := range m.GetLabel() {
				key = lp.GetName() + "=" + lp.GetValue()
			}
			fields = append(fields, zap.Float64(key, m.GetCounter().GetValue()))
		}
		logger.Info(mf.GetName(), fields...)
	}
	return nil
}
