package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "revision_history"

// Metrics holds the Prometheus collectors for the revision engine.
type Metrics struct {
	RevisionsCreated         prometheus.Counter
	RevisionsCopied          prometheus.Counter
	RevisionCreationSkipped  prometheus.Counter
	EntitlementLookups       *prometheus.CounterVec
	RetentionWindowsResolved *prometheus.CounterVec
	NotificationsRelayed     *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which is what most unit tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RevisionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revisions_created_total",
			Help:      "Revisions created from item mutations.",
		}),
		RevisionsCopied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revisions_copied_total",
			Help:      "Revisions duplicated onto a cloned item.",
		}),
		RevisionCreationSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revision_creation_skipped_total",
			Help:      "Item mutations ignored because the content type is not versioned.",
		}),
		EntitlementLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entitlement_lookups_total",
			Help:      "Feature lookups against the account service by result.",
		}, []string{"result"}),
		RetentionWindowsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retention_window_resolved_total",
			Help:      "Resolved retention windows by window.",
		}, []string{"window"}),
		NotificationsRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_relayed_total",
			Help:      "Revision notifications passed through the Redis relay by direction.",
		}, []string{"direction"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.RevisionsCreated,
			m.RevisionsCopied,
			m.RevisionCreationSkipped,
			m.EntitlementLookups,
			m.RetentionWindowsResolved,
			m.NotificationsRelayed,
		)
	}

	return m
}

func (m *Metrics) ObserveEntitlementLookup(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EntitlementLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRetentionWindow(window string) {
	m.RetentionWindowsResolved.WithLabelValues(window).Inc()
}

// ObserveRelay counts a notification published to or received from the relay.
func (m *Metrics) ObserveRelay(direction string) {
	m.NotificationsRelayed.WithLabelValues(direction).Inc()
}
