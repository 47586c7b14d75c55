// Package metrics holds the domain counters exported on the metrics endpoint.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	AuditRecordFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_record_failures_total",
		Help: "Audit entries that could not be persisted.",
	})

	NotificationDispatchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatch_failures_total",
			Help: "Notifications that could not be handed to the mail provider.",
		},
		[]string{"template"},
	)

	InvitationRedemptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invitation_redemptions_total",
			Help: "Invitation redemption attempts by result.",
		},
		[]string{"result"},
	)

	AuthorizationDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authorization_denials_total",
			Help: "Requests rejected by the permission gate.",
		},
		[]string{"reason"},
	)

	registerOnce sync.Once
)

// Register adds the domain collectors to reg. Safe to call more than once.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			AuditRecordFailures,
			NotificationDispatchFailures,
			InvitationRedemptions,
			AuthorizationDenials,
		)
	})
}
