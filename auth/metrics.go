package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shibgate",
		Name:      "logins_total",
		Help:      "Federated login attempts by outcome.",
	}, []string{"outcome"})

	accountsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shibgate",
		Name:      "accounts_created_total",
		Help:      "Accounts created on first federated login.",
	})

	groupSyncFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shibgate",
		Name:      "group_sync_failures_total",
		Help:      "Non-fatal group membership sync failures.",
	})
)

// Login outcome label values
const (
	outcomeSuccess   = "success"
	outcomeNoSubject = "no_subject"
	outcomeError     = "error"
)
