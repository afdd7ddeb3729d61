// Package metrics defines and registers all custom Prometheus metrics for
// kernel-api. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics register with the default Prometheus registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kernel"

// ── Login metrics ─────────────────────────────────────────────────────────────

// LoginsTotal counts finished login attempts.
// Labels:
//   - provider: "google", "github", ...
//   - outcome: "completed", "rejected" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login callbacks, by provider and outcome.",
	},
	[]string{"provider", "outcome"},
)

// ProviderExchangeDuration measures code exchange plus profile fetch.
var ProviderExchangeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_exchange_duration_seconds",
		Help:      "Duration of the authorization-code exchange with the identity provider.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"provider"},
)

// CredentialRejectionsTotal counts protected requests turned away.
// Label:
//   - reason: "missing", "invalid_signature", "expired" or "malformed"
var CredentialRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_rejections_total",
		Help:      "Total number of requests rejected during credential verification.",
	},
	[]string{"reason"},
)

// ── Provisioning metrics ──────────────────────────────────────────────────────

// ResourcesProvisionedTotal counts per-category provisioning outcomes.
// Labels:
//   - category: "projects", "tasks", ...
//   - result: "created", "existing" or "failed"
var ResourcesProvisionedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resources_provisioned_total",
		Help:      "Total number of per-user resource checks, by category and result.",
	},
	[]string{"category", "result"},
)

// ProvisioningDegradedTotal counts logins that completed with at least one
// category left unprovisioned.
var ProvisioningDegradedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provisioning_degraded_total",
		Help:      "Total number of logins completed with partially failed provisioning.",
	},
)

// ── Parser metrics ────────────────────────────────────────────────────────────

// ArticleParsesTotal counts parse-url requests.
// Label:
//   - result: "ok", "fetch_failed" or "extract_failed"
var ArticleParsesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "article_parses_total",
		Help:      "Total number of parse-url requests, by result.",
	},
	[]string{"result"},
)
