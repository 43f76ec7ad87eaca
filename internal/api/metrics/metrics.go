// Package metrics defines and registers all custom Prometheus metrics for the
// account service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package init
// via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// ── Account metrics ──────────────────────────────────────────────────────────

// RegistrationsTotal counts signup attempts.
// Label:
//   - result: "created", "conflict" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "not_found", "unverified_purged" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AccountsDeletedTotal counts removed accounts.
// Label:
//   - reason: "admin" or "unverified_login"
var AccountsDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_deleted_total",
		Help:      "Total number of deleted accounts, by reason.",
	},
	[]string{"reason"},
)

// ── OTP metrics ──────────────────────────────────────────────────────────────

// OTPIssuedTotal counts issued one-time codes.
// Labels:
//   - purpose: "email_verification" or "password_reset"
//   - result: "sent" or "error"
var OTPIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_issued_total",
		Help:      "Total number of one-time codes issued, by purpose and delivery result.",
	},
	[]string{"purpose", "result"},
)

// OTPVerificationsTotal counts code verification attempts.
// Labels:
//   - purpose: "email_verification" or "password_reset"
//   - result: "valid", "invalid" or "error"
var OTPVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_verifications_total",
		Help:      "Total number of one-time code verifications, by purpose and result.",
	},
	[]string{"purpose", "result"},
)

// PasswordChangesTotal counts successful password writes.
// Label:
//   - kind: "update" (logged in) or "reset" (forgot-password flow)
var PasswordChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_changes_total",
		Help:      "Total number of password changes, by kind.",
	},
	[]string{"kind"},
)
