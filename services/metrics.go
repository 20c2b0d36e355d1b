package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motorent_reservation_transitions_total",
			Help: "Reservation status transitions by target status and outcome",
		},
		[]string{"to", "outcome"},
	)

	sagaCompensations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motorent_reservation_compensations_total",
			Help: "Compensating actions run after a failed reservation transition step",
		},
		[]string{"step", "outcome"},
	)

	emailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motorent_emails_total",
			Help: "Outbound emails by template and outcome",
		},
		[]string{"template", "outcome"},
	)

	otpVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motorent_otp_verifications_total",
			Help: "OTP verification attempts by result",
		},
		[]string{"result"},
	)

	catalogCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "motorent_catalog_cache_total",
			Help: "Motorcycle catalog cache lookups by result",
		},
		[]string{"result"},
	)
)
