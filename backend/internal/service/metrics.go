package service

import (
	"github.com/itchan-dev/agenda/shared/middleware/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activitiesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "activities_created_total",
		Help:      "Activities created through the lifecycle manager",
	})

	agendasSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "agendas_sent_total",
		Help:      "Successful send-agenda operations",
	})

	activitiesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "activities_sent_total",
		Help:      "Activities moved to enviado by send-agenda",
	})

	lifecycleRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "activity_rejections_total",
		Help:      "Mutations rejected by validation, by reason",
	}, []string{"reason"})

	attachmentFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "attachment_upload_failures_total",
		Help:      "Attachments that failed to upload or register",
	})
)

func rejected(reason string, err error) error {
	lifecycleRejections.WithLabelValues(reason).Inc()
	return err
}
