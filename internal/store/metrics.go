package store

import "github.com/prometheus/client_golang/prometheus"

var (
	// storedQuestions gauges the size of the questions collection.
	storedQuestions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "qa_questions",
		Help: "Number of questions currently held in the store.",
	})

	// storedAnswers gauges the size of the answers collection.
	storedAnswers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "qa_answers",
		Help: "Number of answers currently held in the store.",
	})
)

func init() {
	prometheus.MustRegister(storedQuestions, storedAnswers)
}
