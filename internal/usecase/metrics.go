package usecase

// Metrics receives business counters. *metrics.Metrics satisfies it.
type Metrics interface {
	OrderPlaced(orderType string)
	Transition(action string, err error)
	SettingsCache(hit bool)
}

type noopMetrics struct{}

func (noopMetrics) OrderPlaced(string)       {}
func (noopMetrics) Transition(string, error) {}
func (noopMetrics) SettingsCache(bool)       {}

func metricsOrNoop(m Metrics) Metrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
