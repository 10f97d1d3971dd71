package led

import "github.com/smazurov/ledcycle/internal/metrics"

// instrumented records every level written through it in Prometheus.
type instrumented struct {
	Output
}

// Instrumented wraps out so that each SetLevel call is exported as a metric.
func Instrumented(out Output) Output {
	return &instrumented{Output: out}
}

func (i *instrumented) SetLevel(channel int, level uint8) {
	metrics.SetChannelLevel(channel, level)
	i.Output.SetLevel(channel, level)
}
