package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister registers every collector of this package with the default registry, once.
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(collectors...)
	})
}
