package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Each file in this package declares its collectors and enqueues them from
// init(); MustRegister flushes the queue into the default registry once, from
// main, so tests importing the package never double-register.

var (
	registerOnce sync.Once
	pending      []prometheus.Collector
)

func register(cs ...prometheus.Collector) { pending = append(pending, cs...) }

func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(pending...)
		pending = nil
	})
}

// norm keeps label values in a single canonical form.
func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
