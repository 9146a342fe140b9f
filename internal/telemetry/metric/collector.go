package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/ledwall-go/internal/core/domain"
)

// ModeCollector reports the current display mode as
// ledwall_display_mode{mode="slot",slot="2"} 1.
type ModeCollector struct {
	desc *prometheus.Desc
	mode func() domain.Mode
}

// NewModeCollector creates a collector reading the mode from fn.
func NewModeCollector(fn func() domain.Mode) *ModeCollector {
	return &ModeCollector{
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "display", "mode"),
			"Current display mode; always 1, labelled with the mode",
			[]string{"mode", "slot"}, nil,
		),
		mode: fn,
	}
}

// Describe implements prometheus.Collector.
func (c *ModeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *ModeCollector) Collect(ch chan<- prometheus.Metric) {
	m := c.mode()
	slot := ""
	if m.Kind == domain.ModeSlot {
		slot = strconv.Itoa(m.Slot)
	}
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, 1, m.Kind.String(), slot)
}
