package metrics

import (
	"time"

	"github.com/rennerdo30/sysproxy/internal/sysproxy"
)

// Operation label values.
const (
	OpGetManual = "get_manual"
	OpSetManual = "set_manual"
	OpGetAuto   = "get_auto"
	OpSetAuto   = "set_auto"
)

type instrumented struct {
	next    sysproxy.Manager
	metrics *Metrics
}

// Instrument wraps next so that every call is counted and timed.
func Instrument(next sysproxy.Manager, m *Metrics) sysproxy.Manager {
	return &instrumented{next: next, metrics: m}
}

func (i *instrumented) GetManualProxy() (sysproxy.ManualProxy, error) {
	start := time.Now()
	p, err := i.next.GetManualProxy()
	i.observe(OpGetManual, start, err)
	return p, err
}

func (i *instrumented) SetManualProxy(p sysproxy.ManualProxy) error {
	start := time.Now()
	err := i.next.SetManualProxy(p)
	i.observe(OpSetManual, start, err)
	if err == nil {
		if p.Enable {
			i.setMode(sysproxy.ModeManual)
		} else {
			i.setMode(sysproxy.ModeDirect)
		}
	}
	return err
}

func (i *instrumented) GetAutoProxy() (sysproxy.AutoProxy, error) {
	start := time.Now()
	p, err := i.next.GetAutoProxy()
	i.observe(OpGetAuto, start, err)
	return p, err
}

func (i *instrumented) SetAutoProxy(p sysproxy.AutoProxy) error {
	start := time.Now()
	err := i.next.SetAutoProxy(p)
	i.observe(OpSetAuto, start, err)
	if err == nil {
		if p.Enable {
			i.setMode(sysproxy.ModeAuto)
		} else {
			i.setMode(sysproxy.ModeDirect)
		}
	}
	return err
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	i.metrics.OperationsTotal.WithLabelValues(op, result).Inc()
	i.metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (i *instrumented) setMode(mode sysproxy.Mode) {
	i.metrics.Mode.Set(float64(mode))
}
