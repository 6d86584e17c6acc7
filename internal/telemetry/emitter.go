package telemetry

import (
	"errors"

	"github.com/wethinkt/go-nudge/internal/nudgelog"
)

// NopEmitter drops everything. The default when telemetry is off.
type NopEmitter struct{}

func (NopEmitter) Emit(Event) error { return nil }

// LogEmitter writes events to the engine log. Useful on its own for
// debugging and as a local tail alongside a collector.
type LogEmitter struct{}

func (LogEmitter) Emit(ev Event) error {
	nudgelog.Log.Info("Telemetry event",
		"name", ev.Name,
		"id", ev.ID,
		"passive", ev.Passive,
	)
	return nil
}

// MultiEmitter fans an event out to several emitters. All of them see the
// event; errors are joined.
type MultiEmitter []Emitter

func (m MultiEmitter) Emit(ev Event) error {
	var errs []error
	for _, e := range m {
		if err := e.Emit(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
