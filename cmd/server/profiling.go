package main

import (
	"fmt"
	"log/slog"

	"github.com/grafana/pyroscope-go"
)

// slogAdapter routes pyroscope's printf-style logs into slog
type slogAdapter struct{ log *slog.Logger }

func (a slogAdapter) Infof(format string, args ...any) {
	a.log.Info(fmt.Sprintf(format, args...), "component", "pyroscope")
}

func (a slogAdapter) Debugf(format string, args ...any) {
	a.log.Debug(fmt.Sprintf(format, args...), "component", "pyroscope")
}

func (a slogAdapter) Errorf(format string, args ...any) {
	a.log.Error(fmt.Sprintf(format, args...), "component", "pyroscope")
}

// startProfiling pushes continuous profiles to addr. An empty addr turns
// profiling off and the returned stop func does nothing.
func startProfiling(addr, backend string, log *slog.Logger) (func(), error) {
	if addr == "" {
		return func() {}, nil
	}

	p, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "notedash",
		ServerAddress:   addr,
		Logger:          slogAdapter{log: log},
		Tags:            map[string]string{"backend": backend},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}

	log.Info("continuous profiling enabled", "server", addr)
	return func() {
		if err := p.Stop(); err != nil {
			log.Warn("pyroscope stop", "err", err)
		}
	}, nil
}
