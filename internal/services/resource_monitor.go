package services

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

// ResourceMonitor samples host and runtime resource usage around the
// CPU-bound simulation stages. Purely observational.
type ResourceMonitor struct {
	logger *logrus.Logger
}

// NewResourceMonitor creates a new resource monitor.
func NewResourceMonitor(logger *logrus.Logger) *ResourceMonitor {
	return &ResourceMonitor{logger: logger}
}

// LogSnapshot logs one CPU/memory/goroutine snapshot tagged with the stage
// name. Sampling errors are logged and swallowed; monitoring never affects
// the pipeline.
func (rm *ResourceMonitor) LogSnapshot(ctx context.Context, stage string) {
	fields := logrus.Fields{
		"stage":      stage,
		"goroutines": runtime.NumGoroutine(),
	}

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		fields["cpu_percent"] = percents[0]
	} else if err != nil {
		rm.logger.WithError(err).Debug("CPU sampling failed")
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		fields["mem_used_percent"] = vm.UsedPercent
	} else {
		rm.logger.WithError(err).Debug("Memory sampling failed")
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	fields["heap_alloc"] = ms.HeapAlloc

	rm.logger.WithFields(fields).Debug("Resource snapshot")
}
