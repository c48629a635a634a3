package app

import (
	"os"
	"time"

	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/pkg/metrics"
	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.gormDB.
			Where("opt_time < ? ", time.Now().
				Add(-time.Hour*24*365)).Delete(domain.SysOprLog{})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedPurgeStaleCartsTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSystemMonitorTask samples host cpu/mem into the metrics store.
func (a *Application) SchedSystemMonitorTask() {
	percents, err := cpu.Percent(time.Second, false)
	if err == nil && len(percents) > 0 {
		metrics.Gauge(metrics.MetricSystemCPUUsage, percents[0])
	}
	vm, err := mem.VirtualMemory()
	if err == nil {
		metrics.Gauge(metrics.MetricSystemMemUsage, vm.UsedPercent)
	}
}

// SchedProcessMonitorTask samples this process's cpu/mem into the
// metrics store.
func (a *Application) SchedProcessMonitorTask() {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}
	if cpuPercent, err := p.CPUPercent(); err == nil {
		metrics.Gauge(metrics.MetricProcessCPUUsage, cpuPercent)
	}
	if memPercent, err := p.MemoryPercent(); err == nil {
		metrics.Gauge(metrics.MetricProcessMemUsage, float64(memPercent))
	}
}

// SchedPurgeStaleCartsTask removes cart rows older than the configured
// stale window.
func (a *Application) SchedPurgeStaleCartsTask() {
	days := a.GetSettingsInt64Value(SettingsShop, KeyCartStaleDays)
	if days <= 0 {
		days = 90
	}
	cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	res := a.gormDB.Where("created_at < ?", cutoff).Delete(&domain.CartItem{})
	if res.Error != nil {
		zap.L().Error("stale cart purge failed", zap.Error(res.Error))
		return
	}
	if res.RowsAffected > 0 {
		zap.L().Info("purged stale cart rows", zap.Int64("rows", res.RowsAffected))
	}
}
