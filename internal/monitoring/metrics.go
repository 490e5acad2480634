package monitoring

import (
	"campusbuddy/internal/database"
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// StatsSource is the part of the data store the monitor reads.
type StatsSource interface {
	Stats(ctx context.Context) (database.Stats, error)
	Ping(ctx context.Context) error
}

type pooled interface {
	DB() *sql.DB
}

// Service holds runtime context for monitoring and reporting.
type Service struct {
	startedAt time.Time
	store     StatsSource
	metrics   *Metrics
	now       func() time.Time
}

type Snapshot struct {
	TimestampUTC          string `json:"timestamp_utc"`
	UptimeSeconds         int64  `json:"uptime_seconds"`
	HTTPActiveRequests    int64  `json:"http_active_requests"`
	HTTPTotalRequests     uint64 `json:"http_total_requests"`
	DBStatus              string `json:"db_status"`
	DBOpenConnections     int    `json:"db_open_connections"`
	DBInUseConnections    int    `json:"db_in_use_connections"`
	DBWaitCount           int64  `json:"db_wait_count"`
	Goroutines            int    `json:"goroutines"`
	GoMemoryAllocBytes    uint64 `json:"go_memory_alloc_bytes"`
	GoMemorySysBytes      uint64 `json:"go_memory_sys_bytes"`
	GoHeapInUseBytes      uint64 `json:"go_heap_in_use_bytes"`
	GoGCCount             uint32 `json:"go_gc_count"`
	UsersTotal            int64  `json:"users_total"`
	EventsTotal           int64  `json:"events_total"`
	CheckinsTotal         int64  `json:"checkins_total"`
	CheckinsAwarded       uint64 `json:"checkins_awarded_since_start"`
	CheckinsAlreadyMarked uint64 `json:"checkins_repeated_since_start"`
}

func NewService(startedAt time.Time, store StatsSource, metrics *Metrics) *Service {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Service{startedAt: startedAt, store: store, metrics: metrics, now: time.Now}
}

// Metrics returns the collectors fed by this service's middleware.
func (s *Service) Metrics() *Metrics {
	return s.metrics
}

func (s *Service) dbState(ctx context.Context) string {
	if err := s.store.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func (s *Service) poolStats() (sql.DBStats, bool) {
	p, ok := s.store.(pooled)
	if !ok {
		return sql.DBStats{}, false
	}
	return p.DB().Stats(), true
}

func (s *Service) StatusText(ctx context.Context) string {
	uptime := s.now().Sub(s.startedAt).Round(time.Second)
	activeHTTP, totalHTTP := s.metrics.httpStats()

	lines := []string{
		"CampusBuddy Server Status",
		fmt.Sprintf("Uptime: %s", uptime),
		fmt.Sprintf("DB: %s", s.dbState(ctx)),
		fmt.Sprintf("HTTP active requests: %d", activeHTTP),
		fmt.Sprintf("HTTP total requests: %d", totalHTTP),
	}
	if pool, ok := s.poolStats(); ok {
		lines = append(lines, fmt.Sprintf("DB open connections: %d", pool.OpenConnections))
	}
	lines = append(lines, fmt.Sprintf("Go goroutines: %d", runtime.NumGoroutine()))
	return strings.Join(lines, "\n")
}

func (s *Service) ConnectionsText() string {
	activeHTTP, totalHTTP := s.metrics.httpStats()
	lines := []string{"CampusBuddy Connections"}
	if stats, ok := s.poolStats(); ok {
		lines = append(lines,
			fmt.Sprintf("DB MaxOpenConnections: %d", stats.MaxOpenConnections),
			fmt.Sprintf("DB OpenConnections: %d", stats.OpenConnections),
			fmt.Sprintf("DB InUse: %d", stats.InUse),
			fmt.Sprintf("DB Idle: %d", stats.Idle),
			fmt.Sprintf("DB WaitCount: %d", stats.WaitCount),
		)
	} else {
		lines = append(lines, "DB: in-memory store")
	}
	return strings.Join(append(lines,
		fmt.Sprintf("HTTP active requests: %d", activeHTTP),
		fmt.Sprintf("HTTP total requests: %d", totalHTTP),
	), "\n")
}

func (s *Service) RuntimeText() string {
	var memory runtime.MemStats
	runtime.ReadMemStats(&memory)

	return strings.Join([]string{
		"CampusBuddy Runtime",
		fmt.Sprintf("Go version: %s", runtime.Version()),
		fmt.Sprintf("CPU cores: %d", runtime.NumCPU()),
		fmt.Sprintf("Goroutines: %d", runtime.NumGoroutine()),
		fmt.Sprintf("Memory alloc: %s", formatBytes(int64(memory.Alloc))),
		fmt.Sprintf("Memory sys: %s", formatBytes(int64(memory.Sys))),
		fmt.Sprintf("Heap in use: %s", formatBytes(int64(memory.HeapInuse))),
		fmt.Sprintf("GC cycles: %d", memory.NumGC),
	}, "\n")
}

func (s *Service) ActivityText(ctx context.Context) string {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return "CampusBuddy Activity\nunavailable: " + err.Error()
	}
	checkins := s.metrics.checkinStats()
	return strings.Join([]string{
		"CampusBuddy Activity",
		fmt.Sprintf("Users total: %d", stats.Users),
		fmt.Sprintf("Events total: %d", stats.Events),
		fmt.Sprintf("Check-ins total: %d", stats.Checkins),
		fmt.Sprintf("Check-ins awarded since start: %d", checkins.Awarded),
		fmt.Sprintf("Repeated check-ins since start: %d", checkins.Repeated),
	}, "\n")
}

func (s *Service) HelpText() string {
	return strings.Join([]string{
		"CampusBuddy monitor endpoints:",
		"/api/monitor/status - server status",
		"/api/monitor/connections - DB and HTTP connections",
		"/api/monitor/runtime - Go runtime",
		"/api/monitor/activity - users, events and check-ins",
		"/api/monitor/snapshot - all of the above as JSON",
		"/api/monitor/all - full report",
	}, "\n")
}

func (s *Service) AllText(ctx context.Context) string {
	return strings.Join([]string{
		s.StatusText(ctx),
		"",
		s.ConnectionsText(),
		"",
		s.RuntimeText(),
		"",
		s.ActivityText(ctx),
	}, "\n")
}

func (s *Service) Snapshot(ctx context.Context) Snapshot {
	activeHTTP, totalHTTP := s.metrics.httpStats()
	checkins := s.metrics.checkinStats()

	var memory runtime.MemStats
	runtime.ReadMemStats(&memory)

	now := s.now()
	snap := Snapshot{
		TimestampUTC:          now.UTC().Format(time.RFC3339),
		UptimeSeconds:         int64(now.Sub(s.startedAt).Seconds()),
		HTTPActiveRequests:    activeHTTP,
		HTTPTotalRequests:     totalHTTP,
		DBStatus:              s.dbState(ctx),
		Goroutines:            runtime.NumGoroutine(),
		GoMemoryAllocBytes:    memory.Alloc,
		GoMemorySysBytes:      memory.Sys,
		GoHeapInUseBytes:      memory.HeapInuse,
		GoGCCount:             memory.NumGC,
		CheckinsAwarded:       checkins.Awarded,
		CheckinsAlreadyMarked: checkins.Repeated,
	}
	if pool, ok := s.poolStats(); ok {
		snap.DBOpenConnections = pool.OpenConnections
		snap.DBInUseConnections = pool.InUse
		snap.DBWaitCount = pool.WaitCount
	}
	if stats, err := s.store.Stats(ctx); err == nil {
		snap.UsersTotal = stats.Users
		snap.EventsTotal = stats.Events
		snap.CheckinsTotal = stats.Checkins
	}

	return snap
}

func formatBytes(value int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(value)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	if unit == 0 {
		return fmt.Sprintf("%d %s", value, units[unit])
	}
	return fmt.Sprintf("%.2f %s", size, units[unit])
}
