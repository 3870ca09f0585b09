package chat

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CommandStats счетчики одной команды
type CommandStats struct {
	Command             string        `json:"command"`
	Invocations         int64         `json:"invocations"`
	Failures            int64         `json:"failures"`
	AverageResponseTime time.Duration `json:"average_response_time"`
}

// SimpleMetrics простая реализация метрик для мониторинга
type SimpleMetrics struct {
	mu sync.RWMutex

	commands map[string]*commandCounters
}

type commandCounters struct {
	invocations      int64
	failures         int64
	responseTimesSum time.Duration
}

func NewSimpleMetrics() *SimpleMetrics {
	return &SimpleMetrics{commands: make(map[string]*commandCounters)}
}

func (m *SimpleMetrics) Record(command string, responseTime time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.commands[command]
	if !ok {
		c = &commandCounters{}
		m.commands[command] = c
	}

	c.invocations++
	if failed {
		c.failures++
	}
	c.responseTimesSum += responseTime
}

// GetStats снимок по всем командам, отсортированный по имени
func (m *SimpleMetrics) GetStats() []CommandStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make([]CommandStats, 0, len(m.commands))
	for name, c := range m.commands {
		s := CommandStats{Command: name, Invocations: c.invocations, Failures: c.failures}
		if c.invocations > 0 {
			s.AverageResponseTime = c.responseTimesSum / time.Duration(c.invocations)
		}
		stats = append(stats, s)
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Command < stats[j].Command })
	return stats
}

func (s *Service) recordMetrics(command string, responseTime time.Duration, err error) {
	s.metrics.Record(command, responseTime, err != nil)
	s.logger.Debug("Command metrics",
		zap.String("command", command),
		zap.Duration("response_time", responseTime),
		zap.Bool("failed", err != nil),
	)
}
