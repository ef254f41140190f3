package commands

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/fivetwenty-io/psclient/pkg/pageseeder"
)

var (
	metricsMu sync.Mutex
	// requestMetrics is set by the first client built with --metrics.
	requestMetrics *pageseeder.MetricsCollector
)

// requestInterceptors builds the interceptor chain selected by the global
// flags. It returns nil when no flag asks for one.
func requestInterceptors(logger pageseeder.Logger, debug, metrics bool) *pageseeder.InterceptorChain {
	if !debug && !metrics {
		return nil
	}

	chain := pageseeder.NewInterceptorChain()

	if debug && logger != nil {
		chain.AddRequestInterceptor(pageseeder.LoggingInterceptor(logger))
		chain.AddResponseInterceptor(pageseeder.LoggingResponseInterceptor(logger))
	}

	if metrics {
		collector := metricsCollector()
		chain.AddRequestInterceptor(pageseeder.MetricsRequestInterceptor(collector))
		chain.AddResponseInterceptor(pageseeder.MetricsResponseInterceptor(collector))
	}

	return chain
}

func metricsCollector() *pageseeder.MetricsCollector {
	metricsMu.Lock()
	defer metricsMu.Unlock()

	if requestMetrics == nil {
		requestMetrics = pageseeder.NewMetricsCollector()
	}

	return requestMetrics
}

// ReportMetrics writes a table of the requests made with --metrics. Nothing
// is written when no request was recorded.
func ReportMetrics(w io.Writer) error {
	metricsMu.Lock()
	collector := requestMetrics
	metricsMu.Unlock()

	if collector == nil {
		return nil
	}

	all := collector.All()
	if len(all) == 0 {
		return nil
	}

	endpoints := make([]string, 0, len(all))
	for endpoint := range all {
		endpoints = append(endpoints, endpoint)
	}

	sort.Strings(endpoints)

	rows := make([][]string, 0, len(endpoints))
	for _, endpoint := range endpoints {
		m := all[endpoint]
		rows = append(rows, []string{
			endpoint,
			strconv.FormatInt(m.TotalRequests, 10),
			strconv.FormatInt(m.TotalErrors, 10),
			m.AverageLatency.String(),
		})
	}

	err := renderRows(w, []string{"Endpoint", "Requests", "Errors", "Avg Latency"}, rows)
	if err != nil {
		return fmt.Errorf("failed to report metrics: %w", err)
	}

	return nil
}
