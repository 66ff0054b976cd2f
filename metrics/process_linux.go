// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

//go:build linux

package metrics

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// ioCollector reports the process I/O counters of /proc/[pid]/io, which the
// default process collector leaves out.
type ioCollector struct {
	path  string
	descs map[string]*prometheus.Desc // keyed by the /proc field name
}

func newIOCollector(namespace string) *ioCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "process", name), help, nil, nil)
	}
	return &ioCollector{
		path: fmt.Sprintf("/proc/%d/io", os.Getpid()),
		descs: map[string]*prometheus.Desc{
			"syscr":       desc("read_syscalls_total", "Total number of read syscalls."),
			"syscw":       desc("write_syscalls_total", "Total number of write syscalls."),
			"read_bytes":  desc("read_bytes_total", "Total number of bytes read from storage."),
			"write_bytes": desc("write_bytes_total", "Total number of bytes written to storage."),
		},
	}
}

func (c *ioCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

func (c *ioCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.read()
	if err != nil {
		return
	}
	for field, value := range stats {
		if d, ok := c.descs[field]; ok {
			ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(value))
		}
	}
}

// read parses "field: value" lines.
func (c *ioCollector) read() (map[string]int64, error) {
	file, err := os.Open(c.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stats := make(map[string]int64)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		value, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			logger.Warn("unable to parse io value", "line", scanner.Text(), "err", err)
			continue
		}
		stats[strings.TrimSuffix(fields[0], ":")] = value
	}
	return stats, scanner.Err()
}

var ioRegistered atomic.Bool

func registerIOCollector(namespace string) {
	if ioRegistered.CompareAndSwap(false, true) {
		if err := prometheus.Register(newIOCollector(namespace)); err != nil {
			logger.Warn("unable to register io collector", "err", err)
		}
	}
}
