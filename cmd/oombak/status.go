package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shirou/gopsutil/mem"
)

// renderStatus reports host memory headroom, the one piece of host
// state this front end surfaces directly rather than through the
// dispatcher (it has nothing to do with the loaded DUT).
func renderStatus() string {
	stat, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Sprintf("%s: could not read host memory: %v\n", titled("status"), err)
	}

	t := table.NewWriter()
	t.SetTitle("Host Memory")
	t.AppendHeader(table.Row{"Total", "Available", "Used %"})
	t.AppendRow(table.Row{
		humanBytes(stat.Total),
		humanBytes(stat.Available),
		fmt.Sprintf("%.1f%%", stat.UsedPercent),
	})
	return t.Render() + "\n"
}

func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
