package main

import (
	"fmt"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/offload/backends"
	"github.com/gomlx/offload/pkg/core/graphdef"
	"github.com/gomlx/offload/pkg/costs"
	"github.com/gomlx/offload/pkg/partition"
	"k8s.io/klog/v2"
	"time"
)

func report(file string, backend backends.Backend, in, out *graphdef.GraphDef,
	clusters *partition.ClusterManager) {
	fmt.Println(titleStyle.Render(file))

	var offloaded int
	for _, id := range clusters.Ids() {
		nodes, _, _ := bodyCounts(clusters.Get(id))
		offloaded += nodes
	}

	table := newPlainTable(lipgloss.Right, lipgloss.Left)
	table.Row("backend", fmt.Sprintf("%s %s", backend.Name(), backend.Version()))
	table.Row("nodes before", humanize.Comma(int64(len(in.Nodes))))
	table.Row("nodes after", humanize.Comma(int64(len(out.Nodes))))
	table.Row("nodes offloaded", humanize.Comma(int64(offloaded)))
	table.Row("clusters", humanize.Comma(int64(clusters.Count())))
	fmt.Println(table.Render())

	if clusters.Count() == 0 {
		return
	}
	estimator := costs.NewAnalytical()
	clustersTable := newPlainTable(lipgloss.Right)
	clustersTable.Headers("Cluster", "Nodes", "Args", "Results", "Est. Compute", "Est. Memory")
	for _, id := range clusters.Ids() {
		body := clusters.Get(id)
		nodes, args, results := bodyCounts(body)
		row := []string{
			fmt.Sprintf("%d", id),
			humanize.Comma(int64(nodes)),
			humanize.Comma(int64(args)),
			humanize.Comma(int64(results)),
			"",
			"",
		}
		if g, err := body.Build(); err == nil {
			if cost, err := estimator.Predict(g); err == nil {
				row[4] = cost.Compute.Round(time.Microsecond).String()
				row[5] = humanize.IBytes(cost.Memory)
			}
		} else {
			klog.Errorf("Could not rebuild the body of cluster %d: %v", id, err)
		}
		clustersTable.Row(row...)
	}
	fmt.Println(clustersTable.Render())
}

// bodyCounts splits a cluster body's node count into operations, arguments and
// results.
func bodyCounts(body *graphdef.GraphDef) (nodes, args, results int) {
	for _, node := range body.Nodes {
		switch node.Op {
		case partition.OpClusterArg:
			args++
		case partition.OpClusterRetval:
			results++
		default:
			nodes++
		}
	}
	return
}
