// offload_partition runs the offload partitioning pass over serialized graphs.
//
// It reads YAML graph files, replaces backend-supported segments with opaque
// cluster nodes and reports what was clustered. With -write, each rewritten
// graph is saved next to its input as "<name>_partitioned.yaml".
//
// Example:
//
//	offload_partition -feeds=input -fetches=logits model.yaml
package main

import (
	"flag"
	"fmt"
	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/offload/backends"
	_ "github.com/gomlx/offload/backends/cpu"
	"github.com/gomlx/offload/pkg/core/graphdef"
	"github.com/gomlx/offload/pkg/costs"
	"github.com/gomlx/offload/pkg/partition"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
	"os"
	"path/filepath"
	"strings"
)

var (
	flagBackend = flag.String("backend", "", "Backend configuration as \"<name>:<config>\". "+
		"Defaults to the OFFLOAD_BACKEND environment variable, or to the first registered backend.")

	flagFeeds = flag.String("feeds", "", "Comma-separated names of nodes whose outputs the host "+
		"replaces at execution time.")
	flagFetches = flag.String("fetches", "", "Comma-separated outputs the host reads back, "+
		"each as \"node\" or \"node:k\".")
	flagKeep = flag.String("keep", "", "Comma-separated names of nodes the host needs untouched.")
	flagInit = flag.String("init", "", "Comma-separated names of initialization targets.")

	flagMinNodes = flag.Int("min_nodes", partition.DefaultOptions().MinClusterSize,
		"Minimum number of non-trivial nodes a cluster needs to survive.")
	flagDisabledOps = flag.String("disabled_ops", "", "Comma-separated operation types never offloaded, "+
		"regardless of backend capabilities.")
	flagDump = flag.String("dump", "", "Directory receiving per-phase Graphviz dumps of each graph.")

	flagWrite = flag.Bool("write", false, "Write each partitioned graph next to its input as "+
		"\"<name>_partitioned.yaml\".")
	flagReport = flag.Bool("report", true, "Print a partitioning report per graph. Disable for "+
		"batch rewrites, where a progress bar is shown instead.")
)

func main() {
	flag.Parse()
	files := flag.Args()
	if len(files) == 0 {
		klog.Errorf("Missing graph files to partition. See 'offload_partition -help'.")
		os.Exit(1)
	}
	lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())

	backend := must.M1(backends.SetCurrent(*flagBackend))
	options := partition.DefaultOptions()
	options.MinClusterSize = *flagMinNodes
	options.DisabledOps = splitList(*flagDisabledOps)
	options.DumpDir = *flagDump

	var bar *progressbar.ProgressBar
	if len(files) > 1 && !*flagReport {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Partitioning"),
			progressbar.OptionUseANSICodes(true),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("graphs"),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
		)
	}
	for _, file := range files {
		partitionFile(file, backend, options)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		fmt.Println()
	}
}

func partitionFile(file string, backend backends.Backend, options partition.Options) {
	def := must.M1(graphdef.FromYAML(must.M1(os.ReadFile(file))))
	optimizer := partition.NewOptimizer(options)
	optimizer.Clusters = partition.NewClusterManager()
	optimizer.Estimator = costs.NewAnalytical()
	out := must.M1(optimizer.Optimize(&partition.Item{
		Id:       file,
		GraphDef: def,
		Feeds:    splitList(*flagFeeds),
		Fetches:  splitList(*flagFetches),
		KeepOps:  splitList(*flagKeep),
		InitOps:  splitList(*flagInit),
	}))

	if *flagReport {
		report(file, backend, def, out, optimizer.Clusters)
	}
	if *flagWrite {
		outPath := partitionedPath(file)
		must.M(os.WriteFile(outPath, must.M1(out.ToYAML()), 0644))
		if *flagReport {
			fmt.Printf("Wrote %s\n", outPath)
		}
	}
}

// partitionedPath is where -write saves the rewritten graph: the input path with
// "_partitioned" appended before the extension.
func partitionedPath(file string) string {
	ext := filepath.Ext(file)
	return strings.TrimSuffix(file, ext) + "_partitioned" + ext
}

func splitList(value string) []string {
	var list []string
	for _, element := range strings.Split(value, ",") {
		if element = strings.TrimSpace(element); element != "" {
			list = append(list, element)
		}
	}
	return list
}
