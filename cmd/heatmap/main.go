package main

import (
	"fmt"
	"io"
	"log"
	"os"
)

const usage = `usage:
  heatmap render  [-config profile.yaml] [-in calls.csv] [-out heatmap.png] [-dpi n]
  heatmap preview [-config profile.yaml] [-in calls.csv]
  heatmap count   -traces traces.json [-out service_calls.csv]
  heatmap depic   -traces traces.json [-config profile.yaml] [-out depICs.csv]`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("missing command\n%s", usage)
	}

	switch args[0] {
	case "render":
		return runRender(args[1:], stdout)
	case "preview":
		return runPreview(args[1:], stdout)
	case "count":
		return runCount(args[1:], stdout)
	case "depic":
		return runDepIC(args[1:], stdout)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
}
