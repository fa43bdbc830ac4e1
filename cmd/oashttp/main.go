package main

import (
	"fmt"
	"os"

	"github.com/erraggy/oashttp"
	"github.com/erraggy/oashttp/cmd/oashttp/commands"
)

var commandNames = []string{"routes", "serve", "version", "help"}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	var err error
	switch command {
	case "version", "-v", "--version":
		fmt.Printf("oashttp v%s\n", oashttp.Version())
		fmt.Println(oashttp.BuildInfo())
	case "help", "-h", "--help":
		printUsage()
	case "routes":
		err = commands.HandleRoutes(os.Args[2:])
	case "serve":
		err = commands.HandleServe(os.Args[2:])
	default:
		commands.Writef(os.Stderr, "Unknown command: %s\n", command)
		if s := suggestCommand(command); s != "" {
			commands.Writef(os.Stderr, "Did you mean: %s?\n", s)
		}
		commands.Writef(os.Stderr, "\n")
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		commands.Writef(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	commands.Writef(os.Stdout, `oashttp - serve OpenAPI 3.x operations as validated HTTP routes

Usage:
  oashttp <command> [flags] <file|->

Commands:
  routes     Compile every operation and print the route table
  serve      Serve a validating mock of the document
  version    Show version information
  help       Show this help message

Run 'oashttp <command> --help' for command flags.
`)
}

// suggestCommand returns the known command closest to input, or "" when none is
// within an edit distance of 2.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := editDistance(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
