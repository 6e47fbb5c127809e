package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}

	switch args[1] {
	case "hash":
		return runHash(args[2:])
	case "verify":
		return runVerify(args[2:])
	case "chain":
		if len(args) >= 3 && args[2] == "verify" {
			return runChainVerify(args[3:])
		}
	}

	usage(args)
	return 1
}

func usage(args []string) {
	name := "custodia"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s hash --in <file>\n", name)
	fmt.Fprintf(os.Stderr, "  %s verify --token <token> --server <url> [--in <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s chain verify --in <events.json>\n", name)
}
