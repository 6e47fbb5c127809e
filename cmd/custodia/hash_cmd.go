package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"custodia/pkg/chainproof"
)

func runHash(args []string) int {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	fs.StringVar(&inPath, "in", "", "document path")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "hash requires --in")
		return 1
	}

	input, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read document: %v\n", err)
		return 1
	}
	fp, err := chainproof.ComputeFingerprint(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compute fingerprint: %v\n", err)
		return 1
	}
	payload, err := json.Marshal(fp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal fingerprint: %v\n", err)
		return 1
	}
	fmt.Println(string(payload))
	return 0
}

func runChainVerify(args []string) int {
	fs := flag.NewFlagSet("chain verify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inPath string
	fs.StringVar(&inPath, "in", "", "chain events JSON path (array)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "chain verify requires --in")
		return 1
	}

	input, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read events: %v\n", err)
		return 1
	}
	var events []chainproof.Event
	if err := json.Unmarshal(input, &events); err != nil {
		fmt.Fprintf(os.Stderr, "decode events: %v\n", err)
		return 1
	}
	if err := chainproof.VerifyEvents(events); err != nil {
		fmt.Fprintf(os.Stderr, "chain verification failed: %v\n", err)
		return 1
	}
	fmt.Printf("chain ok: %d events\n", len(events))
	return 0
}
