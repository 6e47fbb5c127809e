package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

type verifyResult struct {
	SealCode       string `json:"seal_code"`
	Signer         string `json:"signer"`
	SignerRole     string `json:"signer_role"`
	SignedAt       string `json:"signed_at"`
	AuthorizedRole string `json:"authorized_role"`
	Algorithm      string `json:"algorithm"`
	Digest         string `json:"digest"`
	ContentMatches *bool  `json:"content_matches,omitempty"`
	Chain          []struct {
		Seq       int64  `json:"seq"`
		EventType string `json:"event_type"`
		Digest    string `json:"digest"`
	} `json:"chain"`
}

func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var token string
	var server string
	var inPath string
	fs.StringVar(&token, "token", "", "verification token")
	fs.StringVar(&server, "server", "http://localhost:8080", "custodiad base URL")
	fs.StringVar(&inPath, "in", "", "document path for content comparison")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if token == "" {
		fmt.Fprintln(os.Stderr, "verify requires --token")
		return 1
	}

	endpoint := strings.TrimRight(server, "/") + "/v1/verify/" + url.PathEscape(token)
	client := &http.Client{Timeout: 30 * time.Second}

	var resp *http.Response
	var err error
	if inPath != "" {
		input, readErr := os.ReadFile(inPath)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "read document: %v\n", readErr)
			return 1
		}
		body, marshalErr := json.Marshal(map[string]string{
			"bytes_base64": base64.StdEncoding.EncodeToString(input),
		})
		if marshalErr != nil {
			fmt.Fprintf(os.Stderr, "marshal request: %v\n", marshalErr)
			return 1
		}
		resp, err = client.Post(endpoint, "application/json", bytes.NewReader(body))
	} else {
		resp, err = client.Get(endpoint)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read response: %v\n", err)
		return 1
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "verification failed: %s: %s\n", resp.Status, strings.TrimSpace(string(payload)))
		return 1
	}

	var result verifyResult
	if err := json.Unmarshal(payload, &result); err != nil {
		fmt.Fprintf(os.Stderr, "decode response: %v\n", err)
		return 1
	}

	fmt.Printf("seal:    %s (authorized by %s)\n", result.SealCode, result.AuthorizedRole)
	fmt.Printf("signer:  %s (%s) at %s\n", result.Signer, result.SignerRole, result.SignedAt)
	fmt.Printf("digest:  %s:%s\n", result.Algorithm, result.Digest)
	if result.ContentMatches != nil {
		if *result.ContentMatches {
			fmt.Println("content: MATCHES the sealed fingerprint")
		} else {
			fmt.Println("content: DOES NOT MATCH the sealed fingerprint")
			return 1
		}
	}
	fmt.Printf("chain:   %d events\n", len(result.Chain))
	return 0
}
