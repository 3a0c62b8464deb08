package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethanbai/httprs"
	_ "github.com/mtibben/androiddnsfix"
)

func main() {
	if err := httprs.Main(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		printHint(err.Error())
		os.Exit(1)
	}
}

// printHint suggests a next step for the most common failures.
func printHint(message string) {
	switch {
	case strings.Contains(message, "no such host"):
		fmt.Fprintln(os.Stderr, "Possible causes:")
		fmt.Fprintln(os.Stderr, "  - Check if the domain name is correct")
		fmt.Fprintln(os.Stderr, "  - Check your network connection")
	case strings.Contains(message, "Client.Timeout"):
		fmt.Fprintln(os.Stderr, "Suggestion:")
		fmt.Fprintln(os.Stderr, "  - Increase the timeout with --timeout <seconds>")
		fmt.Fprintln(os.Stderr, "  - Check if the server is responsive")
	case strings.Contains(message, "connection refused"):
		fmt.Fprintln(os.Stderr, "Possible causes:")
		fmt.Fprintln(os.Stderr, "  - Server is not running")
		fmt.Fprintln(os.Stderr, "  - Wrong port number")
	case strings.Contains(message, "no such file"):
		fmt.Fprintln(os.Stderr, "File not found:")
		fmt.Fprintln(os.Stderr, "  - Check if the file path is correct")
	}
}
