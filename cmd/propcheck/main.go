// Package main provides the propcheck command-line tool.
//
// propcheck sends a property document (sale deed, encumbrance certificate,
// tax receipt) to the analysis model and prints the due diligence report.
//
// Usage:
//
//	propcheck analyze deed.pdf
//	propcheck analyze --format markdown --output report.md deed.pdf
//
// See --help for all available options.
package main

func main() {
	Execute()
}
