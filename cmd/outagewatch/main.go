// Package main provides the entry point for the outagewatch CLI.
//
// outagewatch aggregates operational health signals for third-party services
// from public status APIs, feeds, HTML pages, and crowd-report mirrors, and
// serves a ranked severity dashboard.
//
// Usage:
//
//	outagewatch serve
//	outagewatch poll
//	outagewatch crowd <group>
//
// See --help for all available options.
package main

// main is the entry point for outagewatch.
func main() {
	Execute()
}
