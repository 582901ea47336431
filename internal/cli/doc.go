// Package cli implements the command-line interface for hsv-vvk.
//
// The cli package provides the Cobra command tree: "serve" publishes the pre-sale
// calendar over HTTP, "list" prints one extraction pass as text or JSON, and
// "export" writes the calendar document to a file. All commands share the
// configuration loading in loadConfig.
package cli
