// Package main hosts the bookdetector CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds a
// detector service on demand and renders results as tables or JSON. Long
// running modes (catalog watch, cameras --watch, serve) stop on SIGINT or
// SIGTERM.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it through a command or flag here.
package main
