// Package main hosts the mclocale CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the logger, the
// HTTP client, the run ledger, and the workflow runner, and hands them to the
// edition pipelines. Inspection commands (status, history, versions, doctor)
// read the same state without taking the run lock.
//
// Keep this package lean: behaviour belongs in the internal packages; the
// commands here only wire and render.
package main
