// Package preflight provides readiness checks for the filesystem locations,
// external tools, and remote endpoints that mclocale depends on.
//
// These checks run in two contexts:
//   - The workflow runner calls RunAll before a run starts. If any required
//     check fails the run stops before downloading a multi-gigabyte package
//     into a directory that cannot hold it.
//   - The CLI "mclocale doctor" command renders RunAll plus RunNetwork.
package preflight
