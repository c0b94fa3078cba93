// Package preflight inspects the host environment before any mutating
// step runs: OS identity, presence of the Docker Engine binary at a
// minimum version, and availability of the Compose plugin.
//
// Every check is read-only and fails fast with a model.CLIError carrying
// the matching exit code. The checks are a terminal gate — there are no
// retries at this layer.
package preflight
