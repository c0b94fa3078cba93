// Package docker wraps the Docker Engine SDK client for the pieces of the
// pipeline that talk to the daemon directly: verifying the daemon is
// responsive, snapshotting the state of the stack's containers for the
// readiness prober, and scanning a container's log stream.
//
// Containers are discovered through the com.docker.compose.project label
// that Compose stamps on everything it creates; stackup never tracks
// container identity itself.
package docker
