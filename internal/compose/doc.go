// Package compose is the converge layer: it loads and validates the
// operator-provided compose descriptor and invokes the docker compose
// plugin to reconcile the declared topology with what is running.
//
// stackup does not own the topology — Compose does. This package only
// checks that the descriptor declares the three configured tiers with a
// sane startup order and parseable port specs before handing control to
// "docker compose up". Idempotence of the converge itself is whatever
// Compose guarantees.
package compose
