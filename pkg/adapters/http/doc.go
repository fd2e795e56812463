// Package http serves a causal workspace over a JSON API built on chi:
// theory listing and inspection, program compilation with Mermaid output,
// refinement, homomorphism checks and hot-reload events.
package http
