/*
Package observability provides tools for monitoring the causal workspace.

It includes lifecycle hooks that log compilations, homomorphism checks and
refinements, Prometheus collectors fed by the same hooks, and a helper to
chain several hook sets together.
*/
package observability
