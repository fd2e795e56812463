// Package mcp exposes a causal workspace as a Model Context Protocol server,
// so agents can list theories, compile programs, render diagrams and check
// homomorphisms.
package mcp
