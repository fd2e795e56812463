// Package file reads theories and homomorphisms from YAML or JSON files and
// stores presentation snapshots as JSON on the local filesystem.
package file
