// Package dto holds the file and frontmatter shapes of theories and
// homomorphisms, and turns them into domain values.
package dto
