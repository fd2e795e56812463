// Package loam loads theories from a Loam document repository, where each
// markdown frontmatter, JSON or YAML document declares one theory.
package loam
