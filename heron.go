// Package heron analyzes the import structure of Python projects.
package heron

// Version is the current heron release.
const Version = "0.1.0"
