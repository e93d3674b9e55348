// Package release reads a project's version from its metadata file and
// publishes the matching git tag.
package release
