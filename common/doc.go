// Package common provides the small shared helpers used by the secrets,
// postgres and llm subpackages.
//
// Environment lookups treat whitespace-only values as unset so a blank line
// in a dotenv file never overrides a default.
package common
