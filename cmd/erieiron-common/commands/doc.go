// Package commands wires the erieiron-common CLI.
//
// Commands:
//
//	release-tag  tag the current commit with v<version> and push it
//	secret-arn   resolve a secret name to its ARN
//	db-check     connect to postgres with Secrets Manager credentials
//	chat         send one prompt through the LLM helper
//	version      print the build version
package commands
