// Package postgres opens PostgreSQL connections whose username and password
// come from an AWS Secrets Manager secret instead of static configuration.
//
// Every new physical connection asks the secrets cache for credentials. When
// a connection attempt fails the cache is bypassed once and the attempt is
// repeated with freshly fetched credentials, so rotations are picked up
// without restarting the process.
//
// Connection pools are exposed through a dbresolver.DB (primary plus optional
// read replica). Migrations are run explicitly with a Migrator.
package postgres
