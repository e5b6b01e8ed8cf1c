// Package client is the record store client: typed I/O against the daybook
// server with no business rules of its own.
//
// Store is the contract the cache, mutation coordinator and streak tracker
// consume. GRPCClient implements it over gRPC, attaches the access token to
// every call and maps status codes onto the sentinel errors in package
// common, so callers match failures with errors.Is.
package client
