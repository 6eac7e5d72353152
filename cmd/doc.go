// Package cmd implements the command-line interface of the dictd dictionary server.
//
//	dictd <port> [flags]
//	dictd version
//
// The package is organized into two subpackages:
//
//   - serve: flags, configuration and startup of the server
//   - util: shared utilities such as help text wrapping, exit codes and environment loading
//
// Exit codes: 2 for an invalid invocation or configuration (missing or non-integer port,
// unknown flag, invalid flag value), 1 if the socket can not be bound or the server fails
// otherwise. A running server does not exit on its own.
//
// See dictd --help for a list of all flags.
package cmd
