// Package common provides the data structures shared by the server packages.
//
// Key Components:
//
//   - ServerConfig: every setting of the server (listener, connection handling, dictionary
//     source, logging, metrics) plus a sectioned String() rendering logged at startup.
//
//   - Wire protocol constants: the NOENTRY marker, the receive buffer size (which is also
//     the maximum query length) and the default accept backlog.
//
//   - Logger: a dragonboat logger.ILogger factory with "LEVEL | package | message"
//     formatting, installed for all application loggers by InitLoggers.
//
//   - ServerMetrics: Prometheus counters and histograms (VictoriaMetrics) for connections,
//     queries and I/O errors.
package common
