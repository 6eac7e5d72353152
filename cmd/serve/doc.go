// Package serve wires the dictd root command: flags, configuration and startup.
//
// Every flag can also be set through an environment variable DICTD_<FLAG> with dashes
// replaced by underscores (e.g. DICTD_DATA_DIR=/srv/dict). Variables from .env and
// .env.local in the working directory are loaded first.
package serve
