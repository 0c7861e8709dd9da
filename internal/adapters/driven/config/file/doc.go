// Package file loads clientdesk settings from a TOML file and the environment.
//
// Precedence, lowest first: built-in defaults, the TOML file, a .env file in
// the working directory, then process environment variables.
package file
