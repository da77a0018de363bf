// Package utils provides small conversion helpers shared by the HTTP and CLI
// surfaces, mostly for turning decoded JSON and form values into row cells.
package utils
