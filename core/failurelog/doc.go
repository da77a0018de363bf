// Package failurelog records row failures per batch in the failure_logs table.
package failurelog
