// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with lifecycle logging via ShellExecutor, exposes
// OSCommandRunner for default process execution, and formats readable
// messages for osc build-service calls so the osc transport can be exercised
// against recorded runners in tests.
package execshell
