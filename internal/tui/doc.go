// Package tui provides the interactive REPL for driving workflows from a terminal.
//
// The REPL accepts one command per line:
//   - epic <description> runs the epic workflow
//   - task <title> asks for description lines, ended by an empty line, then runs the task workflow
//   - status lists tracked workflows
//   - help and quit
//
// Workflows run in the background while progress events stream into the
// scrollback. Only one workflow runs at a time; errors are printed and the
// REPL keeps going.
//
// Usage:
//
//	program, _ := tui.NewProgram(tui.Config{
//	    Context: ctx,
//	    Runner:  orch,
//	    Status:  orch.Registry().List,
//	    Events:  orch.Events(),
//	})
//	_, err := program.Run()
package tui
