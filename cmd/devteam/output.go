package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/ShayCichocki/devteam/internal/orchestrator"
)

// printStatus prints a status line with a colored symbol.
func printStatus(symbol, message string, c color.Attribute) {
	fmt.Printf("  %s %s\n", color.New(c).Sprint(symbol), message)
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
}

// eventColor picks the color of an event line.
func eventColor(t orchestrator.EventType) color.Attribute {
	switch t {
	case orchestrator.EventWorkflowFailed, orchestrator.EventPersonaFailed:
		return color.FgRed
	case orchestrator.EventWorkflowCompleted:
		return color.FgGreen
	case orchestrator.EventPhaseStarted:
		return color.FgCyan
	default:
		return color.FgHiBlack
	}
}

// streamEvents prints events until the channel closes. The returned
// function blocks until the stream is drained.
func streamEvents(events <-chan orchestrator.WorkflowEvent) func() {
	if events == nil {
		return func() {}
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range events {
			fmt.Printf("%s %s\n",
				color.HiBlackString(ev.Timestamp.Local().Format(time.TimeOnly)),
				color.New(eventColor(ev.Type)).Sprint(ev.String()))
		}
	}()
	return wg.Wait
}
