// Package report writes finished workflows to markdown files.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ShayCichocki/devteam/internal/orchestrator"
)

// TimestampFormat names report files.
const TimestampFormat = "20060102_150405"

const maxTitle = 100

// EpicMarkdown renders every persona's reasoning, in response order, followed by any errors.
func EpicMarkdown(st *orchestrator.WorkflowState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Epic: %s\n\n", clip(st.WorkItem.Title, maxTitle))
	fmt.Fprintf(&b, "**Processed at:** %s\n\n", st.StartedAt.Format(time.RFC3339))

	for _, p := range st.Personas() {
		resp, _ := st.Response(p)
		fmt.Fprintf(&b, "## %s\n\n%s\n\n---\n\n", p.Title(), resp.Reasoning)
	}

	if len(st.WorkItem.ChildrenIDs) > 0 {
		b.WriteString("## Stories Created\n\n")
		for _, id := range st.WorkItem.ChildrenIDs {
			fmt.Fprintf(&b, "- %s\n", id)
		}
		b.WriteString("\n")
	}

	writeErrors(&b, st.ErrorList())
	return b.String()
}

// TaskMarkdown renders the outcome of a task, its review verdicts and generated artifacts.
func TaskMarkdown(st *orchestrator.WorkflowState) string {
	item := st.WorkItem
	var b strings.Builder
	fmt.Fprintf(&b, "# Task: %s\n\n", item.Title)
	fmt.Fprintf(&b, "**Status:** %s\n\n", item.Status)
	if item.GitHubPRURL != "" {
		fmt.Fprintf(&b, "**Pull request:** %s\n\n", item.GitHubPRURL)
	}

	var reviews []string
	for _, p := range st.Personas() {
		resp, _ := st.Response(p)
		if resp.ReviewDecision != "" {
			reviews = append(reviews, fmt.Sprintf("- %s: %s", p.Title(), resp.ReviewDecision))
		}
	}
	if len(reviews) > 0 {
		b.WriteString("## Reviews\n\n" + strings.Join(reviews, "\n") + "\n\n")
	}

	if artifacts := st.ArtifactList(); len(artifacts) > 0 {
		b.WriteString("## Generated Artifacts\n\n")
		for _, a := range artifacts {
			heading := a.TargetPath
			if heading == "" {
				heading = string(a.Type)
			}
			fmt.Fprintf(&b, "### %s\n\n```%s\n%s\n```\n\n", heading, a.Language, a.Content)
		}
	}

	if len(st.PendingActions) > 0 {
		b.WriteString("## Pending Actions\n\n")
		for _, a := range st.PendingActions {
			fmt.Fprintf(&b, "- [%s] %s\n", a.AssignedTo.Title(), a.Description)
		}
		b.WriteString("\n")
	}

	writeErrors(&b, st.ErrorList())
	return b.String()
}

// WriteEpic writes epic_synthesis_<ts>.md into dir and returns its path.
func WriteEpic(dir string, st *orchestrator.WorkflowState, at time.Time) (string, error) {
	return write(dir, "epic_synthesis", at, EpicMarkdown(st))
}

// WriteTask writes task_result_<ts>.md into dir and returns its path.
func WriteTask(dir string, st *orchestrator.WorkflowState, at time.Time) (string, error) {
	return write(dir, "task_result", at, TaskMarkdown(st))
}

func write(dir, prefix string, at time.Time, content string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.md", prefix, at.Format(TimestampFormat)))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func writeErrors(b *strings.Builder, errs []string) {
	if len(errs) == 0 {
		return
	}
	b.WriteString("## Errors\n\n")
	for _, e := range errs {
		fmt.Fprintf(b, "- %s\n", e)
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
