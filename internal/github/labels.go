package github

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	gh "github.com/google/go-github/v66/github"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// Status labels.
const (
	LabelBlocked  = "blocked"
	LabelInReview = "in-review"
)

// LabelColors holds the standard labels and their colors.
var LabelColors = map[string]string{
	"epic":          "3E4B9E",
	"story":         "0E8A16",
	"task":          "1D76DB",
	"bug":           "D93F0B",
	LabelBlocked:    "B60205",
	LabelInReview:   "FBCA04",
	"security":      "5319E7",
	"documentation": "0075CA",
	"architecture":  "006B75",
}

// EnsureLabels creates the standard labels missing from the repository.
// A failed label does not stop the rest. Returns the names created.
func (c *Client) EnsureLabels(ctx context.Context) ([]string, error) {
	existing := make(map[string]bool)
	opts := &gh.ListOptions{PerPage: 100}
	for {
		labels, resp, err := c.api.Issues.ListLabels(ctx, c.cfg.Owner, c.cfg.Repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list labels: %w", err)
		}
		for _, l := range labels {
			existing[l.GetName()] = true
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	names := make([]string, 0, len(LabelColors))
	for name := range LabelColors {
		names = append(names, name)
	}
	sort.Strings(names)

	var created []string
	var errs []error
	for _, name := range names {
		if existing[name] {
			continue
		}
		_, _, err := c.api.Issues.CreateLabel(ctx, c.cfg.Owner, c.cfg.Repo, &gh.Label{
			Name:  gh.String(name),
			Color: gh.String(LabelColors[name]),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("create label %s: %w", name, err))
			continue
		}
		log.Printf("[github] created label %s", name)
		created = append(created, name)
	}
	return created, errors.Join(errs...)
}

// labelsFor returns the type label, the item's labels and any status label, without duplicates.
func labelsFor(item *models.WorkItem, withStatus bool) []string {
	labels := []string{string(item.Type)}
	labels = append(labels, item.Labels...)
	if withStatus {
		switch item.Status {
		case models.StatusBlocked:
			labels = append(labels, LabelBlocked)
		case models.StatusInReview:
			labels = append(labels, LabelInReview)
		}
	}

	seen := make(map[string]bool, len(labels))
	out := labels[:0]
	for _, l := range labels {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
