package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// ProcessReview collects reviews from the required reviewers of item.
// Reviewers run concurrently and one failing reviewer never stops the others:
// its failure is recorded as an error entry. Only a failed synthesis returns an error.
func (o *Orchestrator) ProcessReview(ctx context.Context, item *models.WorkItem) (*WorkflowState, error) {
	st := NewWorkflowState(item, PhaseReview)

	diff := ""
	if o.github != nil && item.GitHubPRNumber != 0 {
		d, err := o.github.PullRequestDiff(ctx, item.GitHubPRNumber)
		if err != nil {
			return st, fmt.Errorf("pull request diff: %w", err)
		}
		diff = d
	}
	instructions := "Review this PR:\n\n" + diff

	reviewers := RequiredReviewers(item.Type)
	results := make([]*models.PersonaResponse, len(reviewers))
	failures := make([]error, len(reviewers))

	var wg sync.WaitGroup
	for i, reviewer := range reviewers {
		wg.Add(1)
		go func(i int, reviewer models.PersonaID) {
			defer wg.Done()
			results[i], failures[i] = o.invoke(ctx, st, reviewer, models.ActionReview, instructions)
		}(i, reviewer)
	}
	wg.Wait()

	for i, reviewer := range reviewers {
		if failures[i] != nil {
			st.AddError(fmt.Sprintf("%s: %v", reviewer, failures[i]))
			continue
		}
		resp := results[i]
		st.Record(resp)

		if o.github != nil && item.GitHubPRNumber != 0 {
			approve := resp.ReviewDecision == models.ReviewApprove
			if err := o.github.AddReview(ctx, item.GitHubPRNumber, reviewer, resp.Reasoning, approve); err != nil {
				st.AddError(fmt.Sprintf("%s: publish review: %v", reviewer, err))
				continue
			}
			o.emitter.Emit(WorkflowEvent{
				Type:       EventReviewPublished,
				WorkItemID: item.ID,
				Phase:      PhaseReview,
				Persona:    reviewer,
				Message:    string(resp.ReviewDecision),
			})
		}
	}

	synthesis, err := o.invoke(ctx, st, models.PersonaSynthesizer, models.ActionSynthesizeReviews,
		"Synthesize these reviews:\n\n"+st.SynthesisInput())
	if err != nil {
		return st, err
	}
	st.Record(synthesis)
	return st, nil
}
