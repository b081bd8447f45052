package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// ProcessTask implements, reviews and, when every required reviewer approves, merges a task.
// Without full approval the item stays in review and the reviewers' follow-ups become
// the state's pending actions. The returned state is complete even when err is non-nil.
func (o *Orchestrator) ProcessTask(ctx context.Context, task *models.WorkItem) (*WorkflowState, error) {
	st := o.begin("task", task, PhaseImplementation)
	err := o.runTask(ctx, st)
	return st, o.finish("task", st, err)
}

func (o *Orchestrator) runTask(ctx context.Context, st *WorkflowState) error {
	task := st.WorkItem

	if o.github != nil {
		branch, err := o.github.CreateFeatureBranch(ctx, task)
		if err != nil {
			return fmt.Errorf("create feature branch: %w", err)
		}
		st.SetBranch(branch)
		o.emitter.Emit(WorkflowEvent{
			Type:       EventBranchCreated,
			WorkItemID: task.ID,
			Phase:      PhaseImplementation,
			Message:    branch,
		})
	}

	o.enterPhase(st, PhaseImplementation)
	st.Transition(models.StatusInProgress)

	impl, err := o.invoke(ctx, st, models.PersonaDeveloper, models.ActionImplement,
		"Implement this task according to the acceptance criteria.")
	if err != nil {
		return err
	}
	st.Record(impl)

	tests, err := o.invoke(ctx, st, models.PersonaTester, models.ActionTest,
		"Write tests for this implementation:\n\n"+summarizeArtifacts(impl.Artifacts))
	if err != nil {
		return err
	}
	st.Record(tests)

	docs, err := o.invoke(ctx, st, models.PersonaWriter, models.ActionDocument,
		"Update documentation for:\n\n"+summarizeArtifacts(st.ArtifactList()))
	if err != nil {
		return err
	}
	st.Record(docs)

	if o.github != nil && task.GitHubBranch != "" {
		if err := o.publish(ctx, st); err != nil {
			return err
		}
	}

	o.enterPhase(st, PhaseReview)
	st.Transition(models.StatusInReview)

	review, err := o.ProcessReview(ctx, task)
	if review != nil {
		st.Merge(review)
	}
	if err != nil {
		return err
	}

	if !AllReviewsApproved(st) {
		var pending []models.FollowUpAction
		for _, p := range st.Personas() {
			resp, _ := st.Response(p)
			if resp.ReviewDecision == models.ReviewRequestChanges {
				pending = append(pending, resp.FollowUpActions...)
			}
		}
		st.AddPendingActions(pending...)
		debugLog("[task] %s awaiting changes, %d follow-up(s)", task.ShortID(), len(pending))
		return nil
	}

	o.enterPhase(st, PhaseMerge)
	if o.github != nil && task.GitHubPRNumber != 0 {
		if err := o.github.MergePullRequest(ctx, task.GitHubPRNumber, task.Title); err != nil {
			return fmt.Errorf("merge pull request: %w", err)
		}
	}
	st.Transition(models.StatusMerged)
	return nil
}

// publish commits the committable artifacts to the task branch and opens a pull request.
// Nothing is published when no artifact has a usable target path.
func (o *Orchestrator) publish(ctx context.Context, st *WorkflowState) error {
	task := st.WorkItem

	var files []models.Artifact
	for _, a := range st.ArtifactList() {
		if a.TargetPath == "" {
			continue
		}
		if o.guard != nil && o.guard.IsProtected(a.TargetPath) {
			debugLog("[task] skipping protected path %s", a.TargetPath)
			continue
		}
		files = append(files, a)
	}
	if len(files) == 0 {
		debugLog("[task] %s has no files to commit", task.ShortID())
		return nil
	}

	sha, err := o.github.CommitArtifacts(ctx, task, files, commitMessage(files))
	if err != nil {
		return fmt.Errorf("commit artifacts: %w", err)
	}
	o.emitter.Emit(WorkflowEvent{
		Type:       EventArtifactsCommitted,
		WorkItemID: task.ID,
		Phase:      PhaseImplementation,
		Message:    fmt.Sprintf("%d file(s) at %s", len(files), shortSHA(sha)),
	})

	number, err := o.github.CreatePullRequest(ctx, task)
	if err != nil {
		return fmt.Errorf("create pull request: %w", err)
	}
	st.SetPullRequest(number)
	o.emitter.Emit(WorkflowEvent{
		Type:       EventPullRequestOpened,
		WorkItemID: task.ID,
		Phase:      PhaseImplementation,
		Message:    fmt.Sprintf("#%d", number),
	})
	return nil
}

func commitMessage(files []models.Artifact) string {
	var b strings.Builder
	b.WriteString("feat: implement changes\n")
	for _, f := range files {
		b.WriteString("\n- ")
		b.WriteString(f.TargetPath)
	}
	return b.String()
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
