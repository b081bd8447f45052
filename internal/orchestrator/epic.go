package orchestrator

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/devteam/internal/persona"
	"github.com/ShayCichocki/devteam/pkg/models"
)

// ProcessEpic runs planning, design and synthesis for an epic.
// The returned state is complete even when err is non-nil.
func (o *Orchestrator) ProcessEpic(ctx context.Context, epic *models.WorkItem) (*WorkflowState, error) {
	st := o.begin("epic", epic, PhasePlanning)
	err := o.runEpic(ctx, st)
	return st, o.finish("epic", st, err)
}

func (o *Orchestrator) runEpic(ctx context.Context, st *WorkflowState) error {
	o.enterPhase(st, PhasePlanning)
	breakdown, err := o.invoke(ctx, st, models.PersonaProductOwner, models.ActionBreakDown,
		"Break down this Epic into User Stories with acceptance criteria.")
	if err != nil {
		return err
	}
	st.Record(breakdown)

	o.enterPhase(st, PhaseDesign)
	var strategy, design *models.PersonaResponse
	var g errgroup.Group
	g.Go(func() error {
		resp, err := o.invoke(ctx, st, models.PersonaStrategist, models.ActionAssess,
			"Assess strategic fit of this Epic.\n\nStories proposed:\n"+breakdown.Reasoning)
		strategy = resp
		return err
	})
	g.Go(func() error {
		resp, err := o.invoke(ctx, st, models.PersonaArchitect, models.ActionDesign,
			"Design architecture for this Epic.\n\nStories proposed:\n"+breakdown.Reasoning)
		design = resp
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	st.Record(strategy)
	st.Record(design)

	o.enterPhase(st, PhaseSynthesis)
	synthesis, err := o.invoke(ctx, st, models.PersonaSynthesizer, models.ActionSynthesize,
		"Synthesize these perspectives:\n\n"+st.SynthesisInput())
	if err != nil {
		return err
	}
	st.Record(synthesis)

	if o.github != nil {
		if err := o.createStories(ctx, st, breakdown); err != nil {
			return err
		}
	}
	return nil
}

// createStories files one issue per story the product owner returned in structured form.
func (o *Orchestrator) createStories(ctx context.Context, st *WorkflowState, breakdown *models.PersonaResponse) error {
	epic := st.WorkItem
	created := 0
	for _, a := range breakdown.Artifacts {
		if a.Type != models.ArtifactIssue {
			continue
		}
		draft, err := persona.DecodeStory(a)
		if err != nil {
			return err
		}
		story := draft.WorkItem(epic)
		if err := o.github.CreateIssue(ctx, story); err != nil {
			return fmt.Errorf("create story %q: %w", story.Title, err)
		}
		st.AddChild(story.ID)
		created++
		o.emitter.Emit(WorkflowEvent{
			Type:          EventStoryCreated,
			WorkItemID:    epic.ID,
			WorkItemTitle: epic.Title,
			Phase:         PhaseSynthesis,
			Message:       fmt.Sprintf("#%d %s", story.GitHubIssueNumber, story.Title),
		})
	}
	if created == 0 {
		log.Printf("[orchestrator] epic %s: breakdown has no structured stories, no issues created", epic.ShortID())
	}
	return nil
}
