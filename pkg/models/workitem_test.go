package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// fixedClock swaps the package clock for the duration of the test.
func fixedClock(t *testing.T, ts time.Time) *time.Time {
	t.Helper()
	current := ts
	orig := now
	now = func() time.Time { return current }
	t.Cleanup(func() { now = orig })
	return &current
}

func TestWorkItemType_Valid(t *testing.T) {
	tests := []struct {
		typ  WorkItemType
		want bool
	}{
		{WorkItemEpic, true},
		{WorkItemStory, true},
		{WorkItemTask, true},
		{WorkItemSubtask, true},
		{WorkItemBug, true},
		{WorkItemType(""), false},
		{WorkItemType("feature"), false},
	}

	for _, tt := range tests {
		if got := tt.typ.Valid(); got != tt.want {
			t.Errorf("WorkItemType(%q).Valid() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestNewWorkItem_Defaults(t *testing.T) {
	item := NewWorkItem(WorkItemTask, "Add login", "desc")

	if item.ID == "" {
		t.Error("ID should be set")
	}
	if item.Status != StatusBacklog {
		t.Errorf("Status = %q, want %q", item.Status, StatusBacklog)
	}
	if item.Priority != DefaultPriority {
		t.Errorf("Priority = %d, want %d", item.Priority, DefaultPriority)
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Error("CreatedAt and UpdatedAt should be set")
	}
	if item.StartedAt != nil || item.CompletedAt != nil {
		t.Error("StartedAt and CompletedAt should be nil")
	}
}

func TestAllCriteriaMet(t *testing.T) {
	item := NewWorkItem(WorkItemTask, "t", "")
	if !item.AllCriteriaMet() {
		t.Error("AllCriteriaMet() = false for empty criteria, want true")
	}

	a := item.AddAcceptanceCriterion("first")
	b := item.AddAcceptanceCriterion("second")
	if item.AllCriteriaMet() {
		t.Error("AllCriteriaMet() = true with unmet criteria, want false")
	}

	item.MarkCriterionMet(a.ID, PersonaTester)
	if item.AllCriteriaMet() {
		t.Error("AllCriteriaMet() = true with one unmet criterion, want false")
	}

	item.MarkCriterionMet(b.ID, PersonaTester)
	if !item.AllCriteriaMet() {
		t.Error("AllCriteriaMet() = false with all criteria met, want true")
	}
}

func TestMarkCriterionMet_Restamps(t *testing.T) {
	clock := fixedClock(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	item := NewWorkItem(WorkItemTask, "t", "")
	c := item.AddAcceptanceCriterion("works")

	item.MarkCriterionMet(c.ID, PersonaTester)
	first := *item.AcceptanceCriteria[0].VerifiedAt

	*clock = clock.Add(time.Hour)
	item.MarkCriterionMet(c.ID, PersonaSecurity)

	got := item.AcceptanceCriteria[0]
	if !got.Met {
		t.Error("Met = false, want true")
	}
	if got.VerifiedBy != PersonaSecurity {
		t.Errorf("VerifiedBy = %q, want %q", got.VerifiedBy, PersonaSecurity)
	}
	if !got.VerifiedAt.After(first) {
		t.Errorf("VerifiedAt = %v, want after %v", got.VerifiedAt, first)
	}
}

func TestMarkCriterionMet_UnknownID(t *testing.T) {
	item := NewWorkItem(WorkItemTask, "t", "")
	item.AddAcceptanceCriterion("works")

	item.MarkCriterionMet("does-not-exist", PersonaTester)

	if item.AcceptanceCriteria[0].Met {
		t.Error("unknown id should not mark any criterion")
	}
	if item.AcceptanceCriteria[0].VerifiedAt != nil {
		t.Error("unknown id should not stamp any criterion")
	}
}

func TestTransitionTo_StartedAtSetOnce(t *testing.T) {
	clock := fixedClock(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	item := NewWorkItem(WorkItemTask, "t", "")

	item.TransitionTo(StatusInProgress)
	if item.StartedAt == nil {
		t.Fatal("StartedAt should be set after first transition to in_progress")
	}
	first := *item.StartedAt

	*clock = clock.Add(time.Hour)
	item.TransitionTo(StatusBlocked)
	item.TransitionTo(StatusInProgress)

	if !item.StartedAt.Equal(first) {
		t.Errorf("StartedAt = %v, want %v", item.StartedAt, first)
	}
	if !item.UpdatedAt.Equal(*clock) {
		t.Errorf("UpdatedAt = %v, want %v", item.UpdatedAt, *clock)
	}
}

func TestTransitionTo_CompletedAt(t *testing.T) {
	nonTerminal := []WorkItemStatus{
		StatusBacklog, StatusReady, StatusInProgress, StatusInReview,
		StatusApproved, StatusBlocked, StatusCancelled,
	}
	for _, status := range nonTerminal {
		item := NewWorkItem(WorkItemTask, "t", "")
		item.TransitionTo(status)
		if item.CompletedAt != nil {
			t.Errorf("TransitionTo(%q) set CompletedAt, want nil", status)
		}
	}

	for _, status := range []WorkItemStatus{StatusMerged, StatusDeployed} {
		item := NewWorkItem(WorkItemTask, "t", "")
		item.TransitionTo(status)
		if item.CompletedAt == nil {
			t.Errorf("TransitionTo(%q) left CompletedAt nil", status)
		}
	}
}

func TestTransitionTo_CompletedAtNotOverwritten(t *testing.T) {
	clock := fixedClock(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))
	item := NewWorkItem(WorkItemTask, "t", "")

	item.TransitionTo(StatusMerged)
	first := *item.CompletedAt

	*clock = clock.Add(24 * time.Hour)
	item.TransitionTo(StatusDeployed)

	if !item.CompletedAt.Equal(first) {
		t.Errorf("CompletedAt = %v, want %v", item.CompletedAt, first)
	}
	if item.Status != StatusDeployed {
		t.Errorf("Status = %q, want %q", item.Status, StatusDeployed)
	}
}

func TestWorkItem_JSONRoundTrip(t *testing.T) {
	item := NewWorkItem(WorkItemBug, "Crash on save", "stack trace attached")
	a := item.AddAcceptanceCriterion("no crash")
	item.AddAcceptanceCriterion("regression test added")
	item.MarkCriterionMet(a.ID, PersonaTester)
	item.TransitionTo(StatusInReview)

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got WorkItem
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got.ID != item.ID {
		t.Errorf("ID = %q, want %q", got.ID, item.ID)
	}
	if got.Type != item.Type {
		t.Errorf("Type = %q, want %q", got.Type, item.Type)
	}
	if got.Status != item.Status {
		t.Errorf("Status = %q, want %q", got.Status, item.Status)
	}
	if len(got.AcceptanceCriteria) != 2 {
		t.Fatalf("len(AcceptanceCriteria) = %d, want 2", len(got.AcceptanceCriteria))
	}
	for i, c := range got.AcceptanceCriteria {
		want := item.AcceptanceCriteria[i]
		if c.Description != want.Description || c.Met != want.Met {
			t.Errorf("criterion %d = {%q %v}, want {%q %v}", i, c.Description, c.Met, want.Description, want.Met)
		}
	}
}

func TestWorkItem_UnmarshalRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"unknown type", `{"id":"1","type":"feature","status":"backlog"}`},
		{"unknown status", `{"id":"1","type":"task","status":"done"}`},
		{"unknown persona", `{"id":"1","type":"task","status":"backlog","assigned_to":"intern"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item WorkItem
			if err := json.Unmarshal([]byte(tt.json), &item); err == nil {
				t.Error("Unmarshal should fail for unknown enumeration value")
			}
		})
	}
}

func TestParseTaskDefinition(t *testing.T) {
	data := []byte(`{
		"title": "Add rate limiting",
		"description": "Limit requests per client",
		"acceptance_criteria": ["429 after limit", "limit configurable"],
		"priority": 2
	}`)

	item, err := ParseTaskDefinition(data)
	if err != nil {
		t.Fatalf("ParseTaskDefinition failed: %v", err)
	}
	if item.Type != WorkItemTask {
		t.Errorf("Type = %q, want %q", item.Type, WorkItemTask)
	}
	if item.Priority != 2 {
		t.Errorf("Priority = %d, want 2", item.Priority)
	}
	if len(item.AcceptanceCriteria) != 2 {
		t.Fatalf("len(AcceptanceCriteria) = %d, want 2", len(item.AcceptanceCriteria))
	}
	if item.AcceptanceCriteria[1].Description != "limit configurable" {
		t.Errorf("criterion = %q, want %q", item.AcceptanceCriteria[1].Description, "limit configurable")
	}
}

func TestParseTaskDefinition_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"invalid json", `{`},
		{"missing title", `{"description":"x"}`},
		{"unknown type", `{"title":"x","type":"chore"}`},
		{"priority out of range", `{"title":"x","priority":9}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTaskDefinition([]byte(tt.json)); err == nil {
				t.Error("ParseTaskDefinition should fail")
			}
		})
	}
}

func TestWorkItem_Markdown(t *testing.T) {
	item := NewWorkItem(WorkItemTask, "Add login", "Users can log in")
	c := item.AddAcceptanceCriterion("password checked")
	item.AddAcceptanceCriterion("session created")
	item.MarkCriterionMet(c.ID, PersonaTester)
	item.DependsOn = []string{"abc"}

	md := item.Markdown()

	for _, want := range []string{
		"# Add login",
		"**Type:** Task",
		"**Status:** Backlog",
		"**Priority:** P3",
		"## Description\n\nUsers can log in",
		"- [x] password checked",
		"- [ ] session created",
		"Blocked by: abc",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown() missing %q\n%s", want, md)
		}
	}
}

func TestNewEpic(t *testing.T) {
	long := strings.Repeat("é", 120)
	epic := NewEpic("  " + long + "  ")

	if epic.Type != WorkItemEpic {
		t.Errorf("Type = %q, want %q", epic.Type, WorkItemEpic)
	}
	if got := len([]rune(epic.Title)); got != MaxEpicTitle {
		t.Errorf("len(Title) = %d runes, want %d", got, MaxEpicTitle)
	}
	if epic.Description != long {
		t.Error("Description should hold the full trimmed text")
	}

	if short := NewEpic("Checkout"); short.Title != "Checkout" {
		t.Errorf("Title = %q, want %q", short.Title, "Checkout")
	}
}
