package record

import (
	"errors"
	"testing"
)

func TestSetStatus_ValidTransition(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	if err := r.SetStatus(OpLoad, StateMdImported); err != nil {
		t.Fatalf("load transition failed: %v", err)
	}
	if r.Status != StateMdImported {
		t.Errorf("expected md_imported, got %s", r.Status)
	}
}

func TestSetStatus_NoOpWhenAlreadyAtDest(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.Status = StateMdImported
	if err := r.SetStatus(OpLoad, StateMdImported); err != nil {
		t.Errorf("no-op transition must not error: %v", err)
	}
}

func TestSetStatus_ForbiddenEdge(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	err := r.SetStatus(OpScreen, StateRevIncluded)
	var terr *StatusTransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected StatusTransitionError, got %v", err)
	}
}

func TestSetStatus_DataReopensSynthesis(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.Status = StateRevSynthesized
	if err := r.SetStatus(OpData, StateRevIncluded); err != nil {
		t.Errorf("data reopen transition must be allowed: %v", err)
	}
}

func TestBefore_CanonicalOrder(t *testing.T) {
	cases := []struct {
		a, b State
		want bool
	}{
		{StateMdRetrieved, StateMdImported, true},
		{StateMdPrepared, StateMdImported, false},
		{StateMdProcessed, StateRevSynthesized, true},
		{StateRevIncluded, StateRevIncluded, false},
	}
	for _, c := range cases {
		if got := c.a.Before(c.b); got != c.want {
			t.Errorf("Before(%s, %s) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestPostStates(t *testing.T) {
	post := PostStates(StateMdProcessed)
	if !post[StateMdProcessed] {
		t.Error("post states must include the state itself")
	}
	if !post[StateRevSynthesized] {
		t.Error("post states must include later states")
	}
	if post[StateMdImported] {
		t.Error("post states must exclude earlier states")
	}
}

func TestRequiredState_AllOperationsCovered(t *testing.T) {
	ops := []Operation{OpLoad, OpPrep, OpPrepMan, OpDedupe, OpPrescreen, OpPdfGet, OpPdfGetMan, OpPdfPrep, OpPdfPrepMan, OpScreen, OpData}
	for _, op := range ops {
		if _, ok := RequiredState(op); !ok {
			t.Errorf("operation %s missing required-state entry", op)
		}
	}
}

func TestStateValid(t *testing.T) {
	if !StateMdImported.Valid() {
		t.Error("md_imported should be valid")
	}
	if State("bogus").Valid() {
		t.Error("bogus state should be invalid")
	}
}
