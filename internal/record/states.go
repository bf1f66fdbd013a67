package record

import (
	"errors"
	"fmt"
)

// State represents a record's position in the review lifecycle.
type State string

const (
	StateMdRetrieved              State = "md_retrieved"
	StateMdImported               State = "md_imported"
	StateMdNeedsManualPreparation State = "md_needs_manual_preparation"
	StateMdPrepared               State = "md_prepared"
	StateMdProcessed              State = "md_processed"
	StateRevPrescreenExcluded     State = "rev_prescreen_excluded"
	StateRevPrescreenIncluded     State = "rev_prescreen_included"
	StatePdfNeedsRetrieval        State = "pdf_needs_retrieval"
	StatePdfImported              State = "pdf_imported"
	StatePdfNotAvailable          State = "pdf_not_available"
	StatePdfNeedsManualRetrieval  State = "pdf_needs_manual_retrieval"
	StatePdfNeedsPreparation      State = "pdf_needs_preparation"
	StatePdfNeedsManualPrep       State = "pdf_needs_manual_preparation"
	StatePdfPrepared              State = "pdf_prepared"
	StateRevExcluded              State = "rev_excluded"
	StateRevIncluded              State = "rev_included"
	StateRevSynthesized           State = "rev_synthesized"
)

// canonicalOrder positions each state on the review timeline. Terminal
// exclusion branches share the position of the decision that produced them.
var canonicalOrder = map[State]int{
	StateMdRetrieved:              0,
	StateMdImported:               1,
	StateMdNeedsManualPreparation: 2,
	StateMdPrepared:               3,
	StateMdProcessed:              4,
	StateRevPrescreenExcluded:     5,
	StateRevPrescreenIncluded:     5,
	StatePdfNeedsRetrieval:        6,
	StatePdfImported:              7,
	StatePdfNotAvailable:          7,
	StatePdfNeedsManualRetrieval:  7,
	StatePdfNeedsPreparation:      8,
	StatePdfNeedsManualPrep:       9,
	StatePdfPrepared:              10,
	StateRevExcluded:              11,
	StateRevIncluded:              11,
	StateRevSynthesized:           12,
}

// Valid reports whether s is a recognized state.
func (s State) Valid() bool {
	_, ok := canonicalOrder[s]
	return ok
}

// Before reports whether s precedes other in canonical order.
func (s State) Before(other State) bool {
	return canonicalOrder[s] < canonicalOrder[other]
}

// AllStates lists the states in canonical order.
var AllStates = []State{
	StateMdRetrieved,
	StateMdImported,
	StateMdNeedsManualPreparation,
	StateMdPrepared,
	StateMdProcessed,
	StateRevPrescreenExcluded,
	StateRevPrescreenIncluded,
	StatePdfNeedsRetrieval,
	StatePdfImported,
	StatePdfNotAvailable,
	StatePdfNeedsManualRetrieval,
	StatePdfNeedsPreparation,
	StatePdfNeedsManualPrep,
	StatePdfPrepared,
	StateRevExcluded,
	StateRevIncluded,
	StateRevSynthesized,
}

// Operation names the review operation that triggers state transitions.
type Operation string

const (
	OpSearch     Operation = "search"
	OpLoad       Operation = "load"
	OpPrep       Operation = "prep"
	OpPrepMan    Operation = "prep_man"
	OpDedupe     Operation = "dedupe"
	OpPrescreen  Operation = "prescreen"
	OpPdfGet     Operation = "pdf_get"
	OpPdfGetMan  Operation = "pdf_get_man"
	OpPdfPrep    Operation = "pdf_prep"
	OpPdfPrepMan Operation = "pdf_prep_man"
	OpScreen     Operation = "screen"
	OpData       Operation = "data"
	OpRemove     Operation = "remove"
)

// Transition is one edge of the state machine, named by the operation that
// triggers it.
type Transition struct {
	Trigger Operation
	Source  State
	Dest    State
}

// Transitions is the static transition table. Backward edges are forbidden
// except the explicit data-operation reopen and curated-retraction jumps
// (handled by PrescreenExclude).
var Transitions = []Transition{
	{OpLoad, StateMdRetrieved, StateMdImported},
	{OpPrep, StateMdImported, StateMdPrepared},
	{OpPrep, StateMdImported, StateMdNeedsManualPreparation},
	{OpPrepMan, StateMdNeedsManualPreparation, StateMdPrepared},
	{OpDedupe, StateMdPrepared, StateMdProcessed},
	{OpPrescreen, StateMdProcessed, StateRevPrescreenExcluded},
	{OpPrescreen, StateMdProcessed, StateRevPrescreenIncluded},
	{OpPdfGet, StateRevPrescreenIncluded, StatePdfImported},
	{OpPdfGet, StateRevPrescreenIncluded, StatePdfNeedsRetrieval},
	{OpPdfGet, StatePdfNeedsRetrieval, StatePdfImported},
	{OpPdfGet, StatePdfNeedsRetrieval, StatePdfNeedsManualRetrieval},
	{OpPdfGetMan, StatePdfNeedsManualRetrieval, StatePdfNotAvailable},
	{OpPdfGetMan, StatePdfNeedsManualRetrieval, StatePdfImported},
	{OpPdfPrep, StatePdfImported, StatePdfPrepared},
	{OpPdfPrep, StatePdfImported, StatePdfNeedsManualPrep},
	{OpPdfPrepMan, StatePdfNeedsManualPrep, StatePdfPrepared},
	{OpScreen, StatePdfPrepared, StateRevExcluded},
	{OpScreen, StatePdfPrepared, StateRevIncluded},
	{OpScreen, StatePdfNotAvailable, StateRevExcluded},
	{OpScreen, StatePdfNotAvailable, StateRevIncluded},
	{OpData, StateRevIncluded, StateRevSynthesized},
	// Data endpoint may reopen synthesis.
	{OpData, StateRevSynthesized, StateRevIncluded},
}

// requiredState is the minimum state records must have reached before an
// operation may touch them.
var requiredState = map[Operation]State{
	OpLoad:       StateMdRetrieved,
	OpPrep:       StateMdImported,
	OpPrepMan:    StateMdNeedsManualPreparation,
	OpDedupe:     StateMdPrepared,
	OpPrescreen:  StateMdProcessed,
	OpPdfGet:     StateRevPrescreenIncluded,
	OpPdfGetMan:  StatePdfNeedsManualRetrieval,
	OpPdfPrep:    StatePdfImported,
	OpPdfPrepMan: StatePdfNeedsManualPrep,
	OpScreen:     StatePdfPrepared,
	OpData:       StateRevIncluded,
}

// RequiredState returns the minimum precondition state for op.
func RequiredState(op Operation) (State, bool) {
	s, ok := requiredState[op]
	return s, ok
}

// CanTrigger reports whether op has an outgoing edge from state. States
// with such an edge satisfy the op's precondition even when they rank
// below the required state, such as pdf_not_available for screen.
func CanTrigger(op Operation, from State) bool {
	for _, t := range Transitions {
		if t.Trigger == op && t.Source == from {
			return true
		}
	}
	return false
}

// ErrUnknownOperation is returned for operations outside the table.
var ErrUnknownOperation = errors.New("unknown operation")

// StatusTransitionError reports an attempt to move a record along an edge
// not present in the transition table.
type StatusTransitionError struct {
	ID      string
	Trigger Operation
	From    State
	To      State
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("record %s: no %s transition from %s to %s", e.ID, e.Trigger, e.From, e.To)
}

// SetStatus moves the record to dest via trigger. A record already at dest
// is a no-op. Any edge outside the table is a StatusTransitionError.
func (r *Record) SetStatus(trigger Operation, dest State) error {
	if r.Status == dest {
		return nil
	}
	for _, t := range Transitions {
		if t.Trigger == trigger && t.Source == r.Status && t.Dest == dest {
			r.Status = dest
			return nil
		}
	}
	return &StatusTransitionError{ID: r.ID, Trigger: trigger, From: r.Status, To: dest}
}

// PostStates returns the set of states at or after state in canonical
// order. Used by screening-criteria checks and propagated-ID detection.
func PostStates(state State) map[State]bool {
	pos, ok := canonicalOrder[state]
	if !ok {
		return nil
	}
	out := map[State]bool{}
	for s, p := range canonicalOrder {
		if p >= pos {
			out[s] = true
		}
	}
	return out
}
