package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	printshop "github.com/goliatone/go-printshop/components/printshop"
)

type submitStates interface {
	State(sessionID string) printshop.SubmitState
}

// OrderFormInput identifies the browser session viewing the form.
type OrderFormInput struct {
	SessionID string
}

// OrderFormState is what a fresh form view shows.
type OrderFormState struct {
	Form  printshop.OrderForm
	State printshop.SubmitState
}

// Submitting reports whether the submit control should be disabled.
func (s OrderFormState) Submitting() bool {
	return s.State == printshop.StateSubmitting
}

// OrderFormQuery returns the default form plus the session's submit state.
type OrderFormQuery struct {
	submitters submitStates
}

// NewOrderFormQuery builds the query.
func NewOrderFormQuery(submitters submitStates) *OrderFormQuery {
	return &OrderFormQuery{submitters: submitters}
}

var _ gocommand.Querier[OrderFormInput, OrderFormState] = (*OrderFormQuery)(nil)

// Query never fails; a missing submitter set reports idle.
func (q *OrderFormQuery) Query(_ context.Context, in OrderFormInput) (OrderFormState, error) {
	state := OrderFormState{Form: printshop.DefaultOrderForm(), State: printshop.StateIdle}
	if q.submitters != nil {
		state.State = q.submitters.State(in.SessionID)
	}
	return state, nil
}
