package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	printshop "github.com/goliatone/go-printshop/components/printshop"
)

type orderValidator interface {
	Validate(form printshop.OrderForm) (printshop.OrderSubmission, error)
}

type submitterSet interface {
	Submit(ctx context.Context, sessionID string, order printshop.OrderSubmission) (printshop.OrderReceipt, error)
}

// SubmitOrderInput carries a raw order form. When Receipt is set it receives
// the completed submission.
type SubmitOrderInput struct {
	SessionID string
	Form      printshop.OrderForm
	Receipt   *printshop.OrderReceipt
}

// SubmitOrderCommand validates an order form and hands it to the session's
// submitter. Invalid forms never reach the submitter.
type SubmitOrderCommand struct {
	validator  orderValidator
	submitters submitterSet
	telemetry  Telemetry
}

// NewSubmitOrderCommand creates a command instance.
func NewSubmitOrderCommand(validator orderValidator, submitters submitterSet, telemetry Telemetry) *SubmitOrderCommand {
	return &SubmitOrderCommand{validator: validator, submitters: submitters, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SubmitOrderInput] = (*SubmitOrderCommand)(nil)

// Execute returns a *printshop.ValidationError for invalid input and
// printshop.ErrSubmissionInFlight while a previous submit is pending.
func (c *SubmitOrderCommand) Execute(ctx context.Context, msg SubmitOrderInput) error {
	if c.validator == nil || c.submitters == nil {
		return errors.New("submit order command requires validator and submitters")
	}
	order, err := c.validator.Validate(msg.Form)
	if err != nil {
		var verr *printshop.ValidationError
		if errors.As(err, &verr) {
			c.telemetry.Record(ctx, "printshop.command.order_invalid", map[string]any{
				"session_id": msg.SessionID,
				"fields":     verr.Fields.Fields(),
			})
		}
		return err
	}
	ctx = printshop.ContextWithSession(ctx, msg.SessionID)
	receipt, err := c.submitters.Submit(ctx, msg.SessionID, order)
	if err != nil {
		return err
	}
	if msg.Receipt != nil {
		*msg.Receipt = receipt
	}
	c.telemetry.Record(ctx, "printshop.command.order_submitted", map[string]any{
		"session_id": msg.SessionID,
		"order_id":   receipt.Order.ID,
	})
	return nil
}
