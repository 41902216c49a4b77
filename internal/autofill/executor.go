package autofill

import (
	"context"

	"github.com/rs/zerolog"
)

// Actuator mutates controls on a live page by selector.
type Actuator interface {
	Fill(ctx context.Context, selector, value string) error
	SelectOption(ctx context.Context, selector, label string) error
	SetChecked(ctx context.Context, selector string, checked bool) error
	Click(ctx context.Context, selector string) error
}

// ExecReport is the outcome of applying one plan.
type ExecReport struct {
	Applied []FillAction `json:"applied"`
	Blocked []string     `json:"blocked"`
}

// Executor applies plan actions in order. Failures are isolated per action:
// a failing action lands in Blocked and execution continues. There is no
// rollback and no retry.
type Executor struct {
	Actuator Actuator
	Log      zerolog.Logger
}

func (e *Executor) Execute(ctx context.Context, actions []FillAction) *ExecReport {
	report := &ExecReport{Applied: []FillAction{}, Blocked: []string{}}

	for _, a := range actions {
		if a.Action == ActionSkip {
			continue
		}
		if a.RequiresUserReview {
			report.Blocked = append(report.Blocked, fieldNameOf(&a))
			continue
		}

		selector := a.Selector
		if selector == "" && a.FieldID != "" {
			selector = `[data-af-field="` + a.FieldID + `"]`
		}
		if selector == "" {
			report.Blocked = append(report.Blocked, fieldNameOf(&a))
			continue
		}

		var err error
		switch a.Action {
		case ActionFill:
			err = e.Actuator.Fill(ctx, selector, a.Value)
		case ActionSelect:
			err = e.Actuator.SelectOption(ctx, selector, a.Value)
		case ActionCheck:
			err = e.Actuator.SetChecked(ctx, selector, true)
		case ActionUncheck:
			err = e.Actuator.SetChecked(ctx, selector, false)
		case ActionClick:
			err = e.Actuator.Click(ctx, selector)
		default:
			// upload and anything unrecognized need a human.
			report.Blocked = append(report.Blocked, fieldNameOf(&a))
			continue
		}

		if err != nil {
			e.Log.Warn().Err(err).Str("field", fieldNameOf(&a)).Str("action", a.Action).Msg("action failed")
			report.Blocked = append(report.Blocked, fieldNameOf(&a))
			continue
		}
		report.Applied = append(report.Applied, a)
	}

	return report
}

func fieldNameOf(a *FillAction) string {
	switch {
	case a.Field != "":
		return a.Field
	case a.FieldID != "":
		return a.FieldID
	case a.Selector != "":
		return a.Selector
	default:
		return a.Label
	}
}
