package browser

import (
	"context"
	"fmt"
	"time"

	"applynerd-mcp-server/internal/autofill"

	"github.com/go-rod/rod"
)

// Actuator exposes the page as a plan actuator.
func (p *rodPage) Actuator() autofill.Actuator {
	return &rodActuator{page: p.page}
}

type rodActuator struct {
	page *rod.Page
}

const elementTimeout = 5 * time.Second

func (a *rodActuator) element(ctx context.Context, selector string) (*rod.Element, error) {
	el, err := a.page.Context(ctx).Timeout(elementTimeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("locate %s: %w", selector, err)
	}
	return el, nil
}

func (a *rodActuator) Fill(ctx context.Context, selector, value string) error {
	el, err := a.element(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("input into %s: %w", selector, err)
	}
	return nil
}

func (a *rodActuator) SelectOption(ctx context.Context, selector, label string) error {
	el, err := a.element(ctx, selector)
	if err != nil {
		return err
	}
	// Visible option text first, falling back to the value attribute.
	if err := el.Select([]string{label}, true, "text"); err != nil {
		if err := el.Select([]string{label}, true, "value"); err != nil {
			return fmt.Errorf("select %q in %s: %w", label, selector, err)
		}
	}
	return nil
}

func (a *rodActuator) SetChecked(ctx context.Context, selector string, checked bool) error {
	el, err := a.element(ctx, selector)
	if err != nil {
		return err
	}
	current, err := el.Property("checked")
	if err != nil {
		return fmt.Errorf("read checked state of %s: %w", selector, err)
	}
	if current.Bool() == checked {
		return nil
	}
	if err := el.Click("left", 1); err != nil {
		return fmt.Errorf("toggle %s: %w", selector, err)
	}
	return nil
}

func (a *rodActuator) Click(ctx context.Context, selector string) error {
	el, err := a.element(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.Click("left", 1); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}
