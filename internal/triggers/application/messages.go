package application

import (
	"fmt"

	notifications "github.com/felixgeelhaar/flowstate/internal/notifications/domain"
	"github.com/felixgeelhaar/flowstate/internal/triggers/domain"
)

func (d *Detector) microWinSpec(detail notifications.MicroWinDetail) notifications.Spec {
	spec := d.baseSpec(notifications.KindMicroWin, detail)
	switch detail.Source {
	case notifications.MicroWinFromTodo:
		spec.Title = "Micro-win unlocked!"
		spec.Message = "You just finished a task. Small wins build real momentum."
		if detail.Name != "" {
			spec.Message = fmt.Sprintf("You just finished %q. Small wins build real momentum.", detail.Name)
		}
		spec.Actions = d.actions(
			d.navigate("next-todo", "Pick the next one", ScreenTodos),
			d.secondary("view-insights", "See your progress", ScreenInsights),
		)
	default:
		spec.Title = "Habit done today"
		spec.Message = "Showing up counts. Keep the streak rolling."
		if detail.Name != "" {
			spec.Message = fmt.Sprintf("%s is done for today. Keep the streak rolling.", detail.Name)
		}
		spec.Actions = d.actions(
			d.navigate("view-habits", "View habits", ScreenHabits),
			d.secondary("check-in", "Log how you feel", ScreenCheckIn),
		)
	}
	return spec
}

func (d *Detector) breatheSpec(detail notifications.BreatheDetail) notifications.Spec {
	spec := d.baseSpec(notifications.KindBreathe, detail)
	spec.Title = "Time for a breather"
	if detail.Reason == notifications.BreatheStressSignal {
		spec.Message = "Things feel heavy right now. One minute of slow breathing can take the edge off."
	} else {
		spec.Message = "The afternoon dip is here. A short breathing break resets your focus."
	}
	spec.Actions = d.actions(
		d.navigate("breathe", "Breathe with me", ScreenBreathe),
		d.secondary("check-in", "Check in first", ScreenCheckIn),
	)
	return spec
}

func (d *Detector) gentlePlanSpec(detail notifications.GentlePlanDetail) notifications.Spec {
	spec := d.baseSpec(notifications.KindGentlePlan, detail)
	switch {
	case detail.LowEnergy && detail.NoTimeBlocks:
		spec.Title = "Let's keep today gentle"
		spec.Message = "Energy is low and nothing is planned yet. One small block is enough to start."
	case detail.LowEnergy:
		spec.Title = "Running low on energy"
		spec.Message = "Try a lighter plan today with fewer commitments and more breaks."
	default:
		spec.Title = "Your morning is open"
		spec.Message = "No time blocks yet. Planning a couple now makes the day easier to start."
	}
	spec.Actions = d.actions(
		d.navigate("plan", "Plan gently", ScreenPlanner),
		d.secondary("view-todos", "Pick one todo", ScreenTodos),
	)
	return spec
}

func (d *Detector) focusWindowSpec(detail notifications.FocusWindowDetail) notifications.Spec {
	spec := d.baseSpec(notifications.KindFocusWindow, detail)
	spec.Title = "Focus window open"
	switch {
	case detail.MorningPeak && detail.HighEnergyFocus:
		spec.Message = "Peak morning hours and high energy. Protect this window for your deepest work."
	case detail.HighEnergyFocus:
		spec.Message = "Energy and focus are both high right now. A great moment for deep work."
	default:
		spec.Message = "Mornings are your peak. Block out time for what matters most."
	}
	spec.Actions = d.actions(
		d.navigate("start-focus", "Start focus session", ScreenFocus),
		d.secondary("block-time", "Block the time", ScreenPlanner),
	)
	return spec
}

func (d *Detector) baseSpec(kind notifications.Kind, detail notifications.Detail) notifications.Spec {
	p := domain.PresentationFor(kind)
	return notifications.Spec{
		Kind:     kind,
		Icon:     p.Icon,
		Duration: p.Duration,
		Detail:   detail,
	}
}

func (d *Detector) navigate(id, label string, screen Screen) notifications.Action {
	return notifications.Action{
		ID:      id,
		Label:   label,
		Variant: notifications.VariantPrimary,
		Handler: func() { d.navigator.Navigate(screen) },
	}
}

func (d *Detector) secondary(id, label string, screen Screen) notifications.Action {
	a := d.navigate(id, label, screen)
	a.Variant = notifications.VariantSecondary
	return a
}

// actions appends the snooze button every trigger offers. It carries no
// handler: Engine.Invoke applies it. Dismissal is the renderer's close
// control.
func (d *Detector) actions(primary, secondary notifications.Action) []notifications.Action {
	return []notifications.Action{
		primary,
		secondary,
		{ID: notifications.ActionSnooze, Label: "Remind me later", Variant: notifications.VariantGhost},
	}
}
