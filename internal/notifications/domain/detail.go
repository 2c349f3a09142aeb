package domain

// Detail carries the kind-specific facts that led to a notification.
// Each kind has exactly one detail type.
type Detail interface {
	Kind() Kind
}

// MicroWinSource says what kind of completion produced a micro-win.
type MicroWinSource string

const (
	MicroWinFromTodo  MicroWinSource = "todo"
	MicroWinFromHabit MicroWinSource = "habit"
)

// MicroWinDetail describes a recent completion.
type MicroWinDetail struct {
	Source MicroWinSource
	Name   string
}

func (MicroWinDetail) Kind() Kind { return KindMicroWin }

// BreatheReason says why a breathing prompt fired.
type BreatheReason string

const (
	BreatheAfternoonDip BreatheReason = "afternoon_dip"
	BreatheStressSignal BreatheReason = "stress_signal"
)

// BreatheDetail describes a breathing prompt.
type BreatheDetail struct {
	Reason BreatheReason
	Mood   string
}

func (BreatheDetail) Kind() Kind { return KindBreathe }

// GentlePlanDetail records which conditions triggered a gentle plan.
type GentlePlanDetail struct {
	LowEnergy    bool
	NoTimeBlocks bool
	Energy       int
}

func (GentlePlanDetail) Kind() Kind { return KindGentlePlan }

// FocusWindowDetail records which conditions opened a focus window.
type FocusWindowDetail struct {
	MorningPeak     bool
	HighEnergyFocus bool
	Energy          int
	Focus           int
}

func (FocusWindowDetail) Kind() Kind { return KindFocusWindow }
