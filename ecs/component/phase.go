package component

import "strings"

// Kind selects which state machine drives an actor.
type Kind int

const (
	KindRetractable Kind = iota + 1
	KindVibrating
	KindDropPlatform
)

func (k Kind) String() string {
	switch k {
	case KindRetractable:
		return "retractable"
	case KindVibrating:
		return "vibrating"
	case KindDropPlatform:
		return "drop_platform"
	default:
		return "unknown"
	}
}

func (k Kind) Valid() bool {
	return k >= KindRetractable && k <= KindDropPlatform
}

func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "retractable", "spike", "blade":
		return KindRetractable, true
	case "vibrating":
		return KindVibrating, true
	case "drop_platform", "drop", "platform":
		return KindDropPlatform, true
	}
	return 0, false
}

// Phase is a closed set shared by all kinds; ValidFor restricts it per kind.
type Phase uint8

const (
	PhaseNone Phase = iota

	// retractable
	PhaseWaiting
	PhaseExtending
	PhaseRetracting
	PhaseWaitingForNext
	PhaseChainAdvanced
	PhaseCycleComplete

	// vibrating
	PhaseDormant
	PhaseFadeIn
	PhaseHold
	PhaseFadeOut
	PhasePermanentlyHidden

	// drop platform
	PhaseIdle
	PhaseDropping
	PhaseHolding
	PhaseRaising
	PhaseDisabled
)

var phaseNames = map[Phase]string{
	PhaseNone:              "none",
	PhaseWaiting:           "waiting",
	PhaseExtending:         "extending",
	PhaseRetracting:        "retracting",
	PhaseWaitingForNext:    "waitingForNext",
	PhaseChainAdvanced:     "chainAdvanced",
	PhaseCycleComplete:     "cycleComplete",
	PhaseDormant:           "dormant",
	PhaseFadeIn:            "fadeIn",
	PhaseHold:              "hold",
	PhaseFadeOut:           "fadeOut",
	PhasePermanentlyHidden: "permanentlyHidden",
	PhaseIdle:              "idle",
	PhaseDropping:          "dropping",
	PhaseHolding:           "waiting",
	PhaseRaising:           "raising",
	PhaseDisabled:          "disabled",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// ValidFor reports whether p belongs to the state machine of kind k.
func (p Phase) ValidFor(k Kind) bool {
	switch k {
	case KindRetractable:
		return p >= PhaseWaiting && p <= PhaseCycleComplete
	case KindVibrating:
		return p >= PhaseDormant && p <= PhasePermanentlyHidden
	case KindDropPlatform:
		return p >= PhaseIdle && p <= PhaseDisabled
	}
	return false
}

// InitialPhase is the phase an actor of kind k is created in.
func InitialPhase(k Kind) Phase {
	switch k {
	case KindRetractable:
		return PhaseWaiting
	case KindVibrating:
		return PhaseDormant
	case KindDropPlatform:
		return PhaseIdle
	}
	return PhaseNone
}
