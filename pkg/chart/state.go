package chart

import "github.com/trgrimm/t2-mewma/pkg/fsm"

const (
	// Monitoring is the armed state: every recorded observation is scored
	// against the control limits
	Monitoring = fsm.State("monitoring")
	// Alarmed is entered when any statistic exceeds its limit and holds
	// until the monitor is reset
	Alarmed = fsm.State("alarmed")
)

func newMachine() *fsm.Machine {
	return fsm.NewMachine(Monitoring,
		fsm.T(Monitoring, Alarmed),
		fsm.T(Alarmed, Monitoring),
	)
}
