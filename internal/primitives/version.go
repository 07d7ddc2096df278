// Fingerprint utilities for MachineConfig.
package primitives

import (
	"crypto/sha256"
	"fmt"
	"io"
)

// Fingerprint computes a deterministic digest of the machine structure
// (states, regions, interrupts, timers, transitions). Behavior closures and
// state data are not part of it. Used to tag exports and diagnostics.
func Fingerprint(config *MachineConfig) string {
	h := sha256.New()
	writeStructure(h, config)
	return fmt.Sprintf("%x", h.Sum(nil)[:8])
}

func writeStructure(w io.Writer, config *MachineConfig) {
	fmt.Fprintf(w, "machine %s\n", config.ID)
	for _, s := range config.States {
		fmt.Fprintf(w, "state %s\n", s.ID)
		for _, timer := range s.Timers {
			fmt.Fprintf(w, "timer %s %+v\n", timer.ID, timer.Settings)
		}
		if s.Sub != nil {
			writeStructure(w, s.Sub)
		}
	}
	for i, r := range config.Regions {
		fmt.Fprintf(w, "region %d %s %v\n", i, r.Initial, r.States)
		for _, intr := range r.Interrupts {
			fmt.Fprintf(w, "interrupt %s %v\n", intr.State, intr.Resume)
		}
	}
	for _, t := range config.Transitions {
		fmt.Fprintf(w, "transition %s %s %s %s %d %v\n", t.Source, t.Event, t.Target, t.Kind, t.Priority, t.ShallowHistory)
	}
}
