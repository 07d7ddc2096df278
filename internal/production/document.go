package production

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/comalice/tickfsm/internal/primitives"
)

// Document is the YAML form of a machine structure. Behavior is referenced by
// name (guard, action) and resolved when the machine is built; timer
// triggers dispatch the named event.
type Document struct {
	ID          string          `yaml:"id"`
	Fingerprint string          `yaml:"fingerprint,omitempty"`
	States      []StateDoc      `yaml:"states"`
	Regions     []RegionDoc     `yaml:"regions"`
	Transitions []TransitionDoc `yaml:"transitions,omitempty"`
}

type StateDoc struct {
	ID     string     `yaml:"id"`
	Timers []TimerDoc `yaml:"timers,omitempty"`
	Sub    *Document  `yaml:"sub,omitempty"`
}

type TimerDoc struct {
	ID         string `yaml:"id"`
	Timeout    string `yaml:"timeout"`
	Renew      bool   `yaml:"renew,omitempty"`
	Disabled   bool   `yaml:"disabled,omitempty"`
	KeepOnExit bool   `yaml:"keepOnExit,omitempty"`
	Event      string `yaml:"event,omitempty"`
}

type RegionDoc struct {
	Name       string         `yaml:"name,omitempty"`
	Initial    string         `yaml:"initial"`
	States     []string       `yaml:"states,omitempty"`
	Interrupts []InterruptDoc `yaml:"interrupts,omitempty"`
}

type InterruptDoc struct {
	State  string   `yaml:"state"`
	Resume []string `yaml:"resume,omitempty"`
}

type TransitionDoc struct {
	Name           string `yaml:"name,omitempty"`
	Source         string `yaml:"source"`
	Event          string `yaml:"event"`
	Target         string `yaml:"target"`
	Kind           string `yaml:"kind,omitempty"`
	Guard          string `yaml:"guard,omitempty"`
	Action         string `yaml:"action,omitempty"`
	ShallowHistory bool   `yaml:"shallowHistory,omitempty"`
	Priority       int    `yaml:"priority,omitempty"`
}

// ExportYAML serializes the machine structure. Closures without a name are
// not representable and are omitted.
func (v *DefaultVisualizer) ExportYAML(config *primitives.MachineConfig) ([]byte, error) {
	doc := toDocument(config)
	doc.Fingerprint = primitives.Fingerprint(config)
	return yaml.Marshal(doc)
}

// LoadYAML parses a Document into a MachineConfig. Triggers are built from
// timer event names; named guards and actions are left for a resolver.
func LoadYAML(data []byte) (*primitives.MachineConfig, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse machine document: %w", err)
	}
	return doc.MachineConfig()
}

func toDocument(config *primitives.MachineConfig) Document {
	doc := Document{ID: config.ID}
	for _, s := range config.States {
		sd := StateDoc{ID: string(s.ID)}
		for _, t := range s.Timers {
			sd.Timers = append(sd.Timers, TimerDoc{
				ID:         string(t.ID),
				Timeout:    t.Settings.Timeout.String(),
				Renew:      t.Settings.Renew,
				Disabled:   !t.Settings.Enabled,
				KeepOnExit: !t.Settings.CancelOnStateExit,
			})
		}
		if s.Sub != nil {
			sub := toDocument(s.Sub)
			sd.Sub = &sub
		}
		doc.States = append(doc.States, sd)
	}
	for _, r := range config.Regions {
		rd := RegionDoc{Name: r.Name, Initial: string(r.Initial)}
		for _, id := range r.States {
			rd.States = append(rd.States, string(id))
		}
		for _, intr := range r.Interrupts {
			id := InterruptDoc{State: string(intr.State)}
			for _, k := range intr.Resume {
				id.Resume = append(id.Resume, string(k))
			}
			rd.Interrupts = append(rd.Interrupts, id)
		}
		doc.Regions = append(doc.Regions, rd)
	}
	for _, t := range config.Transitions {
		doc.Transitions = append(doc.Transitions, TransitionDoc{
			Name:           t.Name,
			Source:         string(t.Source),
			Event:          string(t.Event),
			Target:         string(t.Target),
			Kind:           t.Kind.String(),
			Guard:          t.GuardName,
			Action:         t.ActionName,
			ShallowHistory: t.ShallowHistory,
			Priority:       t.Priority,
		})
	}
	return doc
}

// MachineConfig converts the document into a declaration.
func (d *Document) MachineConfig() (*primitives.MachineConfig, error) {
	cfg := &primitives.MachineConfig{ID: d.ID}
	for _, sd := range d.States {
		st := primitives.NewStateConfig(primitives.StateID(sd.ID))
		for _, td := range sd.Timers {
			timeout, err := time.ParseDuration(td.Timeout)
			if err != nil {
				return nil, fmt.Errorf("state %s timer %s: %w", sd.ID, td.ID, err)
			}
			tc := primitives.TimerConfig{
				ID: primitives.TimerID(td.ID),
				Settings: primitives.TimerSettings{
					Enabled:           !td.Disabled,
					Timeout:           timeout,
					Renew:             td.Renew,
					CancelOnStateExit: !td.KeepOnExit,
				},
			}
			if td.Event != "" {
				ev := td.Event
				tc.Trigger = func(*primitives.EventContext, any) (primitives.Event, bool) {
					return primitives.NewEvent(ev, nil), true
				}
			}
			st.AddTimer(tc)
		}
		if sd.Sub != nil {
			sub, err := sd.Sub.MachineConfig()
			if err != nil {
				return nil, fmt.Errorf("sub-machine of %s: %w", sd.ID, err)
			}
			st.WithSubMachine(sub)
		}
		cfg.States = append(cfg.States, st)
	}
	for _, rd := range d.Regions {
		rc := primitives.RegionConfig{Name: rd.Name, Initial: primitives.StateID(rd.Initial)}
		for _, id := range rd.States {
			rc.States = append(rc.States, primitives.StateID(id))
		}
		for _, intr := range rd.Interrupts {
			ic := primitives.InterruptConfig{State: primitives.StateID(intr.State)}
			for _, k := range intr.Resume {
				ic.Resume = append(ic.Resume, primitives.EventKey(k))
			}
			rc.Interrupts = append(rc.Interrupts, ic)
		}
		cfg.Regions = append(cfg.Regions, rc)
	}
	for _, td := range d.Transitions {
		tc := primitives.TransitionConfig{
			Name:           td.Name,
			Source:         primitives.StateID(td.Source),
			Event:          primitives.EventKey(td.Event),
			Target:         primitives.StateID(td.Target),
			GuardName:      td.Guard,
			ActionName:     td.Action,
			ShallowHistory: td.ShallowHistory,
			Priority:       td.Priority,
		}
		switch td.Kind {
		case "", "external":
		case "internal":
			tc.Kind = primitives.Internal
		default:
			return nil, fmt.Errorf("transition %s: unknown kind %q", tc.Label(), td.Kind)
		}
		cfg.Transitions = append(cfg.Transitions, tc)
	}
	return cfg, nil
}
