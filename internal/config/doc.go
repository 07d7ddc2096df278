// Package config loads runtime settings for a machine and turns them into
// core options.
//
// Values are layered: Default, then an optional YAML file, then environment
// variables (TICKFSM_*), with a .env file in the working directory loaded
// first if present.
//
//	cfg, err := config.Load("tickfsm.yaml")
//	if err != nil {
//		return err
//	}
//	w, err := cfg.MachineOptions(logger, prometheus.DefaultRegisterer)
//	if err != nil {
//		return err
//	}
//	m, err := core.NewMachine(def, w.Options...)
package config
