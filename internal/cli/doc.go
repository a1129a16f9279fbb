// Package cli provides the interactive LifeAuth command-line front end.
//
// It wires configuration, the credential store, the backup vault, a sensor
// provider and the authentication engine into an interactive REPL. Typical
// flow: load config, open the backends, then execute user commands until
// exit.
//
// Key features:
//   - Enroll / Verify / Rebaseline / Reset against the engine
//   - List / Info / Delete enrolled credentials
//   - Export / Import credential files, Backup / Restore via the vault
//   - Sensor maintenance: state, clean, calibrate
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
