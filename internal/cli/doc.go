// Package cli provides the interactive vetintake operator console.
//
// It wires configuration, the record store, object storage and the
// recognition engines, then runs a REPL that drives the intake flow:
//
//   - login with a signed operator token and select a patient
//   - scan a vaccination card, review and edit the extracted candidates,
//     commit or cancel them
//   - dictate into the consult note fields, or transcribe a recorded consult
//     into SOAP sections
//
// The REPL is started via App.Run(ctx), which blocks until the operator exits.
package cli
