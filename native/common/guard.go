package common

import "errors"

var ErrModulePaused = errors.New("module paused")

// PauseView reports whether a named ledger module is administratively halted.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard aborts an operation when the owning module has been paused.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}
