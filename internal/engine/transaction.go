package engine

import (
	"fmt"
	"log/slog"
)

// Transaction runs fn so that every edit intent it issues undoes as one
// step. Intents called from fn leave the group open. If fn returns an
// error its edits are reverted and the error is returned.
//
// fn runs without the editor lock held and must call back into the editor
// through its public methods. Transactions do not nest. Undo and Redo are
// ignored while fn runs. A panic in fn closes the group before it
// propagates.
func (e *Editor) Transaction(label string, fn func() error) error {
	e.mu.Lock()
	if e.readOnly {
		e.mu.Unlock()
		return ErrReadOnly
	}
	if e.txDepth > 0 {
		e.mu.Unlock()
		return ErrNestedTransaction
	}
	e.txDepth++
	hist, buf, cur := e.hist, e.buf, e.cur
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.txDepth--
		e.afterEditLocked()
	}()

	err := hist.Transaction(label, buf, cur, fn)
	if err != nil {
		e.logger.Debug("transaction rolled back",
			slog.String("label", label),
			slog.Any("error", err))
		return fmt.Errorf("transaction %q: %w", label, err)
	}
	return nil
}
