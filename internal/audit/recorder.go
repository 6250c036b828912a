// Package audit appends immutable trail entries for every state-changing
// operation. Recording is best-effort by design: a failed audit write is
// logged and swallowed, never surfaced to the caller, so audit-trail
// availability cannot block a business operation.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bodasuite/boda-suite/internal/repository"
)

// Audit actions form a closed set.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Recorder drains a buffered channel with a single worker goroutine so the
// request path never waits on the audit insert. Entries are dropped (and the
// drop logged) when the buffer is saturated.
type Recorder struct {
	audits  *repository.AuditRepo
	entries chan repository.AuditEntry
	wg      sync.WaitGroup
	once    sync.Once
	done    chan struct{}
}

// NewRecorder starts the background worker. A buffer of 256 comfortably
// covers bursts from a single-tenant admin UI.
func NewRecorder(audits *repository.AuditRepo) *Recorder {
	r := &Recorder{
		audits:  audits,
		entries: make(chan repository.AuditEntry, 256),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues one audit entry. It never blocks and never returns an
// error; the timestamp is stamped here so entry order reflects when the
// mutation happened, not when the worker got to it.
func (r *Recorder) Record(tabla, accion, descripcion string, usuarioID uint64, usuarioEmail string) {
	entry := repository.AuditEntry{
		Tabla:        tabla,
		Accion:       accion,
		Descripcion:  descripcion,
		UsuarioID:    usuarioID,
		UsuarioEmail: usuarioEmail,
		Fecha:        time.Now().UTC().Format(time.RFC3339),
	}
	r.wg.Add(1)
	select {
	case r.entries <- entry:
	default:
		r.wg.Done()
		slog.Warn("audit: buffer full, entry dropped",
			"tabla", tabla, "accion", accion)
	}
}

// Flush blocks until every entry recorded so far has been written or
// rejected. Used on shutdown and by tests.
func (r *Recorder) Flush() {
	r.wg.Wait()
}

// Close flushes pending entries and stops the worker.
func (r *Recorder) Close() {
	r.once.Do(func() {
		r.wg.Wait()
		close(r.entries)
		<-r.done
	})
}

func (r *Recorder) run() {
	defer close(r.done)
	for entry := range r.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.audits.Insert(ctx, &entry); err != nil {
			slog.Error("audit: insert failed",
				"tabla", entry.Tabla, "accion", entry.Accion, "error", err)
		}
		cancel()
		r.wg.Done()
	}
}
