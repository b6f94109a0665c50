package ingest

import (
	"errors"
	"fmt"
	"net/http"

	"geolayers/internal/geom"
)

// Severity of a user-visible message.
type Severity string

const (
	Info    Severity = "info"
	Error   Severity = "error"
	Success Severity = "success"
)

// Message is a toast. Sticky messages stay until dismissed; the others
// expire after the configured duration.
type Message struct {
	Text     string
	Severity Severity
	Sticky   bool
}

// Notifier receives messages and layer-set changes. Calls happen on the
// goroutine that commits imports.
type Notifier interface {
	Notify(Message)
	Dismiss()
	LayersChanged()
}

type nopNotifier struct{}

func (nopNotifier) Notify(Message) {}
func (nopNotifier) Dismiss()       {}
func (nopNotifier) LayersChanged() {}

// HTTPError reports a non-2xx response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d (%s) fetching %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// ColumnChoice suspends a CSV import until the latitude and longitude
// columns are chosen; pass Pending to Controller.ResolveColumns.
type ColumnChoice struct {
	Pending Loaded
}

func (e *ColumnChoice) Error() string {
	return fmt.Sprintf("choose the latitude and longitude columns for %q", e.Pending.Name)
}

// Headers lists the candidate columns.
func (e *ColumnChoice) Headers() []string {
	if e.Pending.Table == nil {
		return nil
	}
	return e.Pending.Table.Headers
}

// severityOf reports empty CSV results as warnings and everything else as
// errors.
func severityOf(err error) Severity {
	var empty *geom.EmptyResultError
	if errors.As(err, &empty) && empty.Format == geom.CSV {
		return Info
	}
	return Error
}
