package reader

import "context"

// EventKind tells Ingest events apart.
type EventKind int

const (
	EventProgress EventKind = iota
	EventComplete
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventComplete:
		return "complete"
	case EventError:
		return "error"
	}
	return "unknown"
}

// Event is a message from an ingestion worker. Progress events carry Page
// and Total; the terminal Complete event carries the document; the terminal
// Error event carries Err.
type Event struct {
	Kind     EventKind
	Page     int
	Total    int
	Document *Document
	Err      error
}

// TotalWords is the number of tokens in a Complete event.
func (e Event) TotalWords() int {
	if e.Document == nil {
		return 0
	}
	return len(e.Document.Tokens)
}

// Ingest extracts filename on its own goroutine. The returned channel yields
// zero or more progress events followed by exactly one Complete or Error
// event, then closes. Canceling ctx ends extraction with an Error event.
// Consumers must drain the channel until it closes.
func Ingest(ctx context.Context, filename string) <-chan Event {
	events := make(chan Event, 1)

	go func() {
		defer close(events)

		send := func(e Event) bool {
			select {
			case events <- e:
				return true
			case <-ctx.Done():
				return false
			}
		}

		doc, err := ExtractDocument(ctx, filename, func(done, total int) {
			send(Event{Kind: EventProgress, Page: done, Total: total})
		})
		if err == nil && len(doc.Tokens) == 0 {
			err = ErrNoText
		}
		if err != nil {
			events <- Event{Kind: EventError, Err: err}
			return
		}
		if !send(Event{Kind: EventComplete, Page: doc.TotalPages, Total: doc.TotalPages, Document: doc}) {
			events <- Event{Kind: EventError, Err: canceled(ctx)}
		}
	}()

	return events
}
