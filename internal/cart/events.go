package cart

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"FlashIt/pkg/kit"
)

const (
	eventBuffer    = 16
	eventKeepAlive = 25 * time.Second
)

// events streams cart changes as server-sent events so a page can redraw
// when another tab or process changes the same cart. The first event is a
// "snapshot" of the current totals.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		kit.WriteError(w, r, http.StatusNotImplemented, "streaming unsupported", nil)
		return
	}

	c, ok := s.cartFor(w, r)
	if !ok {
		return
	}

	ch := make(chan Change, eventBuffer)
	unsubscribe := c.Subscribe(func(change Change) {
		select {
		case ch <- change:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, Change{Kind: "snapshot", Totals: c.Totals()}); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(eventKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case change := <-ch:
			if err := writeEvent(w, change); err != nil {
				return
			}
		}
		flusher.Flush()
	}
}

func writeEvent(w http.ResponseWriter, ch Change) error {
	data, err := json.Marshal(ch.Totals)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ch.Kind, data)
	return err
}
