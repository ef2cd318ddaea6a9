// Package httpsim exposes a dispatch.Dispatcher over HTTP: POST a
// request, GET a server-sent stream of every response, GET a snapshot
// of whatever DUT is currently loaded. It never reaches past the
// dispatcher into engine or dut: everything here is wire marshaling and
// fan-out.
package httpsim

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sarchlab/oombak/dispatch"
	"github.com/sarchlab/oombak/message"
)

// Server adapts a dispatch.Dispatcher to HTTP.
type Server struct {
	dispatcher *dispatch.Dispatcher
	broker     *eventBroker
	router     *mux.Router
}

// NewServer builds a Server routing requests to dispatcher and
// registers itself as a listener so /events can stream every response.
func NewServer(dispatcher *dispatch.Dispatcher) *Server {
	s := &Server{
		dispatcher: dispatcher,
		broker:     newEventBroker(),
	}
	dispatcher.Register(s.broker)

	r := mux.NewRouter()
	r.HandleFunc("/requests", s.handleRequests).Methods(http.MethodPost)
	r.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/signals", s.handleSignals).Methods(http.MethodGet)
	s.router = r
	return s
}

// ServeHTTP lets Server be passed directly to http.ListenAndServe.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type submittedResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleRequests(w http.ResponseWriter, r *http.Request) {
	var payload message.RequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if payload.Kind == message.KindTerminate {
		http.Error(w, "Terminate is not accepted over HTTP; close the connection instead", http.StatusBadRequest)
		return
	}

	id := s.dispatcher.Submit(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(submittedResponse{ID: id})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := s.broker.subscribe()
	defer s.broker.unsubscribe(sub)

	for {
		select {
		case <-r.Context().Done():
			return
		case response, ok := <-sub:
			if !ok {
				return
			}
			data, err := json.Marshal(response)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	loaded, ok := s.broker.loadedDut()
	if !ok {
		http.Error(w, "no DUT loaded", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loaded)
}
