package relay

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"securejoin/internal/domain"
)

// maxEnvelopeBytes bounds a single posted envelope.
const maxEnvelopeBytes = 1 << 20

var envelopesHandled = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "securejoin_relay_envelopes_total",
		Help: "Number of envelopes handled by the relay",
	},
	[]string{"op"},
)

func init() {
	prometheus.MustRegister(envelopesHandled)
}

// Server exposes a Mailbox over HTTP.
type Server struct {
	box Mailbox
}

// NewServer returns the relay routes over box.
func NewServer(box Mailbox) http.Handler {
	s := &Server{box: box}

	r := mux.NewRouter()
	r.HandleFunc("/msg/{user}", s.HandlePush()).Methods(http.MethodPost)
	r.HandleFunc("/msg/{user}", s.HandleFetch()).Methods(http.MethodGet)
	r.HandleFunc("/msg/{user}/ack", s.HandleAck()).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// HandlePush queues the posted envelope for {user}.
func (s *Server) HandlePush() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := domain.Username(mux.Vars(r)["user"])

		var env domain.Envelope
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEnvelopeBytes)).Decode(&env); err != nil {
			http.Error(w, "bad envelope", http.StatusBadRequest)
			return
		}
		if env.To != user {
			http.Error(w, "recipient does not match mailbox", http.StatusBadRequest)
			return
		}
		if err := s.box.Push(r.Context(), user, env); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "HandlePush",
				"user":     user,
				"error":    err,
			}).Error("Push failed")
			http.Error(w, "push failed", http.StatusInternalServerError)
			return
		}
		envelopesHandled.With(prometheus.Labels{"op": "push"}).Inc()
		logrus.WithFields(logrus.Fields{
			"function": "HandlePush",
			"from":     env.From,
			"to":       user,
			"id":       env.ID,
		}).Debug("Queued envelope")
		w.WriteHeader(http.StatusOK)
	}
}

// HandleFetch returns the head of {user}'s queue.
func (s *Server) HandleFetch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := domain.Username(mux.Vars(r)["user"])

		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				http.Error(w, "bad limit", http.StatusBadRequest)
				return
			}
			limit = n
		}
		envs, err := s.box.Peek(r.Context(), user, limit)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "HandleFetch",
				"user":     user,
				"error":    err,
			}).Error("Fetch failed")
			http.Error(w, "fetch failed", http.StatusInternalServerError)
			return
		}
		if envs == nil {
			envs = []domain.Envelope{}
		}
		envelopesHandled.With(prometheus.Labels{"op": "fetch"}).Add(float64(len(envs)))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(envs)
	}
}

// HandleAck drops the first count envelopes of {user}'s queue.
func (s *Server) HandleAck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := domain.Username(mux.Vars(r)["user"])

		var req struct {
			Count int `json:"count"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil || req.Count < 0 {
			http.Error(w, "bad ack", http.StatusBadRequest)
			return
		}
		if err := s.box.Drop(r.Context(), user, req.Count); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "HandleAck",
				"user":     user,
				"error":    err,
			}).Error("Ack failed")
			http.Error(w, "ack failed", http.StatusInternalServerError)
			return
		}
		envelopesHandled.With(prometheus.Labels{"op": "ack"}).Add(float64(req.Count))
		w.WriteHeader(http.StatusOK)
	}
}
