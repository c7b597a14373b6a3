package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/fcnordhavn/matchday/internal/club"
	"github.com/fcnordhavn/matchday/internal/ingest"
	"github.com/fcnordhavn/matchday/internal/match"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID != "" {
			log.Info("Received request to clear a specific match", "matchID", matchID)
			s.Store.ClearMatch(matchID)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Cleared match %s from store!", matchID)
			return
		}
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
	}
}

// MatchesHandler creates a match with its starting lineup on POST and
// lists all matches on GET.
func (s *Server) MatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req createMatchRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid JSON", http.StatusBadRequest)
				return
			}
			if req.ID == "" || req.Opponent == "" {
				http.Error(w, "id and opponent are required", http.StatusBadRequest)
				return
			}

			m := &match.Match{
				ID:       req.ID,
				Opponent: req.Opponent,
				Date:     req.Date,
				Status:   match.StatusScheduled,
			}
			if err := s.Store.CreateMatch(m, req.Starters); err != nil {
				log.Error("Failed to create match", "matchID", req.ID, "error", err)
				http.Error(w, "Failed to create match", http.StatusInternalServerError)
				return
			}
			log.Info("Match created", "matchID", req.ID, "opponent", req.Opponent, "starters", len(req.Starters))
			w.WriteHeader(http.StatusCreated)
			writeJSON(w, m)

		case http.MethodGet:
			matches, err := s.Store.GetAllMatches()
			if err != nil {
				log.Error("Failed to get matches from store", "error", err)
				http.Error(w, "Failed to get matches", http.StatusInternalServerError)
				return
			}
			writeJSON(w, matches)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// MatchStateHandler returns the live match record plus all player states.
func (s *Server) MatchStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "matchID is required", http.StatusBadRequest)
			return
		}

		m, err := s.Store.GetMatch(matchID)
		if errors.Is(err, club.ErrMatchNotFound) {
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("Failed to get match from store", "matchID", matchID, "error", err)
			http.Error(w, "Failed to get match", http.StatusInternalServerError)
			return
		}
		states, err := s.Store.GetPlayerStates(matchID)
		if err != nil {
			log.Error("Failed to get player states from store", "matchID", matchID, "error", err)
			http.Error(w, "Failed to get player states", http.StatusInternalServerError)
			return
		}
		writeJSON(w, matchStateResponse{Match: m, Players: states})
	}
}

// SubmitEventHandler runs a single raw row through the pipeline.
func (s *Server) SubmitEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "matchID is required", http.StatusBadRequest)
			return
		}

		var row ingest.Row
		if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		outcome, err := s.Processor.ProcessRow(r.Context(), matchID, row, isDryRunFromContext(r))
		if err != nil {
			writeProcessingError(w, matchID, err)
			return
		}
		writeJSON(w, outcome)
	}
}

// SubmitEventBatchHandler runs an ordered batch of rows through the
// pipeline. Processing stops at the first fatal error; validation and
// rule failures are reported per row and do not abort the batch.
func (s *Server) SubmitEventBatchHandler() http.HandlerFunc {
	type rowResult struct {
		Outcome *match.Outcome `json:"outcome,omitempty"`
		Error   string         `json:"error,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "matchID is required", http.StatusBadRequest)
			return
		}

		var rows []ingest.Row
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		isDryRun := isDryRunFromContext(r)
		results := make([]rowResult, 0, len(rows))
		for _, row := range rows {
			outcome, err := s.Processor.ProcessRow(r.Context(), matchID, row, isDryRun)
			if err != nil {
				if match.IsValidation(err) || match.IsRuleViolation(err) {
					results = append(results, rowResult{Error: err.Error()})
					continue
				}
				writeProcessingError(w, matchID, err)
				return
			}
			results = append(results, rowResult{Outcome: outcome})
		}
		writeJSON(w, results)
	}
}

// MatchMinutesHandler serves cumulative minutes per player for a match.
func (s *Server) MatchMinutesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "matchID is required", http.StatusBadRequest)
			return
		}

		mins, err := s.Processor.MatchMinutes(matchID)
		if err != nil {
			log.Error("Failed to compute match minutes", "matchID", matchID, "error", err)
			http.Error(w, "Failed to compute minutes", http.StatusInternalServerError)
			return
		}
		writeJSON(w, mins)
	}
}

// SeasonStatsHandler serves season-to-date aggregates, either for all
// players or for a single one via the 'player' query parameter.
func (s *Server) SeasonStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player := r.URL.Query().Get("player")
		if player != "" {
			stats, err := s.Store.GetSeasonStatsByPlayer(player)
			if err != nil {
				log.Error("Failed to get season stats", "player", player, "error", err)
				http.Error(w, "Player not found", http.StatusNotFound)
				return
			}
			writeJSON(w, stats)
			return
		}

		stats, err := s.Processor.SeasonStats()
		if err != nil {
			log.Error("Failed to get season stats", "error", err)
			http.Error(w, "Failed to get season stats", http.StatusInternalServerError)
			return
		}
		writeJSON(w, stats)
	}
}

// pushMessage is the wrapper Pub/Sub wraps around pushed messages.
type pushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data string `json:"data"` // base64-encoded message payload
	} `json:"message"`
}

// rowMessage is the MessagePack body published by the sheet-sync job.
type rowMessage struct {
	MatchID string     `msgpack:"match_id"`
	Row     ingest.Row `msgpack:"row"`
}

// PubSubRowsHandler receives raw rows pushed from the Pub/Sub
// subscription and feeds them through the pipeline. Rows rejected by
// validation are acked, since redelivery cannot fix them.
func (s *Server) PubSubRowsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received row message", "body", string(bodyBytes))

		var pubsubMsg pushMessage
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var msg rowMessage
		if err := s.pubsub.ProcessMessage(rawData, &msg); err != nil {
			log.Error("Failed to decode row message", "error", err)
			http.Error(w, "Invalid message data", http.StatusBadRequest)
			return
		}

		_, err = s.Processor.ProcessRow(r.Context(), msg.MatchID, msg.Row, isDryRunFromContext(r))
		if err != nil && !match.IsValidation(err) && !match.IsRuleViolation(err) {
			writeProcessingError(w, msg.MatchID, err)
			return
		}
		w.Write([]byte("OK"))
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// writeProcessingError maps pipeline errors to HTTP status codes:
// malformed input is the caller's fault, rule violations are
// unprocessable, contention asks the caller to retry, and anything
// else is a server failure.
func writeProcessingError(w http.ResponseWriter, matchID string, err error) {
	switch {
	case match.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case match.IsRuleViolation(err):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, match.ErrContention):
		http.Error(w, "Busy processing another event for this match, retry", http.StatusTooManyRequests)
	default:
		log.Error("Failed to process event", "matchID", matchID, "error", err)
		http.Error(w, "Failed to process event", http.StatusInternalServerError)
	}
}
