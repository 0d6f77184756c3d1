package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"fairshare/internal/core"
	"fairshare/internal/log"
	"fairshare/internal/report"
	"fairshare/internal/settle"
)

type addParticipantRequest struct {
	Name string `json:"name"`
}

type participantsResponse struct {
	Participants []string `json:"participants"`
}

type removeParticipantResponse struct {
	Removed         bool     `json:"removed"`
	RemovedExpenses int      `json:"removedExpenses"`
	Participants    []string `json:"participants"`
}

type addExpenseRequest struct {
	Payer       string      `json:"payer"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
}

type removeExpenseResponse struct {
	Removed bool `json:"removed"`
}

type summaryResponse struct {
	TotalSpent float64              `json:"totalSpent"`
	FairShare  float64              `json:"fairShare"`
	Balances   []settle.Balance     `json:"balances"`
	Debts      []settle.Transaction `json:"debts"`
	Currency   string               `json:"currency"`
	Revision   uint64               `json:"revision"`
}

type settingsPayload struct {
	Currency string `json:"currency"`
	DarkMode bool   `json:"darkMode"`
}

func (s *Server) handleParticipants(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		participants := s.ledger.Participants()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, participantsResponse{Participants: participants})

	case http.MethodPost:
		s.handleAddParticipant(w, r)

	case http.MethodDelete:
		s.handleRemoveParticipant(w, r)

	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	var req addParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	name, err := s.ledger.AddParticipant(sanitizeInput(req.Name))
	if err == nil {
		err = s.persistLocked(r.Context(), "add_participant")
	}
	participants := s.ledger.Participants()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveMutation("add_participant", err)
	}

	switch {
	case errors.Is(err, core.ErrEmptyName):
		writeError(w, http.StatusUnprocessableEntity, "participant name cannot be empty")
		return
	case errors.Is(err, core.ErrDuplicateParticipant):
		writeError(w, http.StatusConflict, "participant already exists")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Add participant failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save ledger")
		return
	}

	slog.InfoContext(r.Context(), "Participant added", log.FieldParticipant, name)
	writeJSON(w, http.StatusCreated, participantsResponse{Participants: participants})
}

func (s *Server) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name query parameter")
		return
	}

	s.mu.Lock()
	removed, cascaded := s.ledger.RemoveParticipant(name)
	var err error
	if removed {
		err = s.persistLocked(r.Context(), "remove_participant")
	}
	participants := s.ledger.Participants()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveMutation("remove_participant", err)
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Remove participant failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save ledger")
		return
	}

	if removed {
		slog.InfoContext(r.Context(), "Participant removed",
			log.FieldParticipant, name, "cascaded_expenses", cascaded)
	}
	writeJSON(w, http.StatusOK, removeParticipantResponse{
		Removed:         removed,
		RemovedExpenses: cascaded,
		Participants:    participants,
	})
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		expenses := s.ledger.Expenses()
		s.mu.Unlock()
		if expenses == nil {
			expenses = []core.Expense{}
		}
		writeJSON(w, http.StatusOK, expenses)

	case http.MethodPost:
		s.handleAddExpense(w, r)

	case http.MethodDelete:
		s.handleRemoveExpense(w, r)

	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req addExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	s.mu.Lock()
	expense, err := s.ledger.AddExpense(sanitizeInput(req.Payer), sanitizeInput(req.Description), amount, date)
	if err == nil {
		err = s.persistLocked(r.Context(), "add_expense")
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveMutation("add_expense", err)
	}

	switch {
	case errors.Is(err, core.ErrUnknownPayer):
		writeError(w, http.StatusUnprocessableEntity, "payer is not a participant")
		return
	case errors.Is(err, core.ErrEmptyDescription):
		writeError(w, http.StatusUnprocessableEntity, "description cannot be empty")
		return
	case errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Add expense failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save ledger")
		return
	}

	slog.InfoContext(r.Context(), "Expense added",
		log.FieldExpenseID, expense.ID,
		log.FieldPayer, expense.Payer,
		log.FieldAmount, expense.Amount)
	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id query parameter")
		return
	}

	s.mu.Lock()
	removed := s.ledger.RemoveExpense(id)
	var err error
	if removed {
		err = s.persistLocked(r.Context(), "remove_expense")
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveMutation("remove_expense", err)
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Remove expense failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save ledger")
		return
	}

	if removed {
		slog.InfoContext(r.Context(), "Expense removed", log.FieldExpenseID, id)
	}
	writeJSON(w, http.StatusOK, removeExpenseResponse{Removed: removed})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	s.ledger.Clear()
	err := s.persistLocked(r.Context(), "clear")
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveMutation("clear", err)
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Clear failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save ledger")
		return
	}

	slog.InfoContext(r.Context(), "Ledger cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	result, revision := s.computeSummary(r.Context())

	s.mu.Lock()
	currency := s.currency
	s.mu.Unlock()

	balances := result.Balances
	if balances == nil {
		balances = []settle.Balance{}
	}
	debts := result.Debts
	if debts == nil {
		debts = []settle.Transaction{}
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		TotalSpent: result.TotalSpent,
		FairShare:  result.FairShare,
		Balances:   balances,
		Debts:      debts,
		Currency:   currency,
		Revision:   revision,
	})
}

func (s *Server) handleSummaryShare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	result, _ := s.computeSummary(r.Context())

	s.mu.Lock()
	currency := s.currency
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report.ShareText(result, currency)))
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, report.Currencies())
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		payload := settingsPayload{Currency: s.currency, DarkMode: s.darkMode}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, payload)

	case http.MethodPut:
		var req settingsPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if !report.KnownCurrency(req.Currency) {
			writeError(w, http.StatusUnprocessableEntity, "unsupported currency code")
			return
		}

		s.mu.Lock()
		s.currency = req.Currency
		s.darkMode = req.DarkMode
		err := s.persistLocked(r.Context(), "update_settings")
		s.mu.Unlock()

		if s.metrics != nil {
			s.metrics.ObserveMutation("update_settings", err)
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Update settings failed", log.FieldError, err)
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}

		slog.InfoContext(r.Context(), "Settings updated",
			"currency", req.Currency, "dark_mode", req.DarkMode)
		writeJSON(w, http.StatusOK, req)

	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
