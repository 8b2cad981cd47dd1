package vault

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ethvault/vault-engine/internal/addr"
	"github.com/ethvault/vault-engine/internal/limits"
	"github.com/ethvault/vault-engine/internal/metrics"
	"github.com/ethvault/vault-engine/internal/model"
	"github.com/ethvault/vault-engine/internal/oracle"
	"github.com/ethvault/vault-engine/internal/store"
)

// Service exposes the vault over HTTP. Journal reads (account history)
// go straight to the store; everything else goes through the Vault.
type Service struct {
	vault   *Vault
	journal store.Store // optional; history endpoints 404 without it
}

// NewService creates the HTTP service. Pass nil for journal when the
// vault runs without durable storage.
func NewService(v *Vault, journal store.Store) *Service {
	return &Service{vault: v, journal: journal}
}

// --- Request/Response types ---

// MoveRequest is the JSON body for POST /deposit and POST /withdraw.
// Amount is a wei string to avoid JSON number precision loss.
type MoveRequest struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

// MoveResponse is returned from a committed deposit or withdrawal.
type MoveResponse struct {
	Entry   *model.Entry  `json:"entry"`
	Account model.Account `json:"account"`
}

// TotalsResponse is returned from GET /vault/totals.
type TotalsResponse struct {
	model.Totals
	BankCap       string `json:"bank_cap"`
	MaxWithdrawal string `json:"max_withdrawal"`
}

// --- HTTP Handlers ---

// Deposit handles POST /api/v1/deposit
func (s *Service) Deposit(w http.ResponseWriter, r *http.Request) {
	address, amount, ok := s.decodeMove(w, r)
	if !ok {
		return
	}

	entry, err := s.vault.Deposit(r.Context(), address, amount)
	if err != nil {
		writeOpError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, MoveResponse{
		Entry:   entry,
		Account: s.vault.AccountRecord(address),
	})
}

// Withdraw handles POST /api/v1/withdraw
func (s *Service) Withdraw(w http.ResponseWriter, r *http.Request) {
	address, amount, ok := s.decodeMove(w, r)
	if !ok {
		return
	}

	entry, err := s.vault.Withdraw(r.Context(), address, amount)
	if err != nil {
		writeOpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MoveResponse{
		Entry:   entry,
		Account: s.vault.AccountRecord(address),
	})
}

// GetBalance handles GET /api/v1/accounts/{address}/balance
func (s *Service) GetBalance(w http.ResponseWriter, r *http.Request) {
	address, ok := s.pathAddress(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"address": address,
		"balance": s.vault.Balance(address).String(),
	})
}

// GetAccountRecord handles GET /api/v1/accounts/{address}/record
func (s *Service) GetAccountRecord(w http.ResponseWriter, r *http.Request) {
	address, ok := s.pathAddress(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, s.vault.AccountRecord(address))
}

// GetAccountHistory handles GET /api/v1/accounts/{address}/history
func (s *Service) GetAccountHistory(w http.ResponseWriter, r *http.Request) {
	address, ok := s.pathAddress(w, r)
	if !ok {
		return
	}
	if s.journal == nil {
		writeError(w, "history not available without a durable store", http.StatusNotFound)
		return
	}

	entries, err := s.journal.EntriesByAccount(r.Context(), address)
	if err != nil {
		writeError(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []model.Entry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// GetTotals handles GET /api/v1/vault/totals
func (s *Service) GetTotals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TotalsResponse{
		Totals:        s.vault.Totals(),
		BankCap:       s.vault.BankCap().String(),
		MaxWithdrawal: s.vault.MaxWithdrawal().String(),
	})
}

// GetPrice handles GET /api/v1/price
// Surfaces feed unavailability directly, unlike the deposit path.
func (s *Service) GetPrice(w http.ResponseWriter, r *http.Request) {
	price, err := s.vault.CurrentPrice(r.Context())
	if err != nil {
		writeError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"price": strconv.FormatInt(price, 10),
		"scale": strconv.FormatInt(oracle.PriceScale, 10),
	})
}

// --- Helpers ---

func (s *Service) decodeMove(w http.ResponseWriter, r *http.Request) (string, decimal.Decimal, bool) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return "", decimal.Zero, false
	}

	address, err := addr.Parse(req.Address)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return "", decimal.Zero, false
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, "amount must be a wei string", http.StatusBadRequest)
		return "", decimal.Zero, false
	}

	return address, amount, true
}

func (s *Service) pathAddress(w http.ResponseWriter, r *http.Request) (string, bool) {
	address, err := addr.Parse(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return address, true
}

// writeOpError maps ledger errors to HTTP statuses and records the
// rejection metric.
func writeOpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, limits.ErrZeroAmount):
		metrics.RejectionsTotal.WithLabelValues("zero_amount").Inc()
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, limits.ErrBankCapExceeded):
		metrics.RejectionsTotal.WithLabelValues("bank_cap").Inc()
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, limits.ErrExceedsMaxWithdrawal):
		metrics.RejectionsTotal.WithLabelValues("max_withdrawal").Inc()
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInsufficientBalance):
		metrics.RejectionsTotal.WithLabelValues("insufficient_balance").Inc()
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrTransferFailed):
		metrics.RejectionsTotal.WithLabelValues("transfer_failed").Inc()
		writeError(w, err.Error(), http.StatusBadGateway)
	default:
		writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
