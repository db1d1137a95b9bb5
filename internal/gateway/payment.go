package gateway

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"freshbonds/backend/internal/api"
)

// IPGConfig carries the payment-gateway credentials. The stub never contacts
// a real processor; the credentials exist so hash and callback verification
// behave as they would against one.
type IPGConfig struct {
	AppName       string
	AppID         string
	AppToken      string
	HashSalt      string
	CallbackURL   string
	CallbackToken string
}

const redirectBase = "https://your-ipg-gateway.com/payment"

// Phone check at the payment boundary is looser than registration: any
// ten-digit local number, not just known operator prefixes.
var paymentPhonePattern = regexp.MustCompile(`^0[1-9]\d{8}$`)

// PaymentHandler implements the payment-initiation stub.
type PaymentHandler struct {
	cfg IPGConfig
	log *zap.Logger
}

func NewPaymentHandler(cfg IPGConfig, log *zap.Logger) *PaymentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentHandler{cfg: cfg, log: log}
}

// Routes mounts the payment endpoints on r, rooted at /api/payment.
func (h *PaymentHandler) Routes(r chi.Router) {
	r.Post("/initiate", h.initiate)
	r.Post("/callback", h.callback)
}

type paymentCustomer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type paymentFarmer struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

type initiateRequest struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Amount      float64         `json:"amount"`
	Currency    string          `json:"currency"`
	Customer    paymentCustomer `json:"customer"`
	Farmer      paymentFarmer   `json:"farmer"`
	Quantity    string          `json:"quantity"`
	Unit        string          `json:"unit"`
	OrderID     string          `json:"orderId"`
}

type initiateResponse struct {
	Success     bool   `json:"success"`
	OrderID     string `json:"orderId"`
	RedirectURL string `json:"redirectUrl"`
	Message     string `json:"message"`
}

func (h *PaymentHandler) initiate(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.BadRequest(w, "invalid request body")
		return
	}

	if req.ProductID == "" || req.ProductName == "" || req.Amount <= 0 || req.OrderID == "" {
		api.BadRequest(w, "missing required payment fields")
		return
	}
	c := req.Customer
	if c.Name == "" || c.Email == "" || c.Phone == "" || c.Address == "" {
		api.BadRequest(w, "complete customer information is required")
		return
	}

	phone := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(c.Phone)
	if !paymentPhonePattern.MatchString(phone) {
		api.BadRequest(w, "invalid Sri Lankan mobile number format")
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "LKR"
	}
	amount := fmt.Sprintf("%.2f", req.Amount)

	hash := ipgHash(req.OrderID+amount+currency+c.Email, h.cfg.HashSalt)

	h.log.Info("payment initiated",
		zap.String("order_id", req.OrderID),
		zap.String("amount", amount),
		zap.String("currency", currency),
		zap.String("hash_prefix", hash[:8]),
	)

	api.JSON(w, http.StatusOK, initiateResponse{
		Success:     true,
		OrderID:     req.OrderID,
		RedirectURL: redirectBase + "?order=" + req.OrderID + "&hash=" + hash,
		Message:     "Payment initiated successfully",
	})
}

type callbackRequest struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	Hash          string `json:"hash"`
	CallbackToken string `json:"callback_token"`
}

type callbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *PaymentHandler) callback(w http.ResponseWriter, r *http.Request) {
	var req callbackRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.BadRequest(w, "invalid request body")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.CallbackToken), []byte(h.cfg.CallbackToken)) != 1 {
		api.Unauthorized(w, "invalid callback token")
		return
	}

	expected := ipgHash(req.OrderID+req.Status+req.Amount, h.cfg.HashSalt)
	if subtle.ConstantTimeCompare([]byte(req.Hash), []byte(expected)) != 1 {
		api.Unauthorized(w, "invalid payment hash")
		return
	}

	switch req.Status {
	case "success":
		h.log.Info("payment succeeded", zap.String("order_id", req.OrderID))
	default:
		h.log.Warn("payment failed", zap.String("order_id", req.OrderID), zap.String("status", req.Status))
	}

	api.JSON(w, http.StatusOK, callbackResponse{Success: true, Message: "Callback processed"})
}

// ipgHash is sha256(data+salt), hex-encoded. The salt never travels on the
// wire; both sides derive the digest independently.
func ipgHash(data, salt string) string {
	sum := sha256.Sum256([]byte(data + salt))
	return hex.EncodeToString(sum[:])
}
