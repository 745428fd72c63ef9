package cart

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"FlashIt/pkg/kit"
)

const (
	SessionHeader = "X-Cart-Session"
	ConfirmHeader = "X-Confirm"
	readyTimeout  = 1 * time.Second
	defaultCookie = "flashit_session"
)

type Server struct {
	Carts    *Registry
	Sessions *Sessions
	// CookieName carries the session token; defaultCookie when empty.
	CookieName string
	// Limiter throttles mutating routes per client IP; nil disables it.
	Limiter *kit.IPRateLimiter
	Log     *zap.Logger
}

// View is the cart as the presentation layer renders it.
type View struct {
	Items       []ViewLine       `json:"items"`
	Totals      Totals           `json:"totals"`
	Shipping    ShippingProgress `json:"shipping"`
	Empty       bool             `json:"empty"`
	CanCheckout bool             `json:"canCheckout"`
}

type ViewLine struct {
	LineItem
	LineTotal decimal.Decimal `json:"lineTotal"`
}

func NewView(items []LineItem, totals Totals, pricing Pricing) View {
	lines := make([]ViewLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, ViewLine{LineItem: it, LineTotal: it.LineTotal()})
	}
	return View{
		Items:       lines,
		Totals:      totals,
		Shipping:    pricing.Progress(totals.Subtotal),
		Empty:       len(items) == 0,
		CanCheckout: totals.ItemCount > 0,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(kit.NotFound)
	r.MethodNotAllowed(kit.MethodNotAllowed)

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", s.ready)

	r.Route("/cart", func(cr chi.Router) {
		cr.Use(s.session)

		cr.Get("/", s.get)
		cr.Get("/count", s.count)
		cr.Get("/notifications", s.notifications)
		cr.Get("/events", s.events)

		cr.Group(func(mr chi.Router) {
			if s.Limiter != nil {
				mr.Use(s.Limiter.Middleware)
			}
			mr.Post("/items", s.addItem)
			mr.Patch("/items/{id}", s.updateItem)
			mr.Delete("/items/{id}", s.removeItem)
			mr.Delete("/", s.clear)
			mr.Post("/checkout", s.checkout)
		})
	})

	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Carts.Ping(ctx); err != nil {
		if s.Log != nil {
			s.Log.Warn("readyz failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cartFor(w, r)
	if !ok {
		return
	}
	s.writeView(w, c)
}

func (s *Server) count(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cartFor(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]int{"itemCount": c.Totals().ItemCount})
}

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	_, inbox, err := s.Carts.Open(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeOpenError(w, r, err)
		return
	}

	n, ok := inbox.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	kit.WriteJSON(w, http.StatusOK, n)
}

type addItemReq struct {
	ID       int             `json:"id" validate:"required,min=1"`
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image" validate:"omitempty,url"`
	Quantity int             `json:"quantity"`
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteDecodeError(w, r, err)
		return
	}
	if req.Price.IsNegative() {
		kit.WriteError(w, r, http.StatusBadRequest, "validation failed", map[string]string{"price": "must be at least 0"})
		return
	}

	c, ok := s.cartFor(w, r)
	if !ok {
		return
	}

	c.AddItem(r.Context(), NewItem{
		ID:       req.ID,
		Name:     strings.TrimSpace(req.Name),
		Price:    req.Price,
		Image:    req.Image,
		Quantity: max(req.Quantity, 1),
	})
	s.writeView(w, c)
}

type updateItemReq struct {
	Quantity *int `json:"quantity" validate:"required"`
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	var req updateItemReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteDecodeError(w, r, err)
		return
	}

	c, ok := s.cartFor(w, r)
	if !ok {
		return
	}

	if !c.UpdateQuantity(r.Context(), id, *req.Quantity) {
		kit.WriteError(w, r, http.StatusNotFound, "not in cart", map[string]any{"id": id})
		return
	}
	s.writeView(w, c)
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	c, ok := s.cartFor(w, r)
	if !ok {
		return
	}

	if !c.RemoveItem(r.Context(), id) {
		kit.WriteError(w, r, http.StatusNotFound, "not in cart", map[string]any{"id": id})
		return
	}
	s.writeView(w, c)
}

// clear empties the cart only when the request carries X-Confirm: yes.
func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cartFor(w, r)
	if !ok {
		return
	}

	if c.Len() == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if !c.ClearWith(r.Context(), headerConfirmer(r)) {
		kit.WriteError(w, r, http.StatusConflict, "confirmation required", map[string]any{
			"prompt": ClearPrompt,
			"header": ConfirmHeader,
		})
		return
	}
	s.writeView(w, c)
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cartFor(w, r)
	if !ok {
		return
	}

	receipt, err := c.Checkout(r.Context())
	if errors.Is(err, ErrEmptyCart) {
		kit.WriteError(w, r, http.StatusBadRequest, "cart is empty", nil)
		return
	}
	if err != nil {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, receipt)
}

func headerConfirmer(r *http.Request) Confirmer {
	return ConfirmFunc(func(context.Context, string) bool {
		switch strings.ToLower(strings.TrimSpace(r.Header.Get(ConfirmHeader))) {
		case "yes", "true", "1":
			return true
		}
		return false
	})
}

func itemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}

func (s *Server) cartFor(w http.ResponseWriter, r *http.Request) (*Cart, bool) {
	c, _, err := s.Carts.Open(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeOpenError(w, r, err)
		return nil, false
	}
	return c, true
}

func (s *Server) writeOpenError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrRegistryClosed) {
		kit.WriteError(w, r, http.StatusServiceUnavailable, "shutting down", nil)
		return
	}
	if s.Log != nil {
		s.Log.Error("open cart failed", zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

func (s *Server) writeView(w http.ResponseWriter, c *Cart) {
	items, totals := c.Snapshot()
	kit.WriteJSON(w, http.StatusOK, NewView(items, totals, c.Pricing()))
}
