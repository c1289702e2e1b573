package pos

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/domain/session"
	"github.com/FACorreiaa/pos-templui/internal/app/handlers"
	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/app/views"
)

const clientHints = "Sec-CH-Viewport-Width, Viewport-Width"

// ProductLister lists the products offered at the register.
type ProductLister interface {
	ListProducts(ctx context.Context, branchID *uuid.UUID) ([]models.Product, error)
}

type Handler struct {
	*handlers.BaseHandler
	products       ProductLister
	carts          CartRepository
	checkout       *CheckoutService
	breakpoint     int
	currency       string
	publishableKey string
}

func NewHandler(base *handlers.BaseHandler, products ProductLister, carts CartRepository, checkout *CheckoutService, breakpoint int, currency, publishableKey string) *Handler {
	return &Handler{
		BaseHandler:    base,
		products:       products,
		carts:          carts,
		checkout:       checkout,
		breakpoint:     breakpoint,
		currency:       currency,
		publishableKey: publishableKey,
	}
}

// screen is the request-local shell state: the active tab and the viewport.
type screen struct {
	active Section
	width  int
}

func (h *Handler) screenFor(c *gin.Context) screen {
	return screen{active: ParseSection(c.Query("tab")), width: ViewportWidth(c.Request)}
}

func (s screen) query(tab Section) string {
	q := url.Values{"tab": {string(tab)}}
	if s.width > 0 {
		q.Set("vw", strconv.Itoa(s.width))
	}
	return q.Encode()
}

func cashierID(c *gin.Context) (uuid.UUID, error) {
	identity := session.IdentityFromContext(c)
	if identity == nil {
		return uuid.Nil, models.ErrUnauthenticated
	}
	id, err := uuid.Parse(identity.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("cashier id %q: %w", identity.UserID, models.ErrUnauthenticated)
	}
	return id, nil
}

// load reads the signed-in cashier's cart. A failed read is reported in the
// payment banner and leaves an empty cart on screen.
func (h *Handler) load(c *gin.Context, l *zap.Logger) (uuid.UUID, CartState, error) {
	id, err := cashierID(c)
	if err != nil {
		return uuid.Nil, CartState{}, err
	}
	state, err := h.carts.LoadCart(c.Request.Context(), id)
	if err != nil {
		l.Error("Failed to load cart", zap.Error(err))
		return id, CartState{}, err
	}
	return id, state, nil
}

func (h *Handler) Show(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "Show"))
	_, state, err := h.load(c, l)
	h.respond(c, h.screenFor(c), state, views.PaymentView{Error: handlers.UserMessage(err)})
}

// edit applies change to the cashier's cart and stores it. Any failure ends
// up in the payment banner.
func (h *Handler) edit(c *gin.Context, l *zap.Logger, change func(*CartState)) {
	scr := h.screenFor(c)
	id, state, err := h.load(c, l)
	if err != nil {
		h.respond(c, scr, state, views.PaymentView{Error: handlers.UserMessage(err)})
		return
	}
	if state.Pending != nil {
		h.respond(c, scr, state, views.PaymentView{Error: handlers.UserMessage(ErrCartFrozen)})
		return
	}

	change(&state)
	if err := h.carts.SaveCart(c.Request.Context(), id, state); err != nil {
		l.Error("Failed to save cart", zap.Error(err))
		h.respond(c, scr, state, views.PaymentView{Error: "The cart could not be saved. Please try again."})
		return
	}
	h.respond(c, scr, state, views.PaymentView{})
}

func (h *Handler) AddToCart(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "AddToCart"))

	id, err := uuid.Parse(c.PostForm("product_id"))
	if err != nil {
		l.Warn("Invalid product id", zap.String("product_id", c.PostForm("product_id")))
		_, state, loadErr := h.load(c, l)
		h.respond(c, h.screenFor(c), state, views.PaymentView{Error: firstMessage(loadErr, "Unknown product.")})
		return
	}
	h.edit(c, l, func(st *CartState) { st.Cart.Add(id) })
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "RemoveFromCart"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_, state, loadErr := h.load(c, l)
		h.respond(c, h.screenFor(c), state, views.PaymentView{Error: firstMessage(loadErr, "Unknown product.")})
		return
	}
	h.edit(c, l, func(st *CartState) { st.Cart.Remove(id) })
}

func (h *Handler) SaveCustomer(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "SaveCustomer"))
	customer := Customer{
		Name:  strings.TrimSpace(c.PostForm("customer_name")),
		Phone: strings.TrimSpace(c.PostForm("customer_phone")),
	}
	h.edit(c, l, func(st *CartState) { st.Customer = customer })
}

// Checkout books a cash sale, or opens a card payment and shows the terminal.
func (h *Handler) Checkout(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "Checkout"))
	scr := h.screenFor(c)
	method := models.PaymentMethod(c.PostForm("method"))
	payment := views.PaymentView{Method: method}

	id, state, err := h.load(c, l)
	if err != nil {
		payment.Error = handlers.UserMessage(err)
		h.respond(c, scr, state, payment)
		return
	}
	if state.Pending != nil {
		payment.Error = handlers.UserMessage(ErrCartFrozen)
		h.respond(c, scr, state, payment)
		return
	}

	ctx := c.Request.Context()
	identity := session.IdentityFromContext(c)
	switch method {
	case models.PaymentCash:
		sale, err := h.checkout.PayCash(ctx, identity, state.Cart)
		if err != nil {
			l.Warn("Cash checkout failed", zap.Error(err))
			payment.Error = handlers.UserMessage(err)
			h.respond(c, scr, state, payment)
			return
		}
		payment.Notice = "Sale recorded."
		h.finish(c, l, id, &state, &payment, sale.ID)
	case models.PaymentCard:
		pending, secret, err := h.checkout.StartCard(ctx, identity, state.Cart)
		if err != nil {
			l.Warn("Card checkout failed", zap.Error(err))
			payment.Error = handlers.UserMessage(err)
			h.respond(c, scr, state, payment)
			return
		}
		state.Pending = pending
		if err := h.carts.SaveCart(ctx, id, state); err != nil {
			l.Error("Failed to store open card payment", zap.String("intent_id", pending.IntentID), zap.Error(err))
			if cancelErr := h.checkout.CancelCard(*pending); cancelErr != nil {
				l.Error("Failed to cancel unsaved card payment", zap.String("intent_id", pending.IntentID), zap.Error(cancelErr))
			}
			state.Pending = nil
			payment.Error = "The card payment could not be started. Please try again."
			h.respond(c, scr, state, payment)
			return
		}
		payment.Card = h.terminal(*pending, secret)
		h.respond(c, scr, state, payment)
	default:
		payment.Error = handlers.UserMessage(fmt.Errorf("%w: unknown payment method %q", models.ErrValidation, method))
		h.respond(c, scr, state, payment)
	}
}

// ConfirmCard books the sale once the card payment has gone through.
func (h *Handler) ConfirmCard(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "ConfirmCard"))
	scr := h.screenFor(c)
	payment := views.PaymentView{Method: models.PaymentCard}

	id, state, err := h.load(c, l)
	if err != nil || state.Pending == nil {
		payment.Error = firstMessage(err, "There is no open card payment.")
		h.respond(c, scr, state, payment)
		return
	}

	sale, settled, err := h.checkout.ConfirmCard(c.Request.Context(), session.IdentityFromContext(c), state.Cart, *state.Pending)
	switch {
	case err == nil:
		payment.Notice = "Card payment received. Sale recorded."
		h.finish(c, l, id, &state, &payment, sale.ID)
	case errors.Is(err, models.ErrConflict):
		payment.Notice = "This card payment was already recorded."
		h.finish(c, l, id, &state, &payment, uuid.Nil)
	case settled:
		l.Warn("Card payment closed without a sale", zap.Error(err))
		payment.Error = handlers.UserMessage(err)
		state.Pending = nil
		if saveErr := h.carts.SaveCart(c.Request.Context(), id, state); saveErr != nil {
			l.Error("Failed to reopen cart", zap.Error(saveErr))
		}
		h.respond(c, scr, state, payment)
	default:
		l.Warn("Card payment not confirmed", zap.Error(err))
		payment.Error = handlers.UserMessage(err)
		h.respond(c, scr, state, payment)
	}
}

// CancelCard voids the open card payment and unfreezes the cart.
func (h *Handler) CancelCard(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "CancelCard"))
	scr := h.screenFor(c)
	payment := views.PaymentView{Method: models.PaymentCard}

	id, state, err := h.load(c, l)
	if err != nil || state.Pending == nil {
		payment.Error = firstMessage(err, "There is no open card payment.")
		h.respond(c, scr, state, payment)
		return
	}

	if err := h.checkout.CancelCard(*state.Pending); err != nil {
		l.Warn("Failed to cancel card payment", zap.Error(err))
		payment.Error = handlers.UserMessage(err)
		h.respond(c, scr, state, payment)
		return
	}

	state.Pending = nil
	if err := h.carts.SaveCart(c.Request.Context(), id, state); err != nil {
		l.Error("Failed to save cart", zap.Error(err))
		payment.Error = "The payment was cancelled but the cart could not be saved. Please reload."
	} else {
		payment.Notice = "Card payment cancelled."
	}
	h.respond(c, scr, state, payment)
}

// finish starts a fresh cart after a booked sale.
func (h *Handler) finish(c *gin.Context, l *zap.Logger, id uuid.UUID, state *CartState, payment *views.PaymentView, saleID uuid.UUID) {
	l.Info("Sale closed", zap.String("sale_id", saleID.String()))
	if err := h.carts.DeleteCart(c.Request.Context(), id); err != nil {
		l.Error("Failed to reset cart", zap.Error(err))
		payment.Error = "The sale was recorded but the cart could not be cleared. Remove the items before the next sale."
		h.respond(c, h.screenFor(c), CartState{Cart: state.Cart, Customer: state.Customer}, *payment)
		return
	}
	*state = CartState{}
	h.respond(c, h.screenFor(c), *state, *payment)
}

func (h *Handler) terminal(pending PendingCard, secret string) *views.CardTerminal {
	return &views.CardTerminal{
		IntentID:       pending.IntentID,
		Amount:         float64(pending.Amount) / 100,
		ClientSecret:   secret,
		PublishableKey: h.publishableKey,
	}
}

func firstMessage(err error, fallback string) string {
	if err != nil {
		return handlers.UserMessage(err)
	}
	return fallback
}

func (h *Handler) respond(c *gin.Context, scr screen, state CartState, payment views.PaymentView) {
	c.Header("Accept-CH", clientHints)
	c.Header("Vary", clientHints)

	view := h.buildView(c, scr, state, payment)
	if handlers.IsHTMX(c) {
		h.Render(c, http.StatusOK, views.POSShell(view))
		return
	}
	h.RenderPage(c, "Point of Sale", "Point of Sale", views.POSPage(view))
}

func (h *Handler) buildView(c *gin.Context, scr screen, state CartState, payment views.PaymentView) views.POSView {
	ctx := c.Request.Context()
	l := h.Logger.With(zap.String("method", "buildView"))

	payment.CardEnabled = h.checkout.CardEnabled()
	if state.Pending != nil && payment.Card == nil {
		secret, err := h.checkout.CardSecret(*state.Pending)
		if err != nil {
			l.Error("Failed to reload card payment", zap.String("intent_id", state.Pending.IntentID), zap.Error(err))
			if payment.Error == "" {
				payment.Error = "The open card payment could not be loaded. Please try again."
			}
		} else {
			payment.Card = h.terminal(*state.Pending, secret)
		}
	}

	view := views.POSView{
		Desktop:    LayoutFor(scr.width, h.breakpoint) == LayoutDesktop,
		Active:     string(scr.active),
		PrevHref:   "/pos?" + scr.query(Prev(scr.active)),
		NextHref:   "/pos?" + scr.query(Next(scr.active)),
		Currency:   h.currency,
		Customer:   views.CustomerView{Name: state.Customer.Name, Phone: state.Customer.Phone},
		Payment:    payment,
		StateQuery: scr.query(scr.active),
	}
	for _, sec := range Sections {
		view.Sections = append(view.Sections, views.POSSection{
			Key:    string(sec),
			Label:  sec.Label(),
			Href:   "/pos?" + scr.query(sec),
			Active: sec == scr.active,
		})
	}

	products, err := h.products.ListProducts(ctx, nil)
	if err != nil {
		l.Error("Failed to load products", zap.Error(err))
		if view.Payment.Error == "" {
			view.Payment.Error = handlers.UserMessage(err)
		}
	}
	view.Products = products

	lines, total, err := h.checkout.Lines(ctx, state.Cart)
	if err != nil {
		l.Error("Failed to price cart", zap.Error(err))
		if view.Payment.Error == "" {
			view.Payment.Error = handlers.UserMessage(err)
		}
	}
	for _, line := range lines {
		view.Cart = append(view.Cart, views.CartLine{
			ProductID: line.Product.ID.String(),
			Name:      line.Product.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.Product.Price,
			Subtotal:  line.Subtotal(),
		})
	}
	view.Total = total
	return view
}
