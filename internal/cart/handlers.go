package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mfachry/kart/internal/common"
	"github.com/mfachry/kart/internal/condition"
	"github.com/mfachry/kart/internal/events"
	"github.com/mfachry/kart/internal/item"
	"github.com/mfachry/kart/internal/lock"
	"github.com/mfachry/kart/internal/money"
	"github.com/mfachry/kart/internal/obs"
	"github.com/mfachry/kart/internal/pricing"
	"github.com/mfachry/kart/internal/session"
)

// Handler wires cart operations to HTTP. Each request binds a Cart to the
// session key carried in the cart id path parameter.
type Handler struct {
	Store    session.Store
	Bus      *events.Bus
	Format   money.Formatter
	Instance string
	Logger   zerolog.Logger
	Validate *validator.Validate
	Lock     *lock.Locker

	// DefaultKey, when set, names the cart created by a bodyless POST /carts
	// instead of a generated id.
	DefaultKey string
}

// NewHandler constructs a handler with a ready validator.
func NewHandler(store session.Store, bus *events.Bus, format money.Formatter, instance string, logger zerolog.Logger) *Handler {
	return &Handler{
		Store:    store,
		Bus:      bus,
		Format:   format,
		Instance: instance,
		Logger:   logger,
		Validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes mounts every cart endpoint on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Route("/{cartID}", func(r chi.Router) {
		r.Use(h.lockSession)
		r.Get("/", h.GetCart)
		r.Delete("/items", h.ClearItems)
		r.Post("/items", h.AddItems)
		r.Post("/groups", h.AddGroups)
		r.Get("/items/{itemID}", h.GetItem)
		r.Patch("/items/{itemID}", h.UpdateItem)
		r.Delete("/items/{itemID}", h.RemoveItem)

		r.Post("/items/{itemID}/conditions", h.AddItemCondition)
		r.Delete("/items/{itemID}/conditions", h.ClearItemConditions)
		r.Delete("/items/{itemID}/conditions/{name}", h.RemoveItemCondition)
		r.Post("/items/{itemID}/taxes", h.AddItemTax)
		r.Delete("/items/{itemID}/taxes", h.ClearItemTaxes)
		r.Delete("/items/{itemID}/taxes/{name}", h.RemoveItemTax)

		r.Post("/conditions", h.AddConditions)
		r.Get("/conditions", h.ListConditions)
		r.Delete("/conditions", h.ClearConditions)
		r.Get("/conditions/{name}", h.GetCondition)
		r.Delete("/conditions/{name}", h.RemoveCondition)

		r.Post("/taxes", h.AddTaxes)
		r.Get("/taxes", h.ListTaxes)
		r.Delete("/taxes", h.ClearTaxesHandler)
		r.Get("/taxes/{name}", h.GetTax)
		r.Delete("/taxes/{name}", h.RemoveTaxHandler)

		r.Get("/subtotal", h.SubTotal)
		r.Get("/total", h.Total)
		r.Get("/groups/{groupID}/subtotal", h.GroupSubTotal)
		r.Get("/quantity", h.TotalQuantity)
	})
	return r
}

// lockSession serialises writes to one session key. Reads and carts without a
// configured locker pass straight through.
func (h *Handler) lockSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Lock == nil || r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		key := strings.TrimSpace(chi.URLParam(r, "cartID"))
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		err := h.Lock.WithLock(r.Context(), key, 5*time.Second, func(ctx context.Context) error {
			next.ServeHTTP(w, r.WithContext(ctx))
			return nil
		})
		if err != nil {
			h.writeError(w, err)
		}
	})
}

func (h *Handler) cart(r *http.Request) (*Cart, error) {
	key := strings.TrimSpace(chi.URLParam(r, "cartID"))
	c, err := New(r.Context(), h.Store, h.Bus, h.Instance, key, h.Format)
	if err != nil {
		return nil, err
	}
	c.Logger = h.Logger
	return c, nil
}

// Create allocates a fresh cart session key.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CartID string `json:"cartId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)
	key := strings.TrimSpace(payload.CartID)
	if key == "" {
		key = h.DefaultKey
	}
	if key == "" {
		key = uuid.NewString()
	}
	if _, err := New(r.Context(), h.Store, h.Bus, h.Instance, key, h.Format); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, map[string]any{"cartId": key, "instance": h.Instance})
}

// GetCart returns the cart contents.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ledger, err := c.Content(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	items := ledger.All()
	body := make([]map[string]any, 0, len(items))
	for _, it := range items {
		body = append(body, h.itemBody(it))
	}
	common.JSONData(w, http.StatusOK, map[string]any{
		"items":    body,
		"isEmpty":  ledger.IsEmpty(),
		"quantity": ledger.TotalQuantity(),
	})
}

type itemPayload struct {
	ID         string                `json:"id" validate:"required"`
	Name       string                `json:"name" validate:"required"`
	Price      *decimal.Decimal      `json:"price"`
	Quantity   *int                  `json:"quantity" validate:"omitempty,min=1"`
	Unit       string                `json:"unit"`
	Attributes map[string]any        `json:"attributes"`
	Conditions []*conditionPayload   `json:"conditions"`
	Taxes      []*conditionPayload   `json:"taxes"`
	Quantities []item.SubQuantity    `json:"quantities" validate:"omitempty,dive"`
}

type conditionPayload struct {
	Name       string         `json:"name" validate:"required"`
	Type       string         `json:"type" validate:"required"`
	Target     string         `json:"target" validate:"omitempty,oneof=item subtotal total"`
	Value      string         `json:"value" validate:"required"`
	Order      any            `json:"order"`
	Attributes map[string]any `json:"attributes"`
}

func (h *Handler) buildCondition(p *conditionPayload, tax bool) (*condition.Condition, error) {
	if err := h.Validate.Struct(p); err != nil {
		if tax {
			return nil, errors.Join(condition.ErrInvalidTax, err)
		}
		return nil, errors.Join(condition.ErrInvalidCondition, err)
	}
	var (
		c   *condition.Condition
		err error
	)
	if tax {
		c, err = condition.NewTax(p.Name, p.Type, p.Target, p.Value)
	} else {
		c, err = condition.New(p.Name, p.Type, p.Target, p.Value)
	}
	if err != nil {
		return nil, err
	}
	c.Order = condition.ParseOrder(p.Order)
	c.Attributes = p.Attributes
	return c, nil
}

func (h *Handler) buildInput(p *itemPayload) (Input, error) {
	if err := h.Validate.Struct(p); err != nil {
		return Input{}, errors.Join(ErrInvalidItem, err)
	}
	in := Input{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Quantity:   p.Quantity,
		Unit:       p.Unit,
		Attributes: item.Attributes(p.Attributes),
		Quantities: p.Quantities,
	}
	for _, cp := range p.Conditions {
		c, err := h.buildCondition(cp, false)
		if err != nil {
			return Input{}, err
		}
		in.Conditions = append(in.Conditions, c)
	}
	for _, tp := range p.Taxes {
		t, err := h.buildCondition(tp, true)
		if err != nil {
			return Input{}, err
		}
		in.Taxes = append(in.Taxes, t)
	}
	return in, nil
}

// AddItems accepts a single item object or an array of items. The
// single-or-many branching is resolved here, once, at the API boundary.
func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
	payloads, err := decodeOneOrMany[itemPayload](r)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item payload", nil)
		return
	}
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	inputs := make([]Input, 0, len(payloads))
	for _, p := range payloads {
		in, err := h.buildInput(p)
		if err != nil {
			h.writeError(w, err)
			return
		}
		inputs = append(inputs, in)
	}
	ok, err := c.Add(r.Context(), inputs...)
	h.observe("add", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, map[string]any{"ok": ok})
}

type groupPayload struct {
	ID         string              `json:"id" validate:"required"`
	Name       string              `json:"name" validate:"required"`
	Attributes map[string]any      `json:"attributes"`
	Conditions []*conditionPayload `json:"conditions"`
	Taxes      []*conditionPayload `json:"taxes"`
}

// AddGroups accepts a single group container or an array of them.
func (h *Handler) AddGroups(w http.ResponseWriter, r *http.Request) {
	payloads, err := decodeOneOrMany[groupPayload](r)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group payload", nil)
		return
	}
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	inputs := make([]GroupInput, 0, len(payloads))
	for _, p := range payloads {
		if err := h.Validate.Struct(p); err != nil {
			h.writeError(w, errors.Join(ErrInvalidItem, err))
			return
		}
		in := GroupInput{ID: p.ID, Name: p.Name, Attributes: item.Attributes(p.Attributes)}
		for _, cp := range p.Conditions {
			cond, err := h.buildCondition(cp, false)
			if err != nil {
				h.writeError(w, err)
				return
			}
			in.Conditions = append(in.Conditions, cond)
		}
		for _, tp := range p.Taxes {
			tax, err := h.buildCondition(tp, true)
			if err != nil {
				h.writeError(w, err)
				return
			}
			in.Taxes = append(in.Taxes, tax)
		}
		inputs = append(inputs, in)
	}
	ok, err := c.AddGroup(r.Context(), inputs...)
	h.observe("add_group", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, map[string]any{"ok": ok})
}

// GetItem returns one item with its conditioned prices.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	it, err := c.Get(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if it == nil {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "item not found", nil)
		return
	}
	common.JSONData(w, http.StatusOK, h.itemBody(it))
}

type updatePayload struct {
	Name       *string             `json:"name"`
	Price      *decimal.Decimal    `json:"price"`
	Quantity   any                 `json:"quantity"`
	Unit       *string             `json:"unit"`
	Attributes map[string]any      `json:"attributes"`
	Conditions []*conditionPayload `json:"conditions"`
	Taxes      []*conditionPayload `json:"taxes"`
	Quantities []item.SubQuantity  `json:"quantities"`
}

// UpdateItem merges the provided fields into an item. Quantity accepts a
// bare number or "+N"/"-N" string for relative adjustment, or an object
// {"relative": bool, "value": n}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var p updatePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid update payload", nil)
		return
	}
	upd := Update{
		Name:       p.Name,
		Price:      p.Price,
		Unit:       p.Unit,
		Attributes: item.Attributes(p.Attributes),
		Quantities: p.Quantities,
	}
	if p.Quantity != nil {
		qty, err := parseQuantityPayload(p.Quantity)
		if err != nil {
			h.writeError(w, err)
			return
		}
		upd.Quantity = qty
	}
	if p.Conditions != nil {
		upd.Conditions = []*condition.Condition{}
		for _, cp := range p.Conditions {
			cond, err := h.buildCondition(cp, false)
			if err != nil {
				h.writeError(w, err)
				return
			}
			upd.Conditions = append(upd.Conditions, cond)
		}
	}
	if p.Taxes != nil {
		upd.Taxes = []*condition.Condition{}
		for _, tp := range p.Taxes {
			tax, err := h.buildCondition(tp, true)
			if err != nil {
				h.writeError(w, err)
				return
			}
			upd.Taxes = append(upd.Taxes, tax)
		}
	}
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ok, err := c.Update(r.Context(), chi.URLParam(r, "itemID"), upd)
	h.observe("update", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"ok": ok})
}

// RemoveItem deletes one item.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ok, err := c.Remove(r.Context(), chi.URLParam(r, "itemID"))
	h.observe("remove", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"ok": ok})
}

// ClearItems empties the cart ledger.
func (h *Handler) ClearItems(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ok, err := c.Clear(r.Context())
	h.observe("clear", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"ok": ok})
}

// AddConditions accepts a single cart condition or an array of them.
func (h *Handler) AddConditions(w http.ResponseWriter, r *http.Request) {
	h.addAdjustments(w, r, false)
}

// AddTaxes accepts a single cart tax or an array of them.
func (h *Handler) AddTaxes(w http.ResponseWriter, r *http.Request) {
	h.addAdjustments(w, r, true)
}

func (h *Handler) addAdjustments(w http.ResponseWriter, r *http.Request, tax bool) {
	payloads, err := decodeOneOrMany[conditionPayload](r)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid condition payload", nil)
		return
	}
	conds := make([]*condition.Condition, 0, len(payloads))
	for _, p := range payloads {
		c, err := h.buildCondition(p, tax)
		if err != nil {
			h.writeError(w, err)
			return
		}
		conds = append(conds, c)
	}
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if tax {
		err = c.Tax(r.Context(), conds...)
		h.observe("tax", err)
	} else {
		err = c.Condition(r.Context(), conds...)
		h.observe("condition", err)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, map[string]any{"ok": true})
}

// ListConditions returns the cart conditions, optionally filtered by type.
func (h *Handler) ListConditions(w http.ResponseWriter, r *http.Request) {
	h.listAdjustments(w, r, false)
}

// ListTaxes returns the cart taxes, optionally filtered by type.
func (h *Handler) ListTaxes(w http.ResponseWriter, r *http.Request) {
	h.listAdjustments(w, r, true)
}

func (h *Handler) listAdjustments(w http.ResponseWriter, r *http.Request, tax bool) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var conds []*condition.Condition
	typ := strings.TrimSpace(r.URL.Query().Get("type"))
	switch {
	case tax && typ != "":
		conds, err = c.GetTaxesByType(r.Context(), typ)
	case tax:
		var set *condition.Set
		set, err = c.GetTaxes(r.Context())
		if set != nil {
			conds = set.All()
		}
	case typ != "":
		conds, err = c.GetConditionsByType(r.Context(), typ)
	default:
		var set *condition.Set
		set, err = c.GetConditions(r.Context())
		if set != nil {
			conds = set.All()
		}
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, conds)
}

// GetCondition returns a cart condition by name.
func (h *Handler) GetCondition(w http.ResponseWriter, r *http.Request) {
	h.getAdjustment(w, r, false)
}

// GetTax returns a cart tax by name.
func (h *Handler) GetTax(w http.ResponseWriter, r *http.Request) {
	h.getAdjustment(w, r, true)
}

func (h *Handler) getAdjustment(w http.ResponseWriter, r *http.Request, tax bool) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	var cond *condition.Condition
	if tax {
		cond, err = c.GetTax(r.Context(), name)
	} else {
		cond, err = c.GetCondition(r.Context(), name)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	if cond == nil {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "condition not found", nil)
		return
	}
	common.JSONData(w, http.StatusOK, cond)
}

// RemoveCondition removes a cart condition by name.
func (h *Handler) RemoveCondition(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := c.RemoveCartCondition(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"ok": true})
}

// RemoveTaxHandler removes a cart tax by name.
func (h *Handler) RemoveTaxHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := c.RemoveTax(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"ok": true})
}

// ClearConditions clears all cart conditions, or only those of a type when
// the type query parameter is present.
func (h *Handler) ClearConditions(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if typ := strings.TrimSpace(r.URL.Query().Get("type")); typ != "" {
		err = c.RemoveConditionsByType(r.Context(), typ)
	} else {
		err = c.ClearCartConditions(r.Context())
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"ok": true})
}

// ClearTaxesHandler clears all cart taxes, or only those of a type.
func (h *Handler) ClearTaxesHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if typ := strings.TrimSpace(r.URL.Query().Get("type")); typ != "" {
		err = c.RemoveTaxesByType(r.Context(), typ)
	} else {
		err = c.ClearTaxes(r.Context())
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"ok": true})
}

// AddItemCondition attaches a condition to one item.
func (h *Handler) AddItemCondition(w http.ResponseWriter, r *http.Request) {
	h.addItemAdjustment(w, r, false)
}

// AddItemTax attaches a tax to one item.
func (h *Handler) AddItemTax(w http.ResponseWriter, r *http.Request) {
	h.addItemAdjustment(w, r, true)
}

func (h *Handler) addItemAdjustment(w http.ResponseWriter, r *http.Request, tax bool) {
	var p conditionPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid condition payload", nil)
		return
	}
	cond, err := h.buildCondition(&p, tax)
	if err != nil {
		h.writeError(w, err)
		return
	}
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	id := chi.URLParam(r, "itemID")
	var ok bool
	if tax {
		ok, err = c.AddItemTax(r.Context(), id, cond)
	} else {
		ok, err = c.AddItemCondition(r.Context(), id, cond)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, map[string]any{"ok": ok})
}

// RemoveItemCondition removes a named condition from an item.
func (h *Handler) RemoveItemCondition(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ok, err := c.RemoveItemCondition(r.Context(), chi.URLParam(r, "itemID"), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"ok": ok})
}

// RemoveItemTax removes a named tax from an item.
func (h *Handler) RemoveItemTax(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ok, err := c.RemoveItemTax(r.Context(), chi.URLParam(r, "itemID"), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"ok": ok})
}

// ClearItemConditions removes every condition from an item.
func (h *Handler) ClearItemConditions(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ok, err := c.ClearItemConditions(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"ok": ok})
}

// ClearItemTaxes removes every tax from an item.
func (h *Handler) ClearItemTaxes(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ok, err := c.ClearItemTaxes(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"ok": ok})
}

// SubTotal returns the cart subtotal bounds.
func (h *Handler) SubTotal(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	start := time.Now()
	totals, err := c.GetSubTotal(r.Context())
	obs.ObservePricing("subtotal", time.Since(start))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, h.totalsBody(totals))
}

// Total returns the cart total bounds.
func (h *Handler) Total(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	start := time.Now()
	totals, err := c.GetTotal(r.Context())
	obs.ObservePricing("total", time.Since(start))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, h.totalsBody(totals))
}

// GroupSubTotal returns the raw aggregate bounds of one item group.
func (h *Handler) GroupSubTotal(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	start := time.Now()
	totals, err := c.GetGroupSubTotal(r.Context(), chi.URLParam(r, "groupID"))
	obs.ObservePricing("group_subtotal", time.Since(start))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, h.totalsBody(totals))
}

// TotalQuantity returns the summed quantity across all items.
func (h *Handler) TotalQuantity(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	qty, err := c.GetTotalQuantity(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"quantity": qty})
}

func (h *Handler) itemBody(it *item.Item) map[string]any {
	body := map[string]any{
		"id":         it.ID,
		"name":       it.Name,
		"price":      h.Format.Format(it.Price),
		"quantity":   it.Quantity,
		"group":      it.Group,
		"attributes": it.Attributes,
	}
	if it.Unit != "" {
		body["unit"] = it.Unit
	}
	if len(it.Quantities) > 0 {
		body["quantities"] = it.Quantities
	}
	if it.HasConditions() {
		body["conditions"] = it.Conditions
	}
	if it.HasTaxes() {
		body["taxes"] = it.Taxes
	}
	if !it.Group {
		body["priceSum"] = h.Format.Format(it.PriceSum())
		body["priceWithConditions"] = h.Format.Format(it.PriceWithConditions())
		body["priceSumWithConditions"] = h.Format.Format(it.PriceSumWithConditions())
	}
	return body
}

func (h *Handler) totalsBody(t pricing.Totals) map[string]any {
	body := map[string]any{
		"max": h.Format.Format(t.Max),
		"min": h.Format.Format(t.Min),
	}
	if t.Value != nil {
		body["value"] = h.Format.Format(*t.Value)
	} else {
		body["value"] = nil
	}
	return body
}

func (h *Handler) observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	obs.CartMutation(op, result)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	switch {
	case errors.As(err, &appErr):
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
	case errors.Is(err, ErrItemNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrInvalidItem),
		errors.Is(err, ErrInvalidGroup),
		errors.Is(err, ErrInvalidDependent),
		errors.Is(err, condition.ErrInvalidCondition),
		errors.Is(err, condition.ErrInvalidTax):
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
	default:
		h.Logger.Error().Err(err).Msg("cart request failed")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unexpected error", nil)
	}
}

// decodeOneOrMany decodes a JSON body that is either one object or an array
// of objects into a slice.
func decodeOneOrMany[T any](r *http.Request) ([]*T, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var many []*T
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
		return many, nil
	}
	var one T
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return []*T{&one}, nil
}

func parseQuantityPayload(v any) (*QuantityUpdate, error) {
	if m, ok := v.(map[string]any); ok {
		value, okValue := m["value"]
		if !okValue {
			return nil, errors.Join(ErrInvalidItem, errors.New("quantity object requires a value"))
		}
		relative, _ := m["relative"].(bool)
		n, ok := value.(float64)
		if !ok {
			return nil, errors.Join(ErrInvalidItem, errors.New("quantity value must be numeric"))
		}
		return &QuantityUpdate{Relative: relative, Value: int(n)}, nil
	}
	return ParseQuantity(v)
}
