package cart_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mfachry/kart/internal/cart"
	"github.com/mfachry/kart/internal/events"
	"github.com/mfachry/kart/internal/money"
	"github.com/mfachry/kart/internal/session"
)

func newTestHandler(t *testing.T) *cart.Handler {
	t.Helper()
	return cart.NewHandler(session.NewMemory(), events.NewBus(), money.Default(), "cart", zerolog.Nop())
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func dataOf(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope), "body: %s", rr.Body.String())
	return envelope.Data
}

func TestCreateCart(t *testing.T) {
	routes := newTestHandler(t).Routes()

	rr := doJSON(t, routes, http.MethodPost, "/", `{}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	data := dataOf(t, rr)
	require.NotEmpty(t, data["cartId"])
	require.Equal(t, "cart", data["instance"])

	rr = doJSON(t, routes, http.MethodPost, "/", `{"cartId":"my-session"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "my-session", dataOf(t, rr)["cartId"])
}

func TestCreateCartDefaultKey(t *testing.T) {
	h := newTestHandler(t)
	h.DefaultKey = "storefront"
	routes := h.Routes()

	rr := doJSON(t, routes, http.MethodPost, "/", `{}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "storefront", dataOf(t, rr)["cartId"])

	// An explicit id still wins over the configured default.
	rr = doJSON(t, routes, http.MethodPost, "/", `{"cartId":"my-session"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "my-session", dataOf(t, rr)["cartId"])
}

func TestAddItemAndSubTotal(t *testing.T) {
	routes := newTestHandler(t).Routes()

	rr := doJSON(t, routes, http.MethodPost, "/s1/items",
		`{"id":"a","name":"keyboard","price":"212.50","quantity":1}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, routes, http.MethodPost, "/s1/items",
		`[{"id":"b","name":"mouse","price":"69.25","quantity":2},
		  {"id":"c","name":"cable","price":"50.25","quantity":3}]`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, routes, http.MethodGet, "/s1/subtotal", "")
	require.Equal(t, http.StatusOK, rr.Code)
	data := dataOf(t, rr)
	require.Equal(t, "501.75", data["value"])
	require.Equal(t, "501.75", data["max"])
	require.Equal(t, "501.75", data["min"])
}

func TestAddTaxAndTotal(t *testing.T) {
	routes := newTestHandler(t).Routes()

	rr := doJSON(t, routes, http.MethodPost, "/s1/items",
		`[{"id":"a","name":"keyboard","price":"212.50","quantity":1},
		  {"id":"b","name":"mouse","price":"69.25","quantity":2},
		  {"id":"c","name":"cable","price":"50.25","quantity":3}]`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, routes, http.MethodPost, "/s1/taxes",
		`{"name":"vat","type":"tax","target":"subtotal","value":"12.5%"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, routes, http.MethodGet, "/s1/subtotal", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "564.47", dataOf(t, rr)["value"])

	rr = doJSON(t, routes, http.MethodGet, "/s1/total", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "564.47", dataOf(t, rr)["value"])
}

func TestAddItemValidation(t *testing.T) {
	routes := newTestHandler(t).Routes()

	rr := doJSON(t, routes, http.MethodPost, "/s1/items", `{"id":"a","price":"10","quantity":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())

	rr = doJSON(t, routes, http.MethodPost, "/s1/items", `not json`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNegativeTaxRejected(t *testing.T) {
	routes := newTestHandler(t).Routes()
	rr := doJSON(t, routes, http.MethodPost, "/s1/taxes",
		`{"name":"vat","type":"tax","target":"subtotal","value":"-12.5%"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
}

func TestGetUnknownItem(t *testing.T) {
	routes := newTestHandler(t).Routes()
	rr := doJSON(t, routes, http.MethodGet, "/s1/items/ghost", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, routes, http.MethodPatch, "/s1/items/ghost", `{"name":"renamed"}`)
	require.Equal(t, http.StatusNotFound, rr.Code, rr.Body.String())
}

func TestUpdateQuantityForms(t *testing.T) {
	routes := newTestHandler(t).Routes()

	rr := doJSON(t, routes, http.MethodPost, "/s1/items",
		`{"id":"a","name":"widget","price":"10","quantity":2}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	// "+2" adjusts relative to the current quantity.
	rr = doJSON(t, routes, http.MethodPatch, "/s1/items/a", `{"quantity":"+2"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// The object form replaces absolutely.
	rr = doJSON(t, routes, http.MethodPatch, "/s1/items/a", `{"quantity":{"relative":false,"value":7}}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doJSON(t, routes, http.MethodGet, "/s1/items/a", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, float64(7), dataOf(t, rr)["quantity"])

	rr = doJSON(t, routes, http.MethodGet, "/s1/quantity", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, float64(7), dataOf(t, rr)["quantity"])
}

func TestGroupEndpoints(t *testing.T) {
	routes := newTestHandler(t).Routes()

	rr := doJSON(t, routes, http.MethodPost, "/s1/groups", `{"id":"bundle","name":"starter bundle"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, routes, http.MethodPost, "/s1/items",
		`{"id":"a","name":"member","price":"30","quantity":2,"attributes":{"group_id":"bundle"}}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, routes, http.MethodGet, "/s1/groups/bundle/subtotal", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "60.00", dataOf(t, rr)["value"])

	// Referencing a missing container fails validation.
	rr = doJSON(t, routes, http.MethodPost, "/s1/items",
		`{"id":"b","name":"stray","price":"5","quantity":1,"attributes":{"group_id":"ghost"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
}

func TestConditionEndpoints(t *testing.T) {
	routes := newTestHandler(t).Routes()

	rr := doJSON(t, routes, http.MethodPost, "/s1/conditions",
		`[{"name":"sale","type":"sale","target":"subtotal","value":"-5%"},
		  {"name":"promo","type":"promo","target":"subtotal","value":"-10"}]`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, routes, http.MethodGet, "/s1/conditions", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var listEnvelope struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listEnvelope))
	require.Len(t, listEnvelope.Data, 2)

	rr = doJSON(t, routes, http.MethodGet, "/s1/conditions?type=promo", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listEnvelope))
	require.Len(t, listEnvelope.Data, 1)

	rr = doJSON(t, routes, http.MethodGet, "/s1/conditions/sale", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, routes, http.MethodDelete, "/s1/conditions/sale", "")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = doJSON(t, routes, http.MethodGet, "/s1/conditions/sale", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, routes, http.MethodDelete, "/s1/conditions", "")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = doJSON(t, routes, http.MethodGet, "/s1/conditions", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listEnvelope))
	require.Empty(t, listEnvelope.Data)
}

func TestItemConditionEndpoints(t *testing.T) {
	routes := newTestHandler(t).Routes()

	rr := doJSON(t, routes, http.MethodPost, "/s1/items",
		`{"id":"a","name":"widget","price":"100","quantity":1}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, routes, http.MethodPost, "/s1/items/a/conditions",
		`{"name":"sale","type":"sale","target":"item","value":"-10%"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, routes, http.MethodGet, "/s1/subtotal", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "90.00", dataOf(t, rr)["value"])

	rr = doJSON(t, routes, http.MethodDelete, "/s1/items/a/conditions/sale", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, routes, http.MethodGet, "/s1/subtotal", "")
	require.Equal(t, "100.00", dataOf(t, rr)["value"])
}

func TestCartContentEnvelope(t *testing.T) {
	routes := newTestHandler(t).Routes()

	rr := doJSON(t, routes, http.MethodGet, "/s1/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	data := dataOf(t, rr)
	require.Equal(t, true, data["isEmpty"])

	rr = doJSON(t, routes, http.MethodPost, "/s1/items",
		`{"id":"a","name":"widget","price":"10","quantity":1}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, routes, http.MethodGet, "/s1/", "")
	data = dataOf(t, rr)
	require.Equal(t, false, data["isEmpty"])
	items, ok := data["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	rr = doJSON(t, routes, http.MethodDelete, "/s1/items", "")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = doJSON(t, routes, http.MethodGet, "/s1/", "")
	require.Equal(t, true, dataOf(t, rr)["isEmpty"])
}
