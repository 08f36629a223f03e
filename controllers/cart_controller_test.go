package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nkoudou/veltrabackend/cart"
	"github.com/nkoudou/veltrabackend/models"
)

func newCartRouter() (*gin.Engine, *cart.Sessions) {
	gin.SetMode(gin.TestMode)

	sessions := cart.NewSessions(
		func(string) cart.Medium { return cart.NewMemoryMedium() },
		nil,
		zap.NewNop(),
	)

	r := gin.New()
	r.GET("/enquiry-cart", GetCart(sessions))
	r.POST("/enquiry-cart/items", AddCartItem(sessions))
	r.PATCH("/enquiry-cart/items/:id", UpdateCartItem(sessions))
	r.DELETE("/enquiry-cart/items/:id", RemoveCartItem(sessions))
	r.DELETE("/enquiry-cart", ClearCart(sessions))
	r.POST("/enquiry-cart/handoff", WriteHandoff(sessions))
	r.GET("/enquiry-cart/handoff", ReadHandoff(sessions))
	return r, sessions
}

func doCart(r *gin.Engine, method, path, session, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if session != "" {
		req.Header.Set("X-Cart-Session", session)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type cartItemsResponse struct {
	Items []struct {
		ID           string `json:"id"`
		ProductID    string `json:"productId"`
		ProductTitle string `json:"productTitle"`
		Quantity     string `json:"quantity"`
	} `json:"items"`
}

func TestCartRequiresSessionHeader(t *testing.T) {
	r, _ := newCartRouter()

	w := doCart(r, http.MethodGet, "/enquiry-cart", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartAddReadRemoveRoundTrip(t *testing.T) {
	r, _ := newCartRouter()

	w := doCart(r, http.MethodPost, "/enquiry-cart/items", "visitor-1",
		`{"productId":"p1","productTitle":"Dried Hibiscus","quantity":"100 kg"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created cartItemsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, created.Items, 1)
	id := created.Items[0].ID
	require.NotEmpty(t, id)

	w = doCart(r, http.MethodGet, "/enquiry-cart", "visitor-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got cartItemsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Dried Hibiscus", got.Items[0].ProductTitle)

	w = doCart(r, http.MethodDelete, "/enquiry-cart/items/"+id, "visitor-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doCart(r, http.MethodGet, "/enquiry-cart", "visitor-1", "")
	var after cartItemsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
	assert.Empty(t, after.Items)
}

func TestCartAddRejectsMissingRequiredFields(t *testing.T) {
	r, _ := newCartRouter()

	w := doCart(r, http.MethodPost, "/enquiry-cart/items", "visitor-1",
		`{"productTitle":"No product id"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartAddRejectsWhitespaceProductID(t *testing.T) {
	r, _ := newCartRouter()

	// Passes binding:"required" but trims to empty; still the caller's fault,
	// so still a 400.
	w := doCart(r, http.MethodPost, "/enquiry-cart/items", "visitor-1",
		`{"productId":"   ","productTitle":"Ginger"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doCart(r, http.MethodGet, "/enquiry-cart", "visitor-1", "")
	var got cartItemsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Empty(t, got.Items)
}

func TestCartSessionsAreIsolated(t *testing.T) {
	r, _ := newCartRouter()

	w := doCart(r, http.MethodPost, "/enquiry-cart/items", "visitor-1",
		`{"productId":"p1","productTitle":"Shea Butter"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doCart(r, http.MethodGet, "/enquiry-cart", "visitor-2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got cartItemsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Empty(t, got.Items)
}

func TestCartUpdateMergesAndPublishes(t *testing.T) {
	r, sessions := newCartRouter()

	fired := 0
	sessions.Get("visitor-1").Changed.Subscribe(func() { fired++ })

	w := doCart(r, http.MethodPost, "/enquiry-cart/items", "visitor-1",
		`{"productId":"p1","productTitle":"Baobab Powder"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created cartItemsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Items[0].ID

	w = doCart(r, http.MethodPatch, "/enquiry-cart/items/"+id, "visitor-1",
		`{"quantity":"250 kg"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var updated cartItemsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "250 kg", updated.Items[0].Quantity)
	assert.Equal(t, "Baobab Powder", updated.Items[0].ProductTitle)

	assert.Equal(t, 2, fired, "add and update each publish a change")
}

func TestCartClear(t *testing.T) {
	r, _ := newCartRouter()

	doCart(r, http.MethodPost, "/enquiry-cart/items", "visitor-1",
		`{"productId":"p1","productTitle":"Fonio"}`)
	doCart(r, http.MethodPost, "/enquiry-cart/items", "visitor-1",
		`{"productId":"p2","productTitle":"Moringa"}`)

	w := doCart(r, http.MethodDelete, "/enquiry-cart", "visitor-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doCart(r, http.MethodGet, "/enquiry-cart", "visitor-1", "")
	var got cartItemsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Empty(t, got.Items)
}

func TestHandoffWriteReadConsumes(t *testing.T) {
	r, _ := newCartRouter()

	doCart(r, http.MethodPost, "/enquiry-cart/items", "visitor-1",
		`{"productId":"p1","productTitle":"Cashew Nuts","quantity":"1 tonne"}`)

	w := doCart(r, http.MethodPost, "/enquiry-cart/handoff", "visitor-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, w.Body.String())

	w = doCart(r, http.MethodGet, "/enquiry-cart/handoff", "visitor-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var first struct {
		Items []struct {
			ProductTitle string `json:"productTitle"`
			Quantity     string `json:"quantity"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	require.Len(t, first.Items, 1)
	assert.Equal(t, "Cashew Nuts", first.Items[0].ProductTitle)
	assert.Equal(t, "1 tonne", first.Items[0].Quantity)

	// The slot is one-shot.
	w = doCart(r, http.MethodGet, "/enquiry-cart/handoff", "visitor-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestHandoffEmptyCartRejected(t *testing.T) {
	r, _ := newCartRouter()

	w := doCart(r, http.MethodPost, "/enquiry-cart/handoff", "visitor-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandoffFiresPopulateFormSignal(t *testing.T) {
	r, sessions := newCartRouter()

	fired := 0
	sessions.Get("visitor-1").PopulateForm.Subscribe(func() { fired++ })

	doCart(r, http.MethodPost, "/enquiry-cart/items", "visitor-1",
		`{"productId":"p1","productTitle":"Sesame Seeds"}`)
	w := doCart(r, http.MethodPost, "/enquiry-cart/handoff", "visitor-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, fired)
}

type stubRenderer struct {
	err error
}

func (s stubRenderer) Render(context.Context, models.EnquiryList) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.4 stub"), nil
}

type stubUploader struct {
	err error
	url string
}

func (s stubUploader) UploadCartPDF(context.Context, string, []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func newExportRouter(renderer DocRenderer, uploader DocUploader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	sessions := cart.NewSessions(
		func(string) cart.Medium { return cart.NewMemoryMedium() }, nil, zap.NewNop())

	r := gin.New()
	r.POST("/enquiry-cart/items", AddCartItem(sessions))
	r.POST("/enquiry-cart/export", ExportCart(sessions, renderer, uploader))
	return r
}

func TestExportUnconfiguredReturns503(t *testing.T) {
	r := newExportRouter(nil, nil)

	w := doCart(r, http.MethodPost, "/enquiry-cart/export", "visitor-1", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestExportEmptyCartRejected(t *testing.T) {
	r := newExportRouter(stubRenderer{}, stubUploader{url: "https://storage.example/x.pdf"})

	w := doCart(r, http.MethodPost, "/enquiry-cart/export", "visitor-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportReturnsUploadURL(t *testing.T) {
	r := newExportRouter(stubRenderer{}, stubUploader{url: "https://storage.example/x.pdf"})

	doCart(r, http.MethodPost, "/enquiry-cart/items", "visitor-1",
		`{"productId":"p1","productTitle":"Kola Nuts"}`)
	w := doCart(r, http.MethodPost, "/enquiry-cart/export", "visitor-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"url":"https://storage.example/x.pdf"}`, w.Body.String())
}

func TestExportRenderFailureIsBadGateway(t *testing.T) {
	r := newExportRouter(stubRenderer{err: assert.AnError}, stubUploader{})

	doCart(r, http.MethodPost, "/enquiry-cart/items", "visitor-1",
		`{"productId":"p1","productTitle":"Kola Nuts"}`)
	w := doCart(r, http.MethodPost, "/enquiry-cart/export", "visitor-1", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestExportUploadFailureIsServerError(t *testing.T) {
	r := newExportRouter(stubRenderer{}, stubUploader{err: assert.AnError})

	doCart(r, http.MethodPost, "/enquiry-cart/items", "visitor-1",
		`{"productId":"p1","productTitle":"Kola Nuts"}`)
	w := doCart(r, http.MethodPost, "/enquiry-cart/export", "visitor-1", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
