package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/georgemunganga/catalog-service/internal/modules/auth"
	"github.com/georgemunganga/catalog-service/internal/modules/user"
	"github.com/georgemunganga/catalog-service/internal/platform/httpx"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct {
	service Service
	log     *zap.Logger
}

func NewHandler(service Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

// RegisterRoutes mounts the product endpoints. r must already run auth.Authenticate.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(user.RoleAdmin, user.RoleViewer))
			r.Get("/", h.listProducts)
			r.Get("/count", h.countProducts)
			r.Get("/{id}", h.getProduct)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(user.RoleAdmin))
			r.Post("/", h.createProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})
	})
}

// productRequest is the body of create and update calls. Domain rules such as
// a non-blank name are left to the service so that violations are audited.
type productRequest struct {
	Name        string           `json:"name" validate:"max=255"`
	Brand       string           `json:"brand" validate:"max=255"`
	Category    string           `json:"category" validate:"max=32"`
	Price       *decimal.Decimal `json:"price"`
	Description string           `json:"description" validate:"max=2000"`
	Active      *bool            `json:"active"`
}

func (req productRequest) toProduct() *Product {
	p := &Product{
		Name:        req.Name,
		Brand:       strings.TrimSpace(req.Brand),
		Category:    Category(strings.ToUpper(strings.TrimSpace(req.Category))),
		Description: req.Description,
		Active:      true,
	}
	if req.Price != nil {
		p.Price = decimal.NewNullDecimal(*req.Price)
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	return p
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var products []*Product
	if f.IsEmpty() {
		products, err = h.service.FindAll(r.Context())
	} else {
		products, err = h.service.Search(r.Context(), f)
	}
	if err != nil {
		h.internalError(w, "list products", err)
		return
	}
	if products == nil {
		products = []*Product{}
	}
	httpx.Respond(w, http.StatusOK, products)
}

func (h *Handler) countProducts(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Count(r.Context())
	if err != nil {
		h.internalError(w, "count products", err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	p, found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.internalError(w, "get product", err)
		return
	}
	if !found {
		httpx.Error(w, http.StatusNotFound, "Product not found")
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	actor, _ := auth.PrincipalFromContext(r.Context())
	p, err := h.service.Create(r.Context(), req.toProduct(), actor)
	if err != nil {
		h.mutationError(w, "create product", err)
		return
	}
	httpx.Respond(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	req, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	actor, _ := auth.PrincipalFromContext(r.Context())
	p, found, err := h.service.Update(r.Context(), id, req.toProduct(), actor)
	if err != nil {
		h.mutationError(w, "update product", err)
		return
	}
	if !found {
		httpx.Error(w, http.StatusNotFound, "Product not found")
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	actor, _ := auth.PrincipalFromContext(r.Context())
	deleted, err := h.service.Delete(r.Context(), id, actor)
	if err != nil {
		h.mutationError(w, "delete product", err)
		return
	}
	if !deleted {
		httpx.Error(w, http.StatusNotFound, "Product not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) mutationError(w http.ResponseWriter, op string, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.Error(w, http.StatusBadRequest, verr.Reason)
	case errors.Is(err, ErrForbidden):
		httpx.Error(w, http.StatusForbidden, "Access denied")
	default:
		h.internalError(w, op, err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op, zap.Error(err))
	httpx.Error(w, http.StatusInternalServerError, "internal error")
}

func decodeProduct(w http.ResponseWriter, r *http.Request) (productRequest, bool) {
	var req productRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request body")
		return req, false
	}
	if err := httpx.Validate(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Error(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	var f Filter
	var err error

	if f.Category, err = ParseCategory(q.Get("category")); err != nil {
		return f, err
	}
	f.Brand = q.Get("brand")
	f.Text = q.Get("text")
	if f.MinPrice, err = parsePrice(q.Get("minPrice")); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parsePrice(q.Get("maxPrice")); err != nil {
		return f, err
	}
	return f, nil
}

func parsePrice(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, errors.New("invalid price " + strconv.Quote(s))
	}
	return decimal.NewNullDecimal(d), nil
}
