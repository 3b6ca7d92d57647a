package handlers

import (
	"reflect"
	"strings"

	"katalog/internal/apperror"
	"katalog/internal/middleware"
	"katalog/internal/models"
	"katalog/internal/pagination"
	"katalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MsgInvalidBody is returned when a write body cannot be decoded.
const MsgInvalidBody = "Invalid request body"

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service             *services.ProductService
	guard               *middleware.Guard
	validate            *validator.Validate
	writeRequiresAPIKey bool
	logger              *zap.Logger
}

// NewProductHandler creates a new ProductHandler. When writeRequiresAPIKey is
// set the API key stage also runs ahead of the token stage on writes.
func NewProductHandler(service *services.ProductService, guard *middleware.Guard, writeRequiresAPIKey bool, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service:             service,
		guard:               guard,
		validate:            newValidator(),
		writeRequiresAPIKey: writeRequiresAPIKey,
		logger:              logger,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.guard.APIKey(), h.HandleListProducts)
	productRoutes.Get("/:id", h.guard.APIKey(), h.HandleGetProduct)
	productRoutes.Post("/", h.writeChain(h.HandleCreateProduct, models.RoleEditor, models.RoleAdmin)...)
	productRoutes.Put("/:id", h.writeChain(h.HandleUpdateProduct, models.RoleEditor, models.RoleAdmin)...)
	productRoutes.Delete("/:id", h.writeChain(h.HandleDeleteProduct, models.RoleAdmin)...)
}

func (h *ProductHandler) writeChain(handler fiber.Handler, roles ...string) []fiber.Handler {
	chain := make([]fiber.Handler, 0, 4)
	if h.writeRequiresAPIKey {
		chain = append(chain, h.guard.APIKey())
	}
	return append(chain, h.guard.Token(), h.guard.Role(roles...), handler)
}

// HandleListProducts returns one page of the catalog.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	params := pagination.ParseParams(c.Query("page"), c.Query("limit"))

	products, info, err := h.service.ListProducts(c.UserContext(), params)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, models.Envelope{Data: products, Pagination: &info})
}

// HandleGetProduct returns a single product.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, models.Envelope{Data: product})
}

// HandleCreateProduct creates a product from a complete body.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("invalid create body", zap.Error(err))
		return apperror.Validation(MsgInvalidBody)
	}

	if err := h.validate.Struct(req); err != nil {
		return apperror.Validation(services.MsgFieldsRequired).
			WithDetails(map[string]interface{}{"fields": invalidFields(err)})
	}

	product, err := h.service.CreateProduct(c.UserContext(), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, models.Envelope{Data: product})
}

// HandleUpdateProduct applies a partial update.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req models.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("invalid update body", zap.Error(err))
		return apperror.Validation(MsgInvalidBody)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, models.Envelope{Data: product})
}

// HandleDeleteProduct removes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func invalidFields(err error) []string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{}
	}
	fields := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, e.Field())
	}
	return fields
}
