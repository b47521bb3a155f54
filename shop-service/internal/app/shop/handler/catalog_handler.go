package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"storefront/shop-service/internal/app/shop/entity"
	"storefront/shop-service/internal/app/shop/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler обрабатывает HTTP запросы для каталога: единицы, категории, товары
type CatalogHandler struct {
	catalogService service.CatalogServiceInterface
}

func NewCatalogHandler(catalogService service.CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// === UNITS HANDLERS ===

func (h *CatalogHandler) CreateUnit(c *gin.Context) {
	var req entity.CreateUnitRequest
	if !bindJSON(c, &req) {
		return
	}

	unit, err := h.catalogService.CreateUnit(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err, "Failed to create unit")
		return
	}

	c.JSON(http.StatusCreated, unit)
}

func (h *CatalogHandler) GetUnit(c *gin.Context) {
	id, ok := parseID(c, "id", "Unit")
	if !ok {
		return
	}

	unit, err := h.catalogService.GetUnit(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "Failed to get unit")
		return
	}

	c.JSON(http.StatusOK, unit)
}

// ListUnits обрабатывает GET /units (кеш Redis)
func (h *CatalogHandler) ListUnits(c *gin.Context) {
	units, err := h.catalogService.ListUnits(c.Request.Context())
	if err != nil {
		handleError(c, err, "Failed to get units")
		return
	}

	c.JSON(http.StatusOK, entity.UnitListResponse{Units: units, Total: len(units)})
}

func (h *CatalogHandler) UpdateUnit(c *gin.Context) {
	id, ok := parseID(c, "id", "Unit")
	if !ok {
		return
	}

	var req entity.UpdateUnitRequest
	if !bindJSON(c, &req) {
		return
	}

	unit, err := h.catalogService.UpdateUnit(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err, "Failed to update unit")
		return
	}

	c.JSON(http.StatusOK, unit)
}

func (h *CatalogHandler) DeleteUnit(c *gin.Context) {
	id, ok := parseID(c, "id", "Unit")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteUnit(c.Request.Context(), id); err != nil {
		handleError(c, err, "Failed to delete unit")
		return
	}

	c.Status(http.StatusNoContent)
}

// === CATEGORIES HANDLERS ===

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req entity.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err, "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id", "Category")
	if !ok {
		return
	}

	category, err := h.catalogService.GetCategory(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "Failed to get category")
		return
	}

	c.JSON(http.StatusOK, category)
}

// ListCategories обрабатывает GET /categories (кеш Redis)
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		handleError(c, err, "Failed to get categories")
		return
	}

	c.JSON(http.StatusOK, entity.CategoryListResponse{Categories: categories, Total: len(categories)})
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id", "Category")
	if !ok {
		return
	}

	var req entity.UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err, "Failed to update category")
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory обрабатывает DELETE /categories/:id; дочерние категории остаются без родителя
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id", "Category")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		handleError(c, err, "Failed to delete category")
		return
	}

	c.Status(http.StatusNoContent)
}

// === PRODUCTS HANDLERS ===

// CreateProduct обрабатывает POST /products (multipart или urlencoded форма)
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	form, closeImage, err := readProductForm(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid image upload")
		return
	}
	defer closeImage()

	product, err := h.catalogService.CreateProduct(c.Request.Context(), form)
	if err != nil {
		handleError(c, err, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "Product")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "Failed to get product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// ListProducts обрабатывает GET /products?limit=&offset=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, http.StatusBadRequest, "limit must be an integer")
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		respondError(c, http.StatusBadRequest, "offset must be an integer")
		return
	}

	page, err := h.catalogService.ListProducts(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err, "Failed to get products")
		return
	}

	c.JSON(http.StatusOK, page)
}

// UpdateProduct обрабатывает PUT и PATCH /products/:id; оба метода обновляют только переданные поля
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "Product")
	if !ok {
		return
	}

	form, closeImage, err := readProductForm(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid image upload")
		return
	}
	defer closeImage()

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, form)
	if err != nil {
		handleError(c, err, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct обрабатывает DELETE /products/:id вместе с файлом изображения
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "Product")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		handleError(c, err, "Failed to delete product")
		return
	}

	c.Status(http.StatusNoContent)
}

// readProductForm собирает ProductForm из полей формы. Возвращаемая функция закрывает файл изображения.
func readProductForm(c *gin.Context) (*entity.ProductForm, func(), error) {
	field := func(name string) *string {
		if value, ok := c.GetPostForm(name); ok {
			return &value
		}
		return nil
	}

	form := &entity.ProductForm{
		Name:            field("name"),
		Description:     field("description"),
		Price:           field("price"),
		Discount:        field("discount"),
		Unit:            field("unit"),
		QuantityPerUnit: field("quantity_per_unit"),
		Currency:        field("currency"),
	}
	form.Categories, form.HasCategories = c.GetPostFormArray("categories")

	noop := func() {}
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return form, noop, nil
		}
		return nil, noop, err
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, err
	}
	form.Image = &entity.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}

	return form, func() { closeQuietly(file) }, nil
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
