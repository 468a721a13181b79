package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshkart/freshkart-api/internal/apperr"
	"github.com/freshkart/freshkart-api/internal/catalog"
)

// CatalogHandler exposes the category, subcategory and product surfaces.
// Reads are public; writes are admin only.
type CatalogHandler struct {
	Categories    *catalog.CategoryService
	SubCategories *catalog.SubCategoryService
	Products      *catalog.ProductService
}

func (h *CatalogHandler) Register(r chi.Router, auth *Auth) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.listCategories)
		r.Get("/search", h.searchCategories)
		r.Get("/{id}", h.getCategory)
		r.Get("/{id}/subcategories", h.subcategoriesByParent)
		r.Get("/{id}/products", h.productsByCategory)

		r.Group(func(r chi.Router) {
			r.Use(auth.Require, auth.Admin)
			r.Get("/priority-slots", h.categorySlots)
			r.Post("/", h.createCategory)
			r.Put("/{id}", h.updateCategory)
			r.Delete("/{id}", h.deleteCategory)
			r.Patch("/{id}/list", h.listCategory)
			r.Patch("/{id}/unlist", h.unlistCategory)
		})
	})

	r.Route("/subcategories", func(r chi.Router) {
		r.Get("/", h.listSubCategories)
		r.Get("/search", h.searchSubCategories)
		r.Get("/{id}", h.getSubCategory)

		r.Group(func(r chi.Router) {
			r.Use(auth.Require, auth.Admin)
			r.Get("/priority-slots", h.subCategorySlots)
			r.Post("/", h.createSubCategory)
			r.Put("/{id}", h.updateSubCategory)
			r.Delete("/{id}", h.deleteSubCategory)
			r.Patch("/{id}/list", h.listSubCategory)
			r.Patch("/{id}/unlist", h.unlistSubCategory)
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/search", h.searchProducts)
		r.Get("/{id}", h.getProduct)

		r.Group(func(r chi.Router) {
			r.Use(auth.Require, auth.Admin)
			r.Post("/", h.createProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
			r.Patch("/{id}/list", h.listProduct)
			r.Patch("/{id}/unlist", h.unlistProduct)
		})
	})
}

// categoryInput accepts either a JSON body or a multipart form with an
// optional photo file.
func categoryInput(w http.ResponseWriter, r *http.Request) (catalog.CategoryInput, bool) {
	var in catalog.CategoryInput
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid multipart form"))
			return in, false
		}
		in.Name = r.FormValue("name")
		in.Description = r.FormValue("description")
		priority, err := formIntPtr(r, "priority")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid priority"))
			return in, false
		}
		in.Priority = priority
		photo, err := formImage(r, "photo")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid photo upload"))
			return in, false
		}
		in.Photo = photo
		return in, true
	}

	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Priority    *int   `json:"priority"`
	}
	if !decodeBody(w, r, &body) {
		return in, false
	}
	in.Name = body.Name
	in.Description = body.Description
	in.Priority = body.Priority
	return in, true
}

func (h *CatalogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	in, ok := categoryInput(w, r)
	if !ok {
		return
	}
	c, err := h.Categories.Create(r.Context(), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	items, pages, err := h.Categories.List(r.Context(), page, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, TotalPages: pages})
}

func (h *CatalogHandler) searchCategories(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	items, pages, err := h.Categories.Search(r.Context(), r.URL.Query().Get("q"), page, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, TotalPages: pages})
}

func (h *CatalogHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.Categories.Get(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := categoryInput(w, r)
	if !ok {
		return
	}
	c, err := h.Categories.Update(r.Context(), id, in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Categories.Delete(r.Context(), id); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}

func (h *CatalogHandler) listCategory(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Categories.ListByID)
}

func (h *CatalogHandler) unlistCategory(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Categories.UnlistByID)
}

func (h *CatalogHandler) categorySlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.Categories.AvailablePrioritySlots(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"availablePriorities": slots})
}

func subCategoryInput(w http.ResponseWriter, r *http.Request) (catalog.SubCategoryInput, bool) {
	var in catalog.SubCategoryInput
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid multipart form"))
			return in, false
		}
		in.Name = r.FormValue("name")
		in.Description = r.FormValue("description")
		if raw := r.FormValue("mainCategory"); raw != "" {
			parent, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid main category id"))
				return in, false
			}
			in.MainCategory = parent
		}
		priority, err := formIntPtr(r, "priority")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid priority"))
			return in, false
		}
		in.Priority = priority
		photo, err := formImage(r, "photo")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid photo upload"))
			return in, false
		}
		in.Photo = photo
		return in, true
	}

	var body struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		MainCategory string `json:"mainCategory"`
		Priority     *int   `json:"priority"`
	}
	if !decodeBody(w, r, &body) {
		return in, false
	}
	in.Name = body.Name
	in.Description = body.Description
	in.Priority = body.Priority
	if body.MainCategory != "" {
		parent, err := primitive.ObjectIDFromHex(body.MainCategory)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid main category id"))
			return in, false
		}
		in.MainCategory = parent
	}
	return in, true
}

func (h *CatalogHandler) createSubCategory(w http.ResponseWriter, r *http.Request) {
	in, ok := subCategoryInput(w, r)
	if !ok {
		return
	}
	c, err := h.SubCategories.Create(r.Context(), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CatalogHandler) listSubCategories(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	items, pages, err := h.SubCategories.List(r.Context(), page, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, TotalPages: pages})
}

func (h *CatalogHandler) searchSubCategories(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	items, pages, err := h.SubCategories.Search(r.Context(), r.URL.Query().Get("q"), page, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, TotalPages: pages})
}

func (h *CatalogHandler) subcategoriesByParent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)
	items, pages, err := h.SubCategories.ListedByParent(r.Context(), id, page, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, TotalPages: pages})
}

func (h *CatalogHandler) getSubCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.SubCategories.Get(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) updateSubCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := subCategoryInput(w, r)
	if !ok {
		return
	}
	c, err := h.SubCategories.Update(r.Context(), id, in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) deleteSubCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.SubCategories.Delete(r.Context(), id); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Subcategory deleted successfully"})
}

func (h *CatalogHandler) listSubCategory(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.SubCategories.ListByID)
}

func (h *CatalogHandler) unlistSubCategory(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.SubCategories.UnlistByID)
}

func (h *CatalogHandler) subCategorySlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.SubCategories.AvailablePrioritySlots(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"availablePriorities": slots})
}

// productBody is the JSON shape for product create and update; multipart
// requests carry it in a "payload" field with image files alongside.
type productBody struct {
	Name         string                `json:"name"`
	Descriptions []catalog.Description `json:"descriptions"`
	Category     string                `json:"category"`
	SubCategory  string                `json:"subCategory"`
	SKU          string                `json:"sku"`
	EAN          string                `json:"ean"`
	Variants     []catalog.Variant     `json:"variants"`
}

func productInput(w http.ResponseWriter, r *http.Request) (catalog.ProductInput, bool) {
	var in catalog.ProductInput
	var body productBody

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid multipart form"))
			return in, false
		}
		if err := json.Unmarshal([]byte(r.FormValue("payload")), &body); err != nil {
			writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid product payload"))
			return in, false
		}
		images, err := formImages(r, "images")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid image upload"))
			return in, false
		}
		in.Images = images
	} else if !decodeBody(w, r, &body) {
		return in, false
	}

	in.Name = body.Name
	in.Descriptions = body.Descriptions
	in.SKU = body.SKU
	in.EAN = body.EAN
	in.Variants = body.Variants
	if body.Category != "" {
		category, err := primitive.ObjectIDFromHex(body.Category)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid category id"))
			return in, false
		}
		in.Category = category
	}
	if body.SubCategory != "" {
		sub, err := primitive.ObjectIDFromHex(body.SubCategory)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid subcategory id"))
			return in, false
		}
		in.SubCategory = &sub
	}
	return in, true
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := productInput(w, r)
	if !ok {
		return
	}
	p, err := h.Products.Create(r.Context(), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	items, pages, err := h.Products.List(r.Context(), page, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, TotalPages: pages})
}

func (h *CatalogHandler) searchProducts(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	items, pages, err := h.Products.Search(r.Context(), r.URL.Query().Get("q"), page, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, TotalPages: pages})
}

func (h *CatalogHandler) productsByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)
	items, pages, err := h.Products.ListedByCategory(r.Context(), id, page, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, TotalPages: pages})
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.Products.Get(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := productInput(w, r)
	if !ok {
		return
	}
	p, err := h.Products.Update(r.Context(), id, in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Products.Delete(r.Context(), id); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func (h *CatalogHandler) listProduct(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Products.ListByID)
}

func (h *CatalogHandler) unlistProduct(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Products.UnlistByID)
}

// toggle runs a list or unlist operation and answers with its message.
func (h *CatalogHandler) toggle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id primitive.ObjectID) (string, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	msg, err := op(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}
