package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/emporia-shop/emporia-backend/internal/models"
	"github.com/emporia-shop/emporia-backend/internal/services"
)

type CatalogHandler struct {
	store   *services.CatalogStore
	cache   *services.Cache
	uploads *services.CloudinaryService // nil when Cloudinary isn't configured
}

func NewCatalogHandler(store *services.CatalogStore, cache *services.Cache, uploads *services.CloudinaryService) *CatalogHandler {
	return &CatalogHandler{store: store, cache: cache, uploads: uploads}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Shop lists published items, optionally filtered by ?category=<id>. The
// unfiltered listing is served from cache when possible.
func (h *CatalogHandler) Shop(w http.ResponseWriter, r *http.Request) {
	if categoryParam := r.URL.Query().Get("category"); categoryParam != "" {
		categoryID, err := uuid.Parse(categoryParam)
		if err != nil {
			http.Error(w, "Invalid category id", http.StatusBadRequest)
			return
		}
		items, err := h.store.GetPublishedItemsByCategory(r.Context(), categoryID)
		if err != nil {
			log.Printf("shop by category failed: %v", err)
			http.Error(w, "Unable to fetch items", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
		return
	}

	var items []models.Item
	if hit, _ := h.cache.Get(r.Context(), services.CacheKeyPublishedItems, &items); !hit {
		var err error
		items, err = h.store.GetPublishedItems(r.Context())
		if err != nil {
			log.Printf("shop listing failed: %v", err)
			http.Error(w, "Unable to fetch items", http.StatusInternalServerError)
			return
		}
		if err := h.cache.Set(r.Context(), services.CacheKeyPublishedItems, items); err != nil {
			log.Printf("cache set failed for published items: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// ShopItem returns a single item by id
func (h *CatalogHandler) ShopItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid item id", http.StatusBadRequest)
		return
	}

	item, err := h.store.GetItemByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			http.Error(w, "Item not found", http.StatusNotFound)
			return
		}
		log.Printf("get item failed: %v", err)
		http.Error(w, "Unable to fetch item", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"item": item})
}

// Items lists all items (published or not) for the admin view, optionally
// filtered by ?minDate=YYYY-MM-DD.
func (h *CatalogHandler) Items(w http.ResponseWriter, r *http.Request) {
	var items []models.Item
	var err error

	if minDateParam := r.URL.Query().Get("minDate"); minDateParam != "" {
		minDate, parseErr := time.Parse("2006-01-02", minDateParam)
		if parseErr != nil {
			http.Error(w, "Invalid minDate, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		items, err = h.store.GetItemsByMinDate(r.Context(), minDate)
	} else {
		items, err = h.store.GetAllItems(r.Context())
	}
	if err != nil {
		log.Printf("items listing failed: %v", err)
		http.Error(w, "Unable to fetch items", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// AddItem creates an item from multipart form data. The optional
// featureImage file goes to Cloudinary; the stored item carries the URL.
func (h *CatalogHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10MB
		http.Error(w, "Invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	if title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}

	price := 0.0
	if priceParam := r.FormValue("price"); priceParam != "" {
		var err error
		price, err = strconv.ParseFloat(priceParam, 64)
		if err != nil {
			http.Error(w, "Invalid price", http.StatusBadRequest)
			return
		}
	}

	item := models.Item{
		Title:     title,
		Body:      r.FormValue("body"),
		Published: r.FormValue("published") == "true",
		Price:     price,
	}

	if categoryParam := r.FormValue("category"); categoryParam != "" {
		categoryID, err := uuid.Parse(categoryParam)
		if err != nil {
			http.Error(w, "Invalid category id", http.StatusBadRequest)
			return
		}
		item.CategoryID = &categoryID
	}

	// Upload feature image if provided
	file, fileHeader, err := r.FormFile("featureImage")
	if err == nil {
		defer file.Close()
		if h.uploads == nil {
			http.Error(w, "File upload service not available", http.StatusInternalServerError)
			return
		}
		url, err := h.uploads.UploadFileFromHeader(r.Context(), fileHeader, "items")
		if err != nil {
			log.Printf("feature image upload failed: %v", err)
			http.Error(w, "Failed to upload feature image", http.StatusInternalServerError)
			return
		}
		item.FeatureImage = url
	}

	if err := h.store.AddItem(r.Context(), &item); err != nil {
		log.Printf("add item failed: %v", err)
		http.Error(w, "Unable to add item", http.StatusInternalServerError)
		return
	}

	h.invalidateListings(r)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "item": item})
}

// DeleteItem removes an item by id
func (h *CatalogHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid item id", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteItemByID(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			http.Error(w, "Item not found", http.StatusNotFound)
			return
		}
		log.Printf("delete item failed: %v", err)
		http.Error(w, "Unable to remove item", http.StatusInternalServerError)
		return
	}

	h.invalidateListings(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Categories lists all categories, cached
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	var categories []models.Category
	if hit, _ := h.cache.Get(r.Context(), services.CacheKeyCategories, &categories); !hit {
		var err error
		categories, err = h.store.GetCategories(r.Context())
		if err != nil {
			log.Printf("categories listing failed: %v", err)
			http.Error(w, "Unable to fetch categories", http.StatusInternalServerError)
			return
		}
		if err := h.cache.Set(r.Context(), services.CacheKeyCategories, categories); err != nil {
			log.Printf("cache set failed for categories: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// AddCategory creates a category
func (h *CatalogHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var category models.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if category.Category == "" {
		http.Error(w, "Category name is required", http.StatusBadRequest)
		return
	}

	category.ID = uuid.Nil
	if err := h.store.AddCategory(r.Context(), &category); err != nil {
		log.Printf("add category failed: %v", err)
		http.Error(w, "Unable to add category", http.StatusInternalServerError)
		return
	}

	h.invalidateListings(r)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "category": category})
}

// DeleteCategory removes a category by id
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid category id", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteCategoryByID(r.Context(), id); err != nil {
		log.Printf("delete category failed: %v", err)
		http.Error(w, "Unable to remove category", http.StatusInternalServerError)
		return
	}

	h.invalidateListings(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// invalidateListings drops the cached listings after any catalog write.
func (h *CatalogHandler) invalidateListings(r *http.Request) {
	if err := h.cache.Delete(r.Context(), services.CacheKeyPublishedItems, services.CacheKeyCategories); err != nil {
		log.Printf("cache invalidation failed: %v", err)
	}
}
