package handler

import (
	"net/http"
	"testing"

	"github.com/iliyamo/salon-booking/internal/catalog"
	"github.com/iliyamo/salon-booking/internal/model"
)

func TestCatalog(t *testing.T) {
	svcs := &fakeServices{items: []model.Service{
		{ID: "1", Name: "Classic Hair Cut", Category: "Hair Services", Price: "₹150"},
		{ID: "2", Name: "Gold Facial", Category: "Facials & Others", Price: "₹900"},
	}}
	h := &CatalogHandler{Services: svcs}
	e := newEcho()
	e.GET("/v1/services", h.ListServices)
	e.GET("/v1/services/:id", h.GetService)
	e.GET("/v1/categories", h.ListCategories)

	list := func(t *testing.T, query string) []model.Service {
		t.Helper()
		rec := do(t, e, http.MethodGet, "/v1/services"+query, nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
		}
		var out struct {
			Items []model.Service `json:"items"`
		}
		decode(t, rec, &out)
		return out.Items
	}

	t.Run("all", func(t *testing.T) {
		if got := list(t, ""); len(got) != 2 {
			t.Fatalf("items = %d", len(got))
		}
		if got := list(t, "?category=all"); len(got) != 2 {
			t.Fatalf("all: items = %d", len(got))
		}
	})

	t.Run("by slug", func(t *testing.T) {
		got := list(t, "?category=facials-and-others")
		if len(got) != 1 || got[0].Name != "Gold Facial" {
			t.Fatalf("items = %+v", got)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		if rec := do(t, e, http.MethodGet, "/v1/services?category=nails", nil, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("get one", func(t *testing.T) {
		rec := do(t, e, http.MethodGet, "/v1/services/1", nil, "")
		var sv model.Service
		decode(t, rec, &sv)
		if sv.Price != "₹150" {
			t.Fatalf("service = %+v", sv)
		}
		if rec := do(t, e, http.MethodGet, "/v1/services/9", nil, ""); rec.Code != http.StatusNotFound {
			t.Fatalf("missing: status = %d", rec.Code)
		}
	})

	t.Run("categories", func(t *testing.T) {
		rec := do(t, e, http.MethodGet, "/v1/categories", nil, "")
		var out struct {
			Items []catalog.Category `json:"items"`
		}
		decode(t, rec, &out)
		if len(out.Items) != 3 || out.Items[1].Slug != "skin-care" {
			t.Fatalf("categories = %+v", out.Items)
		}
	})
}
