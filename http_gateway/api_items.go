package http_gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	pb "go.storefront.dev/core/protocol"
)

func (g *Gateway) serveListItems(w http.ResponseWriter, r *http.Request) {
	var req pb.ListItemsRequest
	if err := g.decodeQuery(r, &req); err != nil {
		g.writeError(w, r, err)
		return
	}
	// An empty ?q= is present but empty, and fails validation.
	if _, ok := r.URL.Query()["q"]; ok && req.Q == nil {
		var empty string
		req.Q = &empty
	}

	if resp, err := g.catalog.List(r.Context(), req); err != nil {
		g.writeError(w, r, err)
	} else {
		writeJSON(w, http.StatusOK, resp)
	}
}

func (g *Gateway) serveGetItem(w http.ResponseWriter, r *http.Request) {
	if item, err := g.catalog.Get(r.Context(), chi.URLParam(r, "id")); err != nil {
		g.writeError(w, r, err)
	} else {
		writeJSON(w, http.StatusOK, map[string]interface{}{"item": item})
	}
}

func (g *Gateway) serveCreateItem(w http.ResponseWriter, r *http.Request) {
	var req pb.CreateItemRequest
	if err := g.decodeJSON(w, r, &req); err != nil {
		g.writeError(w, r, err)
	} else if item, err := g.catalog.Create(r.Context(), req); err != nil {
		g.writeError(w, r, err)
	} else {
		writeJSON(w, http.StatusCreated, map[string]interface{}{"item": item})
	}
}

func (g *Gateway) serveUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req pb.UpdateItemRequest
	if err := g.decodeJSON(w, r, &req); err != nil {
		g.writeError(w, r, err)
	} else if item, err := g.catalog.Update(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		g.writeError(w, r, err)
	} else {
		writeJSON(w, http.StatusOK, map[string]interface{}{"item": item})
	}
}

func (g *Gateway) serveDeleteItem(w http.ResponseWriter, r *http.Request) {
	if id, err := g.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		g.writeError(w, r, err)
	} else {
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": id})
	}
}
