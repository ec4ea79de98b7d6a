package http_gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.storefront.dev/core/auth"
	"go.storefront.dev/core/cart"
	pb "go.storefront.dev/core/protocol"
)

// cartKey resolves the CartKey of |r|, echoing a newly generated guest token
// in the X-Cart-Id response header.
func (g *Gateway) cartKey(w http.ResponseWriter, r *http.Request) (pb.CartKey, error) {
	var session, _ = auth.UserFromContext(r.Context())

	var key, generated, err = cart.ResolveKey(session.ID, r.Header.Get(cart.HeaderCartID))
	if err != nil {
		return pb.CartKey{}, err
	} else if generated != "" {
		w.Header().Set(cart.HeaderCartID, generated)
	}
	return key, nil
}

// serveCart resolves the CartKey of the request and applies |fn|, writing
// the resulting cart.
func (g *Gateway) serveCart(w http.ResponseWriter, r *http.Request, fn func(pb.CartKey) (pb.CartView, error)) {
	if key, err := g.cartKey(w, r); err != nil {
		g.writeError(w, r, err)
	} else if view, err := fn(key); err != nil {
		g.writeError(w, r, err)
	} else {
		writeJSON(w, http.StatusOK, map[string]interface{}{"cart": view})
	}
}

func (g *Gateway) serveGetCart(w http.ResponseWriter, r *http.Request) {
	g.serveCart(w, r, func(key pb.CartKey) (pb.CartView, error) {
		return g.carts.Get(r.Context(), key)
	})
}

func (g *Gateway) serveAddToCart(w http.ResponseWriter, r *http.Request) {
	var req pb.AddToCartRequest
	if err := g.decodeJSON(w, r, &req); err != nil {
		g.writeError(w, r, err)
		return
	}
	g.serveCart(w, r, func(key pb.CartKey) (pb.CartView, error) {
		return g.carts.Add(r.Context(), key, req)
	})
}

func (g *Gateway) serveUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req pb.UpdateQuantityRequest
	if err := g.decodeJSON(w, r, &req); err != nil {
		g.writeError(w, r, err)
		return
	}
	g.serveCart(w, r, func(key pb.CartKey) (pb.CartView, error) {
		return g.carts.UpdateQuantity(r.Context(), key, chi.URLParam(r, "itemId"), req)
	})
}

func (g *Gateway) serveRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	g.serveCart(w, r, func(key pb.CartKey) (pb.CartView, error) {
		return g.carts.Remove(r.Context(), key, chi.URLParam(r, "itemId"))
	})
}

func (g *Gateway) serveClearCart(w http.ResponseWriter, r *http.Request) {
	g.serveCart(w, r, func(key pb.CartKey) (pb.CartView, error) {
		return g.carts.Clear(r.Context(), key)
	})
}
