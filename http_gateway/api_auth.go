package http_gateway

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"go.storefront.dev/core/auth"
	"go.storefront.dev/core/cart"
	pb "go.storefront.dev/core/protocol"
)

func (g *Gateway) serveSignup(w http.ResponseWriter, r *http.Request) {
	var req pb.SignupRequest
	if err := g.decodeJSON(w, r, &req); err != nil {
		g.writeError(w, r, err)
	} else if user, err := g.auth.Signup(r.Context(), req); err != nil {
		g.writeError(w, r, err)
	} else {
		writeJSON(w, http.StatusCreated, map[string]interface{}{"user": user})
	}
}

func (g *Gateway) serveLogin(w http.ResponseWriter, r *http.Request) {
	var req pb.LoginRequest
	if err := g.decodeJSON(w, r, &req); err != nil {
		g.writeError(w, r, err)
		return
	}
	var user, token, err = g.auth.Login(r.Context(), req)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	g.cookies.SetSession(w, token)
	g.mergeGuestCart(r, user.ID)

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// mergeGuestCart folds the guest cart presented by a login request (if any)
// into the cart of the now logged-in user. Failures are logged, and don't
// fail the login.
func (g *Gateway) mergeGuestCart(r *http.Request, userID pb.ObjectID) {
	var header = r.Header.Get(cart.HeaderCartID)
	if header == "" {
		return
	}
	var guest, _, err = cart.ResolveKey("", header)
	if err != nil {
		log.WithField("err", err).Debug("ignoring invalid guest cart on login")
		return
	}
	if err = g.carts.Merge(r.Context(), guest, pb.CartKey{UserID: userID}); err != nil {
		log.WithFields(log.Fields{
			"err":   err,
			"guest": guest.String(),
			"user":  userID,
		}).Warn("failed to merge guest cart on login")
	}
}

func (g *Gateway) serveMe(w http.ResponseWriter, r *http.Request) {
	var session, _ = auth.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": session})
}

func (g *Gateway) serveLogout(w http.ResponseWriter, r *http.Request) {
	g.cookies.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}
