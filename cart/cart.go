// Package cart implements storefront shopping carts. A cart belongs either to
// a logged-in user or to a guest visitor, who is identified by a UUID token
// which the client presents in the X-Cart-Id header.
package cart

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.storefront.dev/core/metrics"
	pb "go.storefront.dev/core/protocol"
	"go.storefront.dev/core/store"
)

// HeaderCartID is the header carrying a guest cart token.
const HeaderCartID = "X-Cart-Id"

// ResolveKey returns the CartKey of a request. A logged-in |userID| takes
// precedence, and a guest |header| token is then ignored. Otherwise a
// non-empty |header| must be a UUID. Absent both, a new guest token is
// generated and returned as |generated|, which the caller echoes to the
// client in the X-Cart-Id response header.
func ResolveKey(userID pb.ObjectID, header string) (key pb.CartKey, generated string, err error) {
	header = strings.TrimSpace(header)

	if userID != "" {
		return pb.CartKey{UserID: userID}, "", nil
	} else if header != "" {
		if err = pb.ValidateCartID(header); err != nil {
			return pb.CartKey{}, "", pb.ErrInvalidCartID
		}
		return pb.CartKey{CartID: strings.ToLower(header)}, "", nil
	}
	generated = pb.NewCartID()
	return pb.CartKey{CartID: generated}, generated, nil
}

// Carts is the cart storage required by Service.
type Carts interface {
	CartByKey(ctx context.Context, key pb.CartKey) (pb.Cart, error)
	EnsureCart(ctx context.Context, key pb.CartKey) (pb.Cart, error)
	SaveCartLines(ctx context.Context, cart *pb.Cart) error
	DeleteCart(ctx context.Context, id pb.ObjectID) error
}

// Items resolves the Items of cart lines. It's implemented by catalog.Service.
type Items interface {
	Get(ctx context.Context, id string) (pb.Item, error)
	Lookup(ctx context.Context, ids []pb.ObjectID) (map[pb.ObjectID]pb.Item, error)
}

// Service implements cart operations.
type Service struct {
	carts Carts
	items Items
}

// NewService returns a Service of the Carts and Items.
func NewService(carts Carts, items Items) *Service {
	return &Service{carts: carts, items: items}
}

// Get the cart of |key|, creating an empty one if it doesn't exist.
func (s *Service) Get(ctx context.Context, key pb.CartKey) (pb.CartView, error) {
	var cart, err = s.ensure(ctx, key)
	if err != nil {
		return pb.CartView{}, err
	}
	return s.render(ctx, cart)
}

// Add the AddToCartRequest's quantity of its Item to the cart of |key|.
// The Item must exist and be active.
func (s *Service) Add(ctx context.Context, key pb.CartKey, req pb.AddToCartRequest) (pb.CartView, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return pb.CartView{}, err
	}

	var item, err = s.items.Get(ctx, *req.ItemID)
	if err != nil {
		return pb.CartView{}, err
	} else if !item.IsActive {
		return pb.CartView{}, pb.ErrItemNotFound
	}

	return s.mutate(ctx, key, metrics.CartAdd, func(cart *pb.Cart) error {
		cart.AddQuantity(item.ID, *req.Quantity)
		return nil
	})
}

// UpdateQuantity sets the quantity of the |itemID| line of the cart of |key|.
func (s *Service) UpdateQuantity(ctx context.Context, key pb.CartKey, itemID string, req pb.UpdateQuantityRequest) (pb.CartView, error) {
	var oid, err = pb.ParseObjectID(itemID)
	if err != nil {
		return pb.CartView{}, pb.ErrInvalidItemID
	} else if err = req.Validate(); err != nil {
		return pb.CartView{}, err
	}

	return s.mutate(ctx, key, metrics.CartUpdate, func(cart *pb.Cart) error {
		if !cart.SetQuantity(oid, *req.Quantity) {
			return pb.ErrNotInCart
		}
		return nil
	})
}

// Remove the |itemID| line of the cart of |key|. Removing an absent line
// is not an error.
func (s *Service) Remove(ctx context.Context, key pb.CartKey, itemID string) (pb.CartView, error) {
	var oid, err = pb.ParseObjectID(itemID)
	if err != nil {
		return pb.CartView{}, pb.ErrInvalidItemID
	}
	return s.mutate(ctx, key, metrics.CartRemove, func(cart *pb.Cart) error {
		cart.RemoveLine(oid)
		return nil
	})
}

// Clear all lines of the cart of |key|.
func (s *Service) Clear(ctx context.Context, key pb.CartKey) (pb.CartView, error) {
	return s.mutate(ctx, key, metrics.CartClear, func(cart *pb.Cart) error {
		cart.Lines = cart.Lines[:0]
		return nil
	})
}

// Merge the guest cart of |guest| into the user cart of |user|, summing the
// quantities of common lines. The guest cart is then deleted. It's a no-op
// if the guest cart doesn't exist.
func (s *Service) Merge(ctx context.Context, guest, user pb.CartKey) error {
	if !guest.IsGuest() || user.IsGuest() {
		return pb.NewValidationError("merge requires a guest and a user cart (got %s and %s)", guest, user)
	}

	var from, err = s.carts.CartByKey(ctx, guest)
	if err == store.ErrNotFound {
		return nil
	} else if err != nil {
		return err
	}

	if len(from.Lines) != 0 {
		if _, err = s.mutate(ctx, user, metrics.CartMerge, func(cart *pb.Cart) error {
			for _, line := range from.Lines {
				cart.AddQuantity(line.ItemID, line.Qty)
			}
			return nil
		}); err != nil {
			return err
		}
	}
	if err = s.carts.DeleteCart(ctx, from.ID); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"guest": guest.String(),
		"user":  user.String(),
		"lines": len(from.Lines),
	}).Info("merged guest cart")
	return nil
}

func (s *Service) ensure(ctx context.Context, key pb.CartKey) (pb.Cart, error) {
	if err := key.Validate(); err != nil {
		return pb.Cart{}, err
	}
	return s.carts.EnsureCart(ctx, key)
}

// mutate applies |fn| to the cart of |key| and stores the result. A cart
// deleted before it's stored (eg, merged by a concurrent login) is ensured
// and mutated once more.
func (s *Service) mutate(ctx context.Context, key pb.CartKey, op string, fn func(*pb.Cart) error) (pb.CartView, error) {
	for attempt := 0; ; attempt++ {
		var cart, err = s.ensure(ctx, key)
		if err != nil {
			return pb.CartView{}, err
		} else if err = fn(&cart); err != nil {
			return pb.CartView{}, err
		}

		if err = s.carts.SaveCartLines(ctx, &cart); err == store.ErrNotFound && attempt == 0 {
			log.WithField("key", key.String()).Debug("cart deleted while mutating it; retrying")
			continue
		} else if err == store.ErrNotFound {
			return pb.CartView{}, pb.ErrCartNotFound
		} else if err != nil {
			return pb.CartView{}, err
		}
		metrics.CartMutationsTotal.WithLabelValues(op).Inc()

		return s.render(ctx, cart)
	}
}

// render populates the lines of |cart| with their Items. Lines of Items
// which no longer exist are omitted.
func (s *Service) render(ctx context.Context, cart pb.Cart) (pb.CartView, error) {
	var ids = make([]pb.ObjectID, len(cart.Lines))
	for i, l := range cart.Lines {
		ids[i] = l.ItemID
	}
	var items, err = s.items.Lookup(ctx, ids)
	if err != nil {
		return pb.CartView{}, err
	}

	var view = pb.CartView{
		ID:        cart.ID,
		UserID:    cart.UserID,
		CartID:    cart.CartID,
		Items:     make([]pb.CartViewLine, 0, len(cart.Lines)),
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
	for _, l := range cart.Lines {
		if item, ok := items[l.ItemID]; ok {
			view.Items = append(view.Items, pb.CartViewLine{Item: item.Summary(), Qty: l.Qty})
		}
	}
	return view, nil
}
