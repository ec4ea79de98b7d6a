package cart

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.storefront.dev/core/catalog"
	"go.storefront.dev/core/metrics"
	pb "go.storefront.dev/core/protocol"
	"go.storefront.dev/core/store"
)

func TestResolveKey(t *testing.T) {
	var user pb.ObjectID = "507f1f77bcf86cd799439011"
	var token = pb.NewCartID()

	// A logged-in user wins over a presented guest token.
	key, gen, err := ResolveKey(user, token)
	require.NoError(t, err)
	require.Equal(t, pb.CartKey{UserID: user}, key)
	require.Equal(t, "", gen)

	// A guest token is used as-is (trimmed and lower-cased).
	key, gen, err = ResolveKey("", "  "+strings.ToUpper(token)+" ")
	require.NoError(t, err)
	require.Equal(t, pb.CartKey{CartID: token}, key)
	require.Equal(t, "", gen)

	// Absent both, a token is generated.
	key, gen, err = ResolveKey("", "  ")
	require.NoError(t, err)
	require.NoError(t, pb.ValidateCartID(gen))
	require.Equal(t, pb.CartKey{CartID: gen}, key)

	_, _, err = ResolveKey("", "not-a-uuid")
	require.Equal(t, pb.ErrInvalidCartID, err)
}

func TestCartOperations(t *testing.T) {
	var ctx = context.Background()
	var svc, items = newTestService(t)
	var lamp = createItem(t, items, "Desk Lamp", true)
	var desk = createItem(t, items, "Oak Desk", true)
	var hidden = createItem(t, items, "Hidden", false)
	var key = pb.CartKey{CartID: pb.NewCartID()}

	// Get creates an empty cart.
	view, err := svc.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, key.CartID, view.CartID)
	require.NotNil(t, view.Items)
	require.Empty(t, view.Items)

	var adds = testutil.ToFloat64(metrics.CartMutationsTotal.WithLabelValues(metrics.CartAdd))

	// Add defaults to a quantity of one, and sums quantities of a line.
	view, err = svc.Add(ctx, key, addReq(lamp.ID, nil))
	require.NoError(t, err)
	view, err = svc.Add(ctx, key, addReq(lamp.ID, intPtr(4)))
	require.NoError(t, err)
	view, err = svc.Add(ctx, key, addReq(desk.ID, intPtr(99)))
	require.NoError(t, err)
	require.Equal(t, adds+3, testutil.ToFloat64(metrics.CartMutationsTotal.WithLabelValues(metrics.CartAdd)))

	require.Len(t, view.Items, 2)
	require.Equal(t, "Desk Lamp", view.Items[0].Item.Name)
	require.Equal(t, 5, view.Items[0].Qty)
	require.Equal(t, 99, view.Items[1].Qty)

	// Line quantities are capped.
	view, err = svc.Add(ctx, key, addReq(desk.ID, intPtr(5)))
	require.NoError(t, err)
	require.Equal(t, pb.MaxLineQuantity, view.Items[1].Qty)

	// Inactive, missing, and malformed items can't be added.
	_, err = svc.Add(ctx, key, addReq(hidden.ID, nil))
	require.Equal(t, pb.ErrItemNotFound, err)
	_, err = svc.Add(ctx, key, addReq(pb.NewObjectID(), nil))
	require.Equal(t, pb.ErrItemNotFound, err)
	var bad = "xyz"
	_, err = svc.Add(ctx, key, pb.AddToCartRequest{ItemID: &bad})
	require.EqualError(t, err, "itemId: Invalid itemId (must be a 24 character hex id)")

	// UpdateQuantity sets the quantity of an existing line.
	view, err = svc.UpdateQuantity(ctx, key, string(lamp.ID), pb.UpdateQuantityRequest{Quantity: intPtr(2)})
	require.NoError(t, err)
	require.Equal(t, 2, view.Items[0].Qty)

	_, err = svc.UpdateQuantity(ctx, key, string(hidden.ID), pb.UpdateQuantityRequest{Quantity: intPtr(2)})
	require.Equal(t, pb.ErrNotInCart, err)
	_, err = svc.UpdateQuantity(ctx, key, "nope", pb.UpdateQuantityRequest{Quantity: intPtr(2)})
	require.Equal(t, pb.ErrInvalidItemID, err)
	_, err = svc.UpdateQuantity(ctx, key, string(lamp.ID), pb.UpdateQuantityRequest{Quantity: intPtr(0)})
	require.EqualError(t, err, "quantity: Quantity must be at least 1")

	// Remove drops a line, and is idempotent.
	view, err = svc.Remove(ctx, key, string(desk.ID))
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	view, err = svc.Remove(ctx, key, string(desk.ID))
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	_, err = svc.Remove(ctx, key, "nope")
	require.Equal(t, pb.ErrInvalidItemID, err)

	// Lines of deleted items are omitted from the rendered cart.
	_, err = svc.Add(ctx, key, addReq(desk.ID, nil))
	require.NoError(t, err)
	_, err = items.Delete(ctx, string(desk.ID))
	require.NoError(t, err)
	view, err = svc.Get(ctx, key)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.Equal(t, lamp.ID, view.Items[0].Item.ID)

	view, err = svc.Clear(ctx, key)
	require.NoError(t, err)
	require.Empty(t, view.Items)

	// Carts of malformed keys are rejected.
	_, err = svc.Get(ctx, pb.CartKey{})
	require.EqualError(t, err, "cart key missing")
}

func TestMerge(t *testing.T) {
	var ctx = context.Background()
	var svc, items = newTestService(t)
	var lamp = createItem(t, items, "Desk Lamp", true)
	var desk = createItem(t, items, "Oak Desk", true)

	var guest = pb.CartKey{CartID: pb.NewCartID()}
	var user = pb.CartKey{UserID: pb.NewObjectID()}

	// Merging a missing guest cart is a no-op.
	require.NoError(t, svc.Merge(ctx, guest, user))

	var _, err = svc.Add(ctx, guest, addReq(lamp.ID, intPtr(60)))
	require.NoError(t, err)
	_, err = svc.Add(ctx, guest, addReq(desk.ID, intPtr(1)))
	require.NoError(t, err)
	_, err = svc.Add(ctx, user, addReq(lamp.ID, intPtr(50)))
	require.NoError(t, err)

	require.NoError(t, svc.Merge(ctx, guest, user))

	view, err := svc.Get(ctx, user)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	require.Equal(t, pb.MaxLineQuantity, view.Items[0].Qty) // 60 + 50, capped.
	require.Equal(t, desk.ID, view.Items[1].Item.ID)
	require.Equal(t, 1, view.Items[1].Qty)

	// The guest cart is gone, and a new empty one is created on demand.
	guestView, err := svc.Get(ctx, guest)
	require.NoError(t, err)
	require.Empty(t, guestView.Items)

	require.Error(t, svc.Merge(ctx, user, guest))
}

func TestMutateDeletedCart(t *testing.T) {
	var ctx = context.Background()
	var db, err = store.Open(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	defer db.Close()

	var items = catalog.NewService(db, nil)
	var lamp = createItem(t, items, "Desk Lamp", true)
	var guest = pb.CartKey{CartID: pb.NewCartID()}

	// The guest cart is deleted after it's read, but before it's stored.
	var carts = &deletingCarts{Store: db, deletes: 1}
	view, err := NewService(carts, items).Add(ctx, guest, addReq(lamp.ID, intPtr(2)))
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.Equal(t, 2, view.Items[0].Qty)
	require.Equal(t, 0, carts.deletes)

	// A cart which is repeatedly deleted is not found.
	carts.deletes = 2
	_, err = NewService(carts, items).Add(ctx, guest, addReq(lamp.ID, nil))
	require.Equal(t, pb.ErrCartNotFound, err)
}

// deletingCarts deletes ensured carts, while |deletes| remain.
type deletingCarts struct {
	*store.Store
	deletes int
}

func (c *deletingCarts) EnsureCart(ctx context.Context, key pb.CartKey) (pb.Cart, error) {
	var cart, err = c.Store.EnsureCart(ctx, key)
	if err == nil && c.deletes != 0 {
		c.deletes--
		err = c.Store.DeleteCart(ctx, cart.ID)
	}
	return cart, err
}

func newTestService(t *testing.T) (*Service, *catalog.Service) {
	var db, err = store.Open(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	var items = catalog.NewService(db, catalog.NewItemCache(16, time.Minute))
	return NewService(db, items), items
}

func createItem(t *testing.T, items *catalog.Service, name string, active bool) pb.Item {
	var price, category, url = 10.0, "things", "https://img.example.com/x.png"
	var item, err = items.Create(context.Background(), pb.CreateItemRequest{ItemFields: pb.ItemFields{
		Name:     &name,
		Price:    &price,
		Category: &category,
		ImageURL: &url,
		IsActive: &active,
	}})
	require.NoError(t, err)
	return item
}

func addReq(id pb.ObjectID, qty *int) pb.AddToCartRequest {
	var s = string(id)
	return pb.AddToCartRequest{ItemID: &s, Quantity: qty}
}

func intPtr(n int) *int { return &n }
