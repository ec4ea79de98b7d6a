// Package catalog implements the storefront item catalog: creating, reading,
// updating, deleting, and searching Items.
package catalog

import (
	"context"
	"math"
	"strings"

	log "github.com/sirupsen/logrus"
	pb "go.storefront.dev/core/protocol"
	"go.storefront.dev/core/store"
)

// Items is the item storage required by Service.
type Items interface {
	CreateItem(ctx context.Context, item *pb.Item) error
	ItemByID(ctx context.Context, id pb.ObjectID) (pb.Item, error)
	ItemsByID(ctx context.Context, ids []pb.ObjectID) (map[pb.ObjectID]pb.Item, error)
	UpdateItem(ctx context.Context, id pb.ObjectID, fields pb.ItemFields) (pb.Item, error)
	DeleteItem(ctx context.Context, id pb.ObjectID) error
	ListItems(ctx context.Context, q store.ItemQuery) ([]pb.Item, int, error)
}

// Service implements catalog operations over Items.
type Service struct {
	items Items
	cache *ItemCache // Optional.
}

// NewService returns a Service of the Items, fronted by an optional ItemCache.
func NewService(items Items, cache *ItemCache) *Service {
	return &Service{items: items, cache: cache}
}

// Create an Item of the CreateItemRequest.
func (s *Service) Create(ctx context.Context, req pb.CreateItemRequest) (pb.Item, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return pb.Item{}, err
	}
	var item = req.Item()

	if err := s.items.CreateItem(ctx, &item); err != nil {
		return pb.Item{}, err
	}
	log.WithFields(log.Fields{"id": item.ID, "name": item.Name}).Info("created item")
	return item, nil
}

// Get the Item of |id|. Inactive Items are returned.
func (s *Service) Get(ctx context.Context, id string) (pb.Item, error) {
	var oid, err = parseItemID(id)
	if err != nil {
		return pb.Item{}, err
	}
	if s.cache != nil {
		if item, ok := s.cache.Get(oid); ok {
			return item, nil
		}
	}

	item, err := s.items.ItemByID(ctx, oid)
	if err == store.ErrNotFound {
		return pb.Item{}, pb.ErrItemNotFound
	} else if err != nil {
		return pb.Item{}, err
	}
	if s.cache != nil {
		s.cache.Put(item)
	}
	return item, nil
}

// Lookup returns the existing Items of |ids|, keyed on ID. Items which don't
// exist are omitted.
func (s *Service) Lookup(ctx context.Context, ids []pb.ObjectID) (map[pb.ObjectID]pb.Item, error) {
	var out = make(map[pb.ObjectID]pb.Item, len(ids))
	var missing []pb.ObjectID

	for _, id := range ids {
		if s.cache == nil {
			missing = append(missing, id)
		} else if item, ok := s.cache.Get(id); ok {
			out[id] = item
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	var fetched, err = s.items.ItemsByID(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, item := range fetched {
		out[id] = item
		if s.cache != nil {
			s.cache.Put(item)
		}
	}
	return out, nil
}

// Update the present fields of the UpdateItemRequest on the Item of |id|.
func (s *Service) Update(ctx context.Context, id string, req pb.UpdateItemRequest) (pb.Item, error) {
	var oid, err = parseItemID(id)
	if err != nil {
		return pb.Item{}, err
	}
	req.Normalize()
	if err = req.Validate(); err != nil {
		return pb.Item{}, err
	}

	item, err := s.items.UpdateItem(ctx, oid, req.ItemFields)
	if s.cache != nil {
		s.cache.Invalidate(oid)
	}
	if err == store.ErrNotFound {
		return pb.Item{}, pb.ErrItemNotFound
	} else if err != nil {
		return pb.Item{}, err
	}
	return item, nil
}

// Delete the Item of |id|, returning its ID.
func (s *Service) Delete(ctx context.Context, id string) (pb.ObjectID, error) {
	var oid, err = parseItemID(id)
	if err != nil {
		return "", err
	}

	err = s.items.DeleteItem(ctx, oid)
	if s.cache != nil {
		s.cache.Invalidate(oid)
	}
	if err == store.ErrNotFound {
		return "", pb.ErrItemNotFound
	} else if err != nil {
		return "", err
	}
	log.WithField("id", oid).Info("deleted item")
	return oid, nil
}

// List active Items matching the ListItemsRequest.
func (s *Service) List(ctx context.Context, req pb.ListItemsRequest) (pb.ListItemsResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return pb.ListItemsResponse{}, err
	}
	var page, limit = *req.Page, *req.Limit

	// Pages beyond the addressable range are empty.
	var offset = math.MaxInt
	if page-1 <= math.MaxInt/limit {
		offset = (page - 1) * limit
	}

	var items, total, err = s.items.ListItems(ctx, store.ItemQuery{
		Terms:      SearchTerms(req.Query()),
		Categories: req.Category,
		MinPrice:   req.MinPrice,
		MaxPrice:   req.MaxPrice,
		ActiveOnly: true,
		Sort:       req.Sort,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return pb.ListItemsResponse{}, err
	}
	return pb.ListItemsResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: limit,
	}, nil
}

// SearchTerms splits a search query into distinct, lower-cased terms.
func SearchTerms(q string) []string {
	var out []string
	var seen = make(map[string]struct{})

	for _, term := range strings.Fields(strings.ToLower(q)) {
		if _, ok := seen[term]; !ok {
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	return out
}

func parseItemID(id string) (pb.ObjectID, error) {
	var oid, err = pb.ParseObjectID(id)
	if err != nil {
		return "", pb.ErrInvalidItemID
	}
	return oid, nil
}
