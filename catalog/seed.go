package catalog

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	log "github.com/sirupsen/logrus"
	pb "go.storefront.dev/core/protocol"
	"gopkg.in/yaml.v2"
)

// LoadSeed reads a YAML list of items from |path| of the filesystem. Each
// list element has the fields of a CreateItemRequest:
//
//	- name: Desk Lamp
//	  price: 29.99
//	  category: lighting
//	  imageUrl: https://img.example.com/lamp.png
//	  stock: 12
func LoadSeed(fs afero.Fs, path string) ([]pb.CreateItemRequest, error) {
	var b, err = afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var reqs []pb.CreateItemRequest
	if err = yaml.UnmarshalStrict(b, &reqs); err != nil {
		return nil, fmt.Errorf("decoding seed file %s: %w", path, err)
	}
	return reqs, nil
}

// Import creates an Item of each request. All requests are validated before
// any Item is created, and a validation error names the offending index.
func (s *Service) Import(ctx context.Context, reqs []pb.CreateItemRequest) ([]pb.Item, error) {
	for i := range reqs {
		reqs[i].Normalize()
		if err := reqs[i].Validate(); err != nil {
			return nil, pb.ExtendContext(err, "items[%d]", i)
		}
	}

	var out = make([]pb.Item, 0, len(reqs))
	for i := range reqs {
		var item, err = s.Create(ctx, reqs[i])
		if err != nil {
			return out, fmt.Errorf("creating item %d (%s): %w", i, *reqs[i].Name, err)
		}
		out = append(out, item)
	}
	log.WithField("count", len(out)).Info("imported items")
	return out, nil
}
