package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	pb "go.storefront.dev/core/protocol"
	"gopkg.in/yaml.v2"
)

const seedFixture = `
- name: Desk Lamp
  description: A warm lamp for late nights
  price: 29.99
  category: Lighting
  imageUrl: https://img.example.com/lamp.png
  stock: 1200
- name: Oak Chair
  price: 120
  category: furniture
  brand: Woodworks
  imageUrl: https://img.example.com/chair.png
`

func TestCatalogImportAndList(t *testing.T) {
	var dir = t.TempDir()
	Config.Log.Level = "warn"
	Config.Database.URL = "sqlite://" + filepath.Join(dir, "shop.db")

	var seed = filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(seedFixture), 0644))

	var out bytes.Buffer
	stdout = &out
	defer func() { stdout = os.Stdout }()

	// A dry run validates only.
	require.NoError(t, (&cmdCatalogImport{File: seed, DryRun: true}).Execute(nil))
	require.Equal(t, "2 items are valid\n", out.String())
	out.Reset()

	require.NoError(t, (&cmdCatalogImport{File: seed}).Execute(nil))
	require.Contains(t, out.String(), "Desk Lamp")
	require.Contains(t, out.String(), "1,200")
	require.Contains(t, out.String(), "Page 1: 2 of 2 items")
	out.Reset()

	// Table listing, searched.
	var list = cmdCatalogList{Query: "lamp", Sort: "relevance", Page: 1, Limit: 50, Format: "table"}
	require.NoError(t, list.Execute(nil))
	require.Contains(t, out.String(), "Desk Lamp")
	require.NotContains(t, out.String(), "Oak Chair")
	require.Contains(t, out.String(), "29.99")
	out.Reset()

	// JSON listing, one item per line.
	list = cmdCatalogList{Sort: "price_asc", Page: 1, Limit: 50, Format: "json"}
	require.NoError(t, list.Execute(nil))

	var lines = strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	var item pb.Item
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &item))
	require.Equal(t, "Oak Chair", item.Name)
	require.Equal(t, "woodworks", strings.ToLower(item.Brand))
	out.Reset()

	// YAML listing round-trips through import.
	list.Format = "yaml"
	require.NoError(t, list.Execute(nil))

	var reqs []pb.CreateItemRequest
	require.NoError(t, yaml.UnmarshalStrict(out.Bytes(), &reqs))
	require.Len(t, reqs, 2)
	require.Equal(t, "Desk Lamp", *reqs[0].Name)
	require.Equal(t, "lighting", *reqs[0].Category)
	require.Nil(t, reqs[1].Description)
	out.Reset()

	// Invalid list requests are errors.
	list = cmdCatalogList{Sort: "newest", Page: 0, Limit: 50, Format: "table"}
	require.Error(t, list.Execute(nil))
}

func TestCatalogImportValidation(t *testing.T) {
	var dir = t.TempDir()
	Config.Log.Level = "warn"

	var seed = filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte("- name: X\n  price: -1\n"), 0644))

	var err = (&cmdCatalogImport{File: seed, DryRun: true}).Execute(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "items[0]")

	err = (&cmdCatalogImport{File: filepath.Join(dir, "missing.yaml")}).Execute(nil)
	require.Error(t, err)
}
