package protocol

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateItemRequestValidation(t *testing.T) {
	var cases = []struct {
		body string
		err  string
	}{
		{body: `{"name":" Desk Lamp ","price":19.5,"category":" Lighting ","imageUrl":"https://img.example/lamp.png"}`},
		{body: `{}`, err: "name: Required; price: Required; category: Required; imageUrl: Required"},
		{body: `{"name":"x","price":0,"category":"c","imageUrl":"nope"}`,
			err: "name: Name must be at least 2 characters; price: Price must be greater than 0; " +
				"category: Category must be at least 2 characters; imageUrl: imageUrl must be a valid URL"},
		{body: `{"name":"Lamp","price":-1,"category":"home","imageUrl":"https://x.y/z","stock":-3}`,
			err: "price: Price must be greater than 0; stock: Stock must be at least 0"},
		{body: `{"name":"Lamp","price":1,"category":"home","imageUrl":"https://x.y/z","brand":"` + strings.Repeat("b", 61) + `"}`,
			err: "brand: Brand must be at most 60 characters"},
		{body: `{"name":"Lamp","price":1,"category":"home","imageUrl":"https://x.y/z","description":"` + strings.Repeat("d", 2001) + `"}`,
			err: "description: Description must be at most 2000 characters"},
		{body: `{"name":"Lamp","price":1,"category":"home","imageUrl":"/relative/path.png"}`,
			err: "imageUrl: imageUrl must be a valid URL"},
	}
	for _, tc := range cases {
		var req CreateItemRequest
		require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
		req.Normalize()

		if err := req.Validate(); tc.err != "" {
			require.EqualError(t, err, tc.err, tc.body)
		} else {
			require.NoError(t, err, tc.body)
		}
	}
}

func TestCreateItemRequestDefaults(t *testing.T) {
	var req CreateItemRequest
	require.NoError(t, json.Unmarshal([]byte(
		`{"name":" Desk Lamp ","price":19.5,"category":" LIGHTING ","imageUrl":" https://img.example/lamp.png ","brand":" Acme "}`), &req))
	req.Normalize()
	require.NoError(t, req.Validate())

	require.Equal(t, Item{
		Name:     "Desk Lamp",
		Price:    19.5,
		Category: "lighting",
		Brand:    "Acme",
		ImageURL: "https://img.example/lamp.png",
		Stock:    0,
		IsActive: true,
	}, req.Item())

	var stock, active = 7, false
	req.Stock, req.IsActive = &stock, &active
	var item = req.Item()
	require.Equal(t, 7, item.Stock)
	require.False(t, item.IsActive)
}

func TestUpdateItemRequestIsPartial(t *testing.T) {
	var req UpdateItemRequest
	require.NoError(t, json.Unmarshal([]byte(`{"price":25,"category":" Outdoor "}`), &req))
	req.Normalize()
	require.NoError(t, req.Validate())

	var item = Item{Name: "Tent", Price: 10, Category: "camping", Brand: "Acme", IsActive: true}
	req.Apply(&item)
	require.Equal(t, Item{Name: "Tent", Price: 25, Category: "outdoor", Brand: "Acme", IsActive: true}, item)

	// Present fields are still validated.
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x"}`), &req))
	require.EqualError(t, req.Validate(), "name: Name must be at least 2 characters")

	var nan = math.NaN()
	req = UpdateItemRequest{ItemFields{Price: &nan}}
	require.EqualError(t, req.Validate(), "price: Price must be a finite number")
}

func TestItemSummary(t *testing.T) {
	var item = Item{ID: "507f1f77bcf86cd799439011", Name: "Tent", Description: "Roomy", Price: 10}
	var s = item.Summary()
	require.Equal(t, item.ID, s.ID)
	require.Equal(t, "Tent", s.Name)

	var b, err = json.Marshal(s)
	require.NoError(t, err)
	require.NotContains(t, string(b), "Roomy")
	require.NotContains(t, string(b), "brand")
}
