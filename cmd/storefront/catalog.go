package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.storefront.dev/core/catalog"
	mbp "go.storefront.dev/core/mainboilerplate"
	pb "go.storefront.dev/core/protocol"
	"gopkg.in/yaml.v2"
)

// Output of catalog commands.
var stdout io.Writer = os.Stdout

type cmdCatalogList struct {
	Query    string   `long:"query" short:"q" description:"Text search query"`
	Category []string `long:"category" short:"c" description:"Categories to include, eg -c lighting -c furniture"`
	Sort     string   `long:"sort" choice:"relevance" choice:"price_asc" choice:"price_desc" choice:"newest" choice:"oldest" default:"newest" description:"Result ordering"`
	Page     int      `long:"page" default:"1" description:"Page of results to list"`
	Limit    int      `long:"limit" default:"50" description:"Number of results per page"`
	Format   string   `long:"format" short:"o" choice:"table" choice:"json" choice:"yaml" default:"table" description:"Output format"`
}

func (cmd *cmdCatalogList) Execute([]string) error {
	mbp.InitLog(Config.Log, log.Fields{"cmd": "catalog list"})

	var ctx = context.Background()
	var db = Config.Database.MustOpen(ctx)
	defer db.Close()

	var req = pb.ListItemsRequest{
		Category: cmd.Category,
		Sort:     pb.SortOrder(cmd.Sort),
		Page:     &cmd.Page,
		Limit:    &cmd.Limit,
	}
	if cmd.Query != "" {
		req.Q = &cmd.Query
	}

	var resp, err = catalog.NewService(db, nil).List(ctx, req)
	if err != nil {
		return err
	}

	switch cmd.Format {
	case "table":
		return writeItemsTable(stdout, resp)
	case "json":
		var enc = json.NewEncoder(stdout)
		for _, item := range resp.Items {
			if err = enc.Encode(item); err != nil {
				return err
			}
		}
	case "yaml":
		var reqs = make([]pb.CreateItemRequest, len(resp.Items))
		for i := range resp.Items {
			reqs[i] = createRequestOf(resp.Items[i])
		}
		var b, err = yaml.Marshal(reqs)
		if err != nil {
			return err
		}
		_, err = stdout.Write(b)
		return err
	}
	return nil
}

type cmdCatalogImport struct {
	File   string `long:"file" short:"f" required:"true" description:"Path of a YAML file of items to import"`
	DryRun bool   `long:"dry-run" description:"Validate items without creating them"`
}

func (cmd *cmdCatalogImport) Execute([]string) error {
	mbp.InitLog(Config.Log, log.Fields{"cmd": "catalog import", "file": cmd.File})

	var reqs, err = catalog.LoadSeed(afero.NewOsFs(), cmd.File)
	if err != nil {
		return err
	}

	if cmd.DryRun {
		for i := range reqs {
			reqs[i].Normalize()
			if err = reqs[i].Validate(); err != nil {
				return pb.ExtendContext(err, "items[%d]", i)
			}
		}
		_, err = fmt.Fprintf(stdout, "%s items are valid\n", humanize.Comma(int64(len(reqs))))
		return err
	}

	var ctx = context.Background()
	var db = Config.Database.MustOpen(ctx)
	defer db.Close()

	items, err := catalog.NewService(db, nil).Import(ctx, reqs)
	if err != nil {
		return err
	}
	return writeItemsTable(stdout, pb.ListItemsResponse{Items: items, Total: len(items), Page: 1, PageSize: len(items)})
}

func writeItemsTable(w io.Writer, resp pb.ListItemsResponse) error {
	var table = tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Category", "Price", "Stock", "Updated")

	for _, item := range resp.Items {
		if err := table.Append([]string{
			string(item.ID),
			item.Name,
			item.Category,
			strconv.FormatFloat(item.Price, 'f', 2, 64),
			humanize.Comma(int64(item.Stock)),
			humanize.Time(item.UpdatedAt),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	var _, err = fmt.Fprintf(w, "Page %d: %d of %s items\n",
		resp.Page, len(resp.Items), humanize.Comma(int64(resp.Total)))
	return err
}

// createRequestOf returns a CreateItemRequest which recreates |item|.
func createRequestOf(item pb.Item) pb.CreateItemRequest {
	var req = pb.CreateItemRequest{ItemFields: pb.ItemFields{
		Name:     &item.Name,
		Price:    &item.Price,
		Category: &item.Category,
		ImageURL: &item.ImageURL,
		Stock:    &item.Stock,
		IsActive: &item.IsActive,
	}}
	if item.Description != "" {
		req.Description = &item.Description
	}
	if item.Brand != "" {
		req.Brand = &item.Brand
	}
	return req
}
