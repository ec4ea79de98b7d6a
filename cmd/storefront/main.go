package main

import (
	"github.com/jessevdk/go-flags"
	mbp "go.storefront.dev/core/mainboilerplate"
)

const iniFilename = "storefront.ini"

// Config is the top-level configuration object of the storefront.
var Config = new(struct {
	App      mbp.AppConfig      `group:"App" namespace:"app" env-namespace:"APP"`
	Service  mbp.ServiceConfig  `group:"Service" namespace:"service"`
	Database mbp.DatabaseConfig `group:"Database" namespace:"database" env-namespace:"DATABASE"`
	Session  mbp.SessionConfig  `group:"Session" namespace:"session" env-namespace:"SESSION"`
	HTTP     mbp.HTTPConfig     `group:"HTTP" namespace:"http"`
	Cache    mbp.CacheConfig    `group:"Cache" namespace:"cache" env-namespace:"CACHE"`

	Log         mbp.LogConfig         `group:"Logging" namespace:"log" env-namespace:"LOG"`
	Diagnostics mbp.DiagnosticsConfig `group:"Debug" namespace:"debug" env-namespace:"DEBUG"`
})

func main() {
	var parser = flags.NewParser(Config, flags.Default)
	var reg = mbp.NewCommandRegistry()

	reg.AddCommand("", "serve", "Serve the storefront API", `
Serve the storefront REST API (and, if --http.web-dir is set, the web bundle)
with the provided configuration, until signaled to exit (via SIGTERM or SIGINT).
Upon receiving a signal, in-flight requests are drained before exiting.
`, &cmdServe{})

	reg.AddCommand("", "catalog", "Manage the item catalog", `
Manage the item catalog directly against the configured database.
`, &struct{}{})

	reg.AddCommand("catalog", "list", "List catalog items", `
List active catalog items, optionally searching and filtering them.

Results can be output in a variety of --format options:
table: Prints as a table.
json:  Prints items encoded as JSON, one per line.
yaml:  Prints items as YAML, compatible with "catalog import".
`, &cmdCatalogList{})

	reg.AddCommand("catalog", "import", "Import catalog items from a YAML file", `
Import items from a YAML file holding a list of items, each having the fields
of an item creation request:

- name: Desk Lamp
  description: A lamp for your desk
  price: 29.99
  category: lighting
  imageUrl: https://img.example.com/lamp.png
  stock: 12

All items are validated before any is created.
`, &cmdCatalogImport{})

	mbp.Must(reg.AddCommands("", parser.Command, true), "failed to register commands")

	mbp.AddPrintConfigCmd(parser, iniFilename)
	mbp.MustParseConfig(parser, iniFilename)
}
