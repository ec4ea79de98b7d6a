package mainboilerplate

import (
	petname "github.com/dustinkirkland/golang-petname"
	"go.storefront.dev/core/server"
)

// ServiceConfig represents identification and addressing configuration of the process.
type ServiceConfig struct {
	ID       string `long:"id" env:"INSTANCE_ID" description:"Unique ID of this process. Auto-generated if not set"`
	Host     string `long:"host" env:"HOST" default:"0.0.0.0" description:"Network interface to bind"`
	Port     uint16 `long:"port" env:"PORT" default:"8080" description:"Service port for HTTP requests. A random port is used if zero"`
	MaxConns int    `long:"max-conns" env:"MAX_CONNS" default:"0" description:"Maximum number of concurrently served connections. Unlimited if zero"`
}

// InstanceID returns the configured ID, generating and retaining a
// random one if not set.
func (cfg *ServiceConfig) InstanceID() string {
	if cfg.ID == "" {
		cfg.ID = petname.Generate(2, "-")
	}
	return cfg.ID
}

// MustServer binds and returns a server.Server of the ServiceConfig.
func (cfg *ServiceConfig) MustServer() *server.Server {
	var srv, err = server.New(cfg.Host, cfg.Port, cfg.MaxConns)
	Must(err, "building Server instance")
	return srv
}
