// Package metrics defines the Prometheus collectors of the storefront API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Keys for storefront metrics.
const (
	Fail = "fail"
	Ok   = "ok"
)

// Collectors for the HTTP gateway.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_http_requests_total",
		Help: "Cumulative number of HTTP requests, by method, route pattern, and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "Duration of HTTP requests, by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Collectors for auth.Service.
var (
	SignupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_signups_total",
		Help: "Cumulative number of accounts created.",
	})
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_logins_total",
		Help: "Cumulative number of login attempts, by outcome.",
	}, []string{"outcome"})
)

// Collectors for cart.Service.
var (
	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Cumulative number of cart mutations, by operation.",
	}, []string{"op"})
)

// Collectors for catalog.ItemCache.
var (
	ItemCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_item_cache_hits_total",
		Help: "Cumulative number of item lookups served from cache.",
	})
	ItemCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_item_cache_misses_total",
		Help: "Cumulative number of item lookups which missed the cache.",
	})
)

// Cart mutation operations.
const (
	CartAdd    = "add"
	CartUpdate = "update"
	CartRemove = "remove"
	CartClear  = "clear"
	CartMerge  = "merge"
)
