// Package protocol defines the storefront datamodel, the request types of its
// HTTP API, and their validation behaviors. These are shared by the store,
// the catalog and cart services, and the HTTP gateway.
//
// A central goal of this package is to be exacting in defining the allowed
// "shapes" of requests (through implementations of the Validator interface),
// so that services may assume well-formed inputs without additional ad-hoc
// checks. Requests are first Normalized (trimmed, lower-cased, defaulted)
// and then Validated. Validate reports every violation it finds as a
// ValidationErrors, each carrying the dotted path of the offending field.
//
// By convention, this package is imported as `pb`:
//
//	import pb "go.storefront.dev/core/protocol"
package protocol
