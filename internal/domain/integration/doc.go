// Package integration contains the Integration bounded context.
// This context manages the external commerce platforms a seller imports products from.
//
// Key concepts:
//   - ProviderAdapter: Port interface for reading a platform's catalog (print-on-demand,
//     storefront, dropshipping)
//   - DetailFetcher: Optional capability for enriching a listed product
//   - ExternalProduct: Value object in the single internal shape every adapter produces
//   - ProviderRegistry: Lookup table from provider code to adapter
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
