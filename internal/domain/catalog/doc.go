// Package catalog contains the Catalog bounded context: the categories, owning
// accounts and imported products of the marketplace.
package catalog
