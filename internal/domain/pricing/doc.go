// Package pricing turns a supplier cost and a set of percentage commitments into
// a single customer-facing price.
//
// The seller's ask (base cost plus markup) anchors every commission: affiliate,
// recruiter and platform amounts are percentages of the ask, never of the final
// price. The final price is then grossed up so that, after the payment processor
// deducts its percentage and fixed fee, the remainder covers every stakeholder.
//
//	finalPrice = (subtotal + fixedFee) / (1 - percentageRate)
//
// All intermediate math runs at full decimal precision. Amounts are rounded half-up
// to cents only when the breakdown is assembled.
package pricing
