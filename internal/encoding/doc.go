// Package encoding implements the Gorilla XOR encoding for float64 columns of plot
// frames.
//
// Each value is XORed with its predecessor. Curves sampled on an even grid and
// slowly varying model values produce XORs with long runs of leading and trailing
// zeros, so only the meaningful bits in between are stored:
//   - First value: 64 bits
//   - Unchanged value: 1 bit
//   - Same block as the previous XOR: 2 bits + meaningful bits
//   - New block: 2 + 5 + 6 bits + meaningful bits
//
// See https://www.vldb.org/pvldb/vol8/p1816-teller.pdf for the algorithm.
package encoding
