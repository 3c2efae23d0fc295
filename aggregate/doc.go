// Package aggregate provides grouped count and sum accumulation on
// top of the open-addressing hash map, with partitioned parallel
// execution.
package aggregate
