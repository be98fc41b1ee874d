// Package chainbinom implements a chain binomial simulator for compartmental
// population models.
//
// At every discrete step each transition draws a binomial number of events from
// the population of its source compartment, using a per-step probability derived
// from a hazard rate. The counts are applied to the state through a fixed
// stoichiometry matrix:
//
//   - [UpdateState]: applies transition counts to a state
//   - [Propagate]: builds a one-step transition function around a [HazardFunc]
//   - [Simulate]: drives the step function over a time range
//   - [Simulator]: Simulate plus metrics, observers and logging
//   - [Ensemble]: independent seeded runs in parallel
//
// States are S×N matrices (compartments × independent units), stoichiometry is
// R×S (transitions × compartments) and hazard rates are R×N.
//
// # Example
//
//	src := chainbinom.NewSource(42)
//	traj, err := chainbinom.Simulate(ctx, hazard, x0, 0, 100, 1, stoich, src)
//
// # Thread Safety
//
// A step function and its random source belong to one run. For parallel runs use
// [Ensemble], which gives every run its own source.
package chainbinom
