// Package models builds chain binomial hazard functions from declarative
// compartment and transition lists.
//
// Every transition moves individuals from one compartment to another (or out of
// the population when To is empty) at a constant per-capita rate. A transition
// with Pressure compartments is frequency dependent: its rate is scaled by the
// share of the unit's population currently in those compartments, which is the
// usual form of an infection term.
package models
