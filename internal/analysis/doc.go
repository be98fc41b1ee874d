// Package analysis summarises chain binomial trajectories across replicas.
package analysis
