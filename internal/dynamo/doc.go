// Package dynamo provides the ODE primitives used by the population model.
//
// The package defines the fundamental interfaces and types for numerical
// integration of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator interface
//   - [AdaptiveIntegrator]: error-controlled integrator interface
//   - [Simulator]: integrates a system and samples it on an output grid
//
// # Example
//
//	dyn := population.NewModel(population.DefaultParams())
//	integ := integrators.NewRK45()
//	sim := dynamo.New(dyn, integ)
//	result, _ := sim.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. The pipeline runs every
// simulation sequentially.
package dynamo
