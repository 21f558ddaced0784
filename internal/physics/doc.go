// Package physics provides the respiratory mechanics models.
//
//   - [SingleCompartment]: P = E·V + R·dV/dt + PEEP, evaluated sample by sample
//   - [TwoLung]: right and left [Compartment] in parallel under one driving
//     pressure, a [dynamo.System] integrated by explicit Euler
//   - [Algebraic]: closed-form two-lung model where each lung carries a
//     retained share of the drive volume and the pressures are averaged
//
// Each compartment carries its own [Fistula]. [ConductanceLeak] and
// [FlowFractionLeak] are [FlowLeak]s and only apply to [TwoLung];
// [VolumeFractionLeak] is a [VolumeLeak] and only applies to [Algebraic].
// [NoLeak] is valid in both.
//
// Compartments and the single-compartment model implement the
// GetParams/SetParam pair so interactive front ends can tune them by name.
package physics
