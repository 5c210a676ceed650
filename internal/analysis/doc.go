// Package analysis turns recorded trajectories into diagnostics.
//
//   - [NewSpectrum]: FFT amplitude spectrum of a sampled coordinate
//   - [CyclotronFrequency]: gyration frequency for a given field strength
//   - [NewProjection]: 2D projection of a trajectory with ASCII rendering
//   - [MidplaneCrossings]: points where a particle crosses z = 0
//
// # Gyration
//
// The radial coordinate of an electron gyrating off axis oscillates at the
// local cyclotron frequency:
//
//	r := analysis.Series(history, 0, analysis.CoordRadius)
//	f := analysis.NewSpectrum(r, dt).Dominant()
package analysis
