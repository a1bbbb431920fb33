// Package analysis post-processes structural responses.
//
//   - [PowerSpectrum], [DominantFrequency]: spectral content of a DOF history,
//     used to cross-check modal frequencies against the time response
//   - [GeneratePhasePortrait]: displacement-velocity trajectory of one DOF
//   - [FrequencySweep]: steady-state amplitude under harmonic forcing over a
//     range of frequencies
//
// A free vibration started from a mode shape oscillates at that mode's
// frequency:
//
//	x, _, _ := res.History(dof)
//	w, _ := analysis.DominantFrequency(x, res.Dt)
package analysis
