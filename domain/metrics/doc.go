// Package metrics scores cause-of-death predictions at the individual and the
// population level.
//
// Cause-specific rates return a comma-ok pair: ok is false when the rate is
// undefined because its denominator is zero (for example the sensitivity of a
// cause never observed as true). Undefined values are never coerced to zero;
// aggregations exclude them and tables record them as NaN.
//
// Individual-level accuracy is measured with chance-corrected concordance
// (CCC), which assumes chance is uniform over the causes present in the
// evaluation sample. Population-level accuracy is CSMF accuracy, optionally
// corrected for chance with the asymptotic constant 1 - 1/e.
package metrics
