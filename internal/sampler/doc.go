// Package sampler compiles recognized equations and turns them into plottable
// point sequences.
//
// Expressions use the math.js-style notation the recognition back ends emit:
// infix arithmetic, ^ for powers, and functions such as sin, sqrt and log.
// Parsing and evaluation are delegated to github.com/expr-lang/expr; this
// package only adapts the notation, binds variables and filters results.
//
// # Sampling
//
// Sample partitions a closed range into a fixed number of equal steps and
// evaluates the expression at every step boundary, so a 100-step sample
// always has at most 101 points regardless of the range width. Points where
// the result is not a finite real number (division by zero, domain errors,
// non-numeric results) are dropped without failing the sample; an empty
// result is valid. Only compile errors abort, with ErrInvalidExpression.
//
// # Determinism
//
// Evaluation has no hidden state: the same expression, scope and range always
// yield the same points. The caller's scope map is never modified.
package sampler
