// Package newick checks phylogenetic tree descriptions written in the
// Newick format before they are persisted.
//
// Validation is a single pass over the input bytes with constant extra
// space. It never panics and holds no state, so it is safe to call from
// any number of goroutines.
//
// # Accepted Grammar
//
//   - Nested parentheses, commas between siblings, one terminating ';'
//     optionally followed by whitespace.
//   - Unquoted labels made of any bytes except structural characters,
//     blanks and control characters.
//   - Quoted labels in single quotes, where a doubled quote stands for a
//     literal one.
//   - Branch lengths after ':' written as decimal floating point numbers.
//   - Comments in square brackets, skipped wherever they appear outside
//     a quoted label.
//
// A single taxon ("A;") and an empty tree (";") are accepted. The empty
// string is not.
package newick
