// Package normalize turns raw exchange-rate feed values into canonical numbers.
//
// # Raw values
//
// Feeds mix JSON numbers, numeric strings in either European ("16.969,78")
// or American ("16,969.78") notation, symbol-prefixed amounts ("₫ 24.000"),
// nulls and empty strings. Value models that input as Absent, Number or Text.
//
// # Parsing
//
// ParseNumber never fails loudly: anything that is not a finite number is
// reported as absent. Separators are resolved without a locale flag:
//
//   - both '.' and ',' present: the later one is the decimal separator
//   - a single separator kind: decimal when at most two digits follow it,
//     otherwise thousands grouping
//
// Known limitation: a lone separator followed by exactly three digits is read
// as grouping, so "1,234" is 1234 and never 1.234. Feeds quoting more than two
// fractional digits with a single separator are misread.
//
// # Formatting
//
// FormatNumber renders a single display convention: two decimals,
// comma as the decimal mark, no grouping.
package normalize
