// Package pattern handles branch naming conventions: extracting ticket
// identifiers from branch names via a configurable grammar, and generating
// branch names from ticket IDs and titles.
package pattern
