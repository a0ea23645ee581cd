// Package folio turns scraped brokerage holdings pages into one consolidated
// portfolio snapshot.
//
// The package owns the data-correctness core: normalizing broker-formatted
// text into exact decimals, mapping table rows into holdings through
// per-broker layouts, consolidating rows that share a symbol, reconciling the
// parsed totals against the totals the page itself reports, and merging the
// per-broker holding lists across brokers.
//
// Everything here is pure and synchronous: pages are fetched elsewhere and
// passed in as rendered HTML or as DOM-extracted row records, so the parsing
// pipeline is deterministic and testable with literal fixtures.
package folio
