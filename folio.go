// Package folio provides a prefetching page cache for remote, paginated
// books. Each page is downloaded as a single-page PDF, rendered to an image
// and kept on local disk, while a background worker prepares the pages around
// the one being read.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, pdfcpu/).
package folio
