// Package extractors turns stored files into plain text for ingestion.
//
// Each sub-package handles one family of extensions. The Registry in this
// package dispatches on the lower-cased file extension and implements
// driven.TextExtractor.
package extractors
