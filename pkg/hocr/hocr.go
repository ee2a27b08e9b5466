// Package hocr implements parsing, querying, and generation of hOCR data,
// which is an HTML-based standard format for representing OCR results.
//
// This package provides:
//
// - A typed element tree representing an hOCR document
// - Functions for parsing hOCR HTML into that tree
// - Query helpers for finding lines, headers, and words by kind
// - Functions for generating valid hOCR HTML from a tree
// - Utilities for working with title properties and bounding boxes
//
// The hOCR hierarchy is Document → Pages → Areas → Paragraphs → Lines → Words.
// Rather than forcing every document into that exact nesting, each element
// carries a Kind derived from its class attribute, so nested or skipped
// levels are handled uniformly.
//
// Key Types:
//
// - Document: Top-level structure with head metadata and the element tree
// - Element: One node of the tree (element or text)
// - Kind: The hOCR class of an element ('ocr_page', 'ocr_line', 'ocrx_word', ...)
// - BoundingBox: Integer pixel rectangle parsed from a 'bbox' title property
//
// Main Functions:
//
// - Parse: Parses hOCR data from HTML into the element tree
// - LineText: Derives the text of a line element from its words
// - GenerateHOCRDocument: Generates hOCR HTML from a Document
package hocr
