// Copyright ©2025 The ontolabel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package owl implements decoding the RDF/XML encoding of an OBO
// ontology and extraction of its term hierarchy. It is not a
// complete RDF/XML parser implementation.
package owl
