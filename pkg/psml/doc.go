// Package psml models PageSeeder Markup Language documents and converts them
// to and from their XML form without losing information.
//
// # Node model
//
// Every element defined by PSML has its own Go type (Section, Fragment,
// Property, XRef, Para, ...) implementing Element. Elements outside PSML
// decode to *Unknown, which keeps the raw tag, attributes and children, so a
// document produced by a newer server still round-trips. Text, comments,
// processing instructions and declarations are the remaining Node types.
//
// Attributes are an ordered list. An attribute present with an empty value
// and an absent attribute are different states:
//
//	v, ok := para.Attrs().Get("prefix") // ok reports presence
//
// # Codec
//
// Decode and Encode satisfy the round-trip law: for any well-formed input,
// Decode(Encode(Decode(in))) is Equal to Decode(in). Byte-identical output is
// not guaranteed; the XML declaration quote style and whitespace between
// prolog items may change. Malformed input fails with *ParseError carrying the
// line, column and byte offset. Encoding a decoded tree never fails;
// hand-built trees with invalid names or characters fail with *EncodeError
// naming the node path.
//
// # Validation
//
// The codec only checks well-formedness. Validate is a separate, optional
// pass that reports missing required attributes and out-of-range enumerated
// values as a list of Violations.
package psml
