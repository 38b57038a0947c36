// Package jsonkit serializes Go values to JSON text and back.
//
// - Writer streams any value to an io.Writer with configurable Settings
// (quoted or bare keys, null/false/empty elision, naming styles, date formats,
// property and bean filters, cycle detection)
// - Decode parses JSON (or relaxed JSON via the yaml driver) into an
// order-preserving tree of *ordered.Map, []any and scalars
// - Value and Object give typed, path-reporting access to decoded trees
// - Builder assembles a document from dotted path assignments (a.b[0].c)
// - Registry maps polymorphic interfaces to concrete types via a discriminator
// property ("@class" or "@type")
//
// Every failure is reported as Issues with a stable code and dotted path.
//
// Kind mapping used by the writer:
//
//	nil, nil pointer              null
//	Enum / EnumValuer             EnumName() or EnumValue()
//	string, Char                  string
//	bool                          true / false
//	ints, floats, big.*, Number   number
//	[]byte                        base64 string
//	time.Time                     epoch millis or formatted string
//	LocalDate/Time/DateTime       ISO text or formatted string
//	slices, arrays, Iterable      array
//	Marshaler                     whatever WriteJSON emits
//	maps, *ordered.Map            object
//	structs                       object with optional discriminator
//
// Typical usage:
//
//	text, err := jsonkit.Encode(order, jsonkit.MinSettings)
//	raw, err := jsonkit.Decode(text, jsonkit.DecodeOpt{Relaxed: true})
//	var o Order
//	err = jsonkit.DecodeInto(text, &o)
//
//	doc, err := jsonkit.NewBuilder().Set("a.b[0].c", 1).Set("a.e", "x").Build()
package jsonkit
