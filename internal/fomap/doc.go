// Package fomap parses .fomap map files and discovers them on disk.
//
// A map file is line oriented text made of sections:
//
//	[Header]
//	Version              4
//	MaxHexX              200
//
//	[Tiles]
//	tile       10   20   art\tiles\floor.frm
//
//	[Objects]
//	MapObjType           1
//	ProtoId              5
//	MapX                 100
//	MapY                 120
//
// Every line inside a section is a key followed by whitespace and a value.
// In [Objects] each object starts with a MapObjType line and ends at a blank
// line, the next MapObjType line, or end of input.
//
// The parser records, for every object, the exact byte span of its
// MapObjType value so a caller can rewrite that value in place without
// parsing the file again.
package fomap
