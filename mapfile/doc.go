// Package mapfile reads and writes tile map documents.
//
// A map document is a list of tiles, each with an identifier, a type tag, a
// size and a centre position:
//
//	{"List": [{"Id": "t1", "Type": "grass", "Width": 1, "Height": 1, "X": 0, "Y": 0}]}
//
// The same keys are used in TOML:
//
//	[[List]]
//	Id = "t1"
//	Type = "grass"
//	X = 0.0
//	Y = 0.0
//
// Load picks the codec from the file extension and transparently removes a
// .zst or .lz4 compression layer.
package mapfile
