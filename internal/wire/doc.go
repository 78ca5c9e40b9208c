// Package wire converts setting records to and from the bytes exchanged over
// BLE.
//
// An encoded envelope is laid out as
//
//	[8-byte little-endian uncompressed length][LZ4 block]
//
// where the LZ4 block holds a CBOR array [kind, record] and a config record is
// itself the CBOR array [id, value, [choices...], readonly]. Serialization and
// compression are separate steps (Compress/Decompress can be used on their own).
package wire
