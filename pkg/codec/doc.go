// Package codec defines the records stored in a ForeScout backup volume and
// the checksum that protects them.
//
// # Frame Format
//
// The decompressed payload of a volume is a concatenation of frames:
//
//	frame       := header_line '\n' payload [terminator] digest
//	header_line := field (NUL field)*
//	terminator  := NUL '\n'            (table records only)
//	digest      := MD5(payload), 16 bytes
//
// Two kinds of record exist:
//   - file: 9 fields (kind, name, category, size, perm, atime, mtime, uid, gid).
//     The payload is exactly size bytes.
//   - table: 3 fields (kind, name, category). The payload runs up to the
//     first NUL,'\n' pair.
//
// Numeric fields are decimal text.
//
// # Records
//
// Record is a closed interface implemented by *FileRecord and *TableRecord.
// Decoding lives in the volume package; this package only validates header
// lines, builds records and verifies digests:
//
//	h, err := codec.ParseHeader(line)
//	if err != nil {
//	    return err
//	}
//	rec, err := codec.NewRecord(h, payload, digest)
//	if err != nil {
//	    return err
//	}
//	if err := rec.Validate(); err != nil {
//	    return err // payload corrupted
//	}
//
// # Error Handling
//
// Malformed input is reported as *FormatError, checksum failures as
// *IntegrityError. Both can be matched with errors.Is against the exported
// sentinels (ErrTruncated, ErrChecksumMismatch, ...) no matter which offset
// or record they carry.
package codec
