// Package patch applies category corrections to map files in place.
//
// Corrections are single-byte overwrites at known offsets. The file is
// opened read/write without truncation; only the target bytes are written
// and the file length never changes. Every target byte is verified before
// the first write so a file is either fully patched or left untouched by
// any condition the writer can detect.
package patch
