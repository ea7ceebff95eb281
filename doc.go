// Patch a single byte in a file located by a wildcard byte signature
//
// A signature is written the way you would write it in a regular expression
// over bytes: `\xe9....\x85\xf6` means 0xe9, four bytes of anything, then
// 0x85 0xf6. The signature is compiled once, slid across the whole file, and
// the byte Delta positions past the start of the match is replaced.
//
// By default a signature has to match exactly once. Binary signatures are
// not guaranteed to be unique, and a patch that lands on the wrong
// occurrence is worse than no patch at all. Use WithMode(MatchFirst) to
// patch the first occurrence anyway.
//
// Limitations:
//   - The file is read fully into memory
//   - Scanning is a naive O(n*m) loop, which is fine for short signatures
//     and files in the tens of megabytes
//   - The file is treated as opaque bytes, there is no PE/ELF awareness
//   - Locking is advisory and only keeps out other cooperating patchers
package bytepatch
