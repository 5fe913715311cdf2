// Load raw machine code into executable memory, patch it and jump to it
//
// A payload is read from a file into a fixed-size read/write/execute buffer.
// The first occurrence of a placeholder (by default "XXX") is overwritten with
// bytes read from an input stream, and execution then continues at the first
// byte of the buffer. The loader never gets control back.
//
// The replacement bytes can be read once before the scan (Eager) or at the
// moment a placeholder is found (Lazy).
//
// Limitations:
//   - Only amd64 and arm64 can transfer control
//   - Nothing about the payload is checked, a bad payload crashes the process
//   - The payload runs on the goroutine's stack, which is small
package patchload
