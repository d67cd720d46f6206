// Package proto defines the wire protocol spoken between the fetchd server
// and its clients. The protocol is text based and split across two TCP
// connections: a control connection carrying one command and one status
// token, and a data connection carrying a length header followed by the
// raw payload bytes.
//
// The package focuses on:
//   - Parsing and formatting of the single-line command format
//   - The fixed set of status tokens exchanged on the control connection
//   - Encoding and decoding of the decimal length header on the data connection
//   - Protocol limits (maximum command length, maximum header digits)
//
// Wire Format:
//
//	Control (client -> server):  <op> [<filename>] <dataPort>
//	                             op is "-l" (list) or "-g" (get); tokens are
//	                             space separated, an optional trailing newline
//	                             is ignored. Filenames therefore cannot
//	                             contain whitespace.
//	Control (server -> client):  exactly one status token, written verbatim
//	                             in a single write with no terminator.
//	Control (client -> server):  after a completed transfer the client sends
//	                             the receipt token "RECEIVED"; servers treat
//	                             its absence as a warning, never an error.
//	Data    (server -> client):  ASCII decimal payload length terminated by
//	                             '\n', then exactly that many payload bytes.
//
// Both directions on the control connection rely on single bounded reads
// rather than delimiter scanning: a command (and likewise a status token)
// must arrive in one write. This mirrors the historic behavior of the
// protocol and keeps the parser free of any framing state.
package proto
