// Package localserver serves the ledwall HTTP API on a unix domain socket.
//
// The socket lets tools on the same host, such as ledwall-cli with
// --server unix:///run/ledwall/api.sock, reach the server without a TCP
// port. Access is controlled by file permissions: the socket is created
// with mode 0600.
package localserver
