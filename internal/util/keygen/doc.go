// Package keygen generates Ed25519 key pairs for SSH authentication.
//
// Keys are produced in OpenSSH PEM format (private) and authorized_keys
// format (public), suitable for importing into EC2 as key pairs.
package keygen
